package actions

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/source-licenser/pkg/jsondoc"
	"github.com/Sumatoshi-tech/source-licenser/pkg/textutil"
)

// JSONMerge merges configured properties into a JSON document. Force values
// overwrite, default values fill absent keys, and sortPackage applies the
// package.json key order. The file is written only when its serialised
// form changes.
type JSONMerge struct {
	env         Env
	force       *jsondoc.Object
	defaults    *jsondoc.Object
	sortPackage bool
}

// NewJSONMerge validates the force, defaults and sortPackage settings.
func NewJSONMerge(settings Settings, env Env) (*JSONMerge, error) {
	force, err := settings.optionalObject(KindJSON, "force")
	if err != nil {
		return nil, err
	}

	defaults, err := settings.optionalObject(KindJSON, "defaults")
	if err != nil {
		return nil, err
	}

	sortPackage, err := settings.optionalBool(KindJSON, "sortPackage")
	if err != nil {
		return nil, err
	}

	return &JSONMerge{
		env:         env.withDefaults(),
		force:       force,
		defaults:    defaults,
		sortPackage: sortPackage,
	}, nil
}

// Name implements [Action].
func (a *JSONMerge) Name() string {
	return KindJSON
}

// Apply implements [Action].
func (a *JSONMerge) Apply(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	unlock := a.env.Locks.Lock(path)
	defer unlock()

	data, readErr := a.env.FS.ReadFile(path)
	if readErr != nil {
		return false, fmt.Errorf("read %s: %w", path, readErr)
	}

	doc, parseErr := jsondoc.Parse(data)
	if parseErr != nil {
		return false, &ParseError{Path: path, Err: parseErr}
	}

	obj, isObject := doc.(*jsondoc.Object)
	if !isObject {
		return false, &ParseError{Path: path, Err: ErrNotObject}
	}

	baseline, marshalErr := jsondoc.Marshal(obj)
	if marshalErr != nil {
		return false, fmt.Errorf("serialise %s: %w", path, marshalErr)
	}

	a.merge(obj)

	out, marshalErr := jsondoc.Marshal(obj)
	if marshalErr != nil {
		return false, fmt.Errorf("serialise %s: %w", path, marshalErr)
	}

	if bytes.Equal(baseline, out) {
		return false, nil
	}

	eol := jsonEOL(data)
	if eol != "\n" {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte(eol))
	}

	if textutil.HasTrailingNewline(data) {
		out = append(out, eol...)
	}

	if writeErr := a.env.FS.WriteFile(path, out); writeErr != nil {
		return false, fmt.Errorf("write %s: %w", path, writeErr)
	}

	return true, nil
}

// jsonEOL returns the line terminator of the original document. Documents
// without any line break are written with \n.
func jsonEOL(data []byte) string {
	if bytes.ContainsAny(data, "\r\n") {
		return textutil.DetectEOL(string(data))
	}

	return "\n"
}

func (a *JSONMerge) merge(obj *jsondoc.Object) {
	if a.force != nil {
		jsondoc.Force(obj, a.force)
	}

	if a.defaults != nil {
		jsondoc.Defaults(obj, a.defaults)
	}

	if a.sortPackage {
		jsondoc.SortPackage(obj)
	}
}
