package actions

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Sumatoshi-tech/source-licenser/pkg/license"
)

// DefaultSiblingName is the file written when no name is configured.
const DefaultSiblingName = "LICENSE"

// SiblingFile writes the license text to a named file in the directory of
// each matched path. A matched directory receives the file directly.
type SiblingFile struct {
	env      Env
	fileName string
	content  string
}

// NewSiblingFile validates the name and license settings.
func NewSiblingFile(settings Settings, env Env) (*SiblingFile, error) {
	name, ok, err := settings.optionalString(KindSiblingFile, "name")
	if err != nil {
		return nil, err
	}

	if !ok {
		name = DefaultSiblingName
	}

	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, &ValidationError{Action: KindSiblingFile, Properties: []string{"name"}, Expect: "a bare file name"}
	}

	text, err := settings.license(KindSiblingFile, env)
	if err != nil {
		return nil, err
	}

	return &SiblingFile{
		env:      env.withDefaults(),
		fileName: name,
		content:  license.Body(text),
	}, nil
}

// Name implements [Action].
func (a *SiblingFile) Name() string {
	return KindSiblingFile
}

// Target returns the sibling path written for path.
func (a *SiblingFile) Target(path string) (string, error) {
	info, statErr := a.env.FS.Stat(path)
	if statErr != nil {
		return "", fmt.Errorf("stat %s: %w", path, statErr)
	}

	dir := filepath.Dir(path)
	if info.IsDir() {
		dir = path
	}

	return filepath.Join(dir, a.fileName), nil
}

// Apply implements [Action].
func (a *SiblingFile) Apply(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	target, err := a.Target(path)
	if err != nil {
		return false, err
	}

	unlock := a.env.Locks.Lock(target)
	defer unlock()

	existing, readErr := a.env.FS.ReadFile(target)

	switch {
	case readErr == nil && string(existing) == a.content:
		return false, nil
	case readErr != nil && !errors.Is(readErr, fs.ErrNotExist):
		return false, fmt.Errorf("read %s: %w", target, readErr)
	}

	if writeErr := a.env.FS.WriteFile(target, []byte(a.content)); writeErr != nil {
		return false, fmt.Errorf("write %s: %w", target, writeErr)
	}

	return true, nil
}
