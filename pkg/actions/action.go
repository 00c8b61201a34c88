// Package actions implements the transforms applied to matched files:
// header and footer comment blocks, JSON property merges and sibling
// license files. Every action is prepared once from its settings and then
// applied to any number of files.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Action kinds, as named in configuration.
const (
	KindHeader      = "header"
	KindFooter      = "footer"
	KindJSON        = "json"
	KindSiblingFile = "siblingLicenseFile"
)

// ErrUnknownAction is returned by [New] for an unsupported kind.
var ErrUnknownAction = errors.New("unknown action")

// Action is a prepared transform.
type Action interface {
	// Name returns the action kind.
	Name() string

	// Apply transforms the file at path and reports whether it was modified.
	Apply(ctx context.Context, path string) (bool, error)
}

// Env carries the collaborators shared by every action of a run.
type Env struct {
	// DefaultLicense is used when an action has no license override.
	DefaultLicense string

	// FS performs file reads and writes. Nil means [OSFileSystem].
	FS FileSystem

	// Locks serialises access per target path. Nil disables locking.
	Locks *PathLocks

	// Logger receives warnings about suspicious content. Nil discards.
	Logger *slog.Logger
}

func (e Env) withDefaults() Env {
	if e.FS == nil {
		e.FS = OSFileSystem{}
	}

	if e.Logger == nil {
		e.Logger = slog.New(slog.DiscardHandler)
	}

	return e
}

type constructor func(settings Settings, env Env) (Action, error)

var constructors = map[string]constructor{
	KindHeader: func(settings Settings, env Env) (Action, error) {
		return NewTextAnchor(KindHeader, PlaceHeader, settings, env)
	},
	KindFooter: func(settings Settings, env Env) (Action, error) {
		return NewTextAnchor(KindFooter, PlaceFooter, settings, env)
	},
	KindJSON: func(settings Settings, env Env) (Action, error) {
		return NewJSONMerge(settings, env)
	},
	KindSiblingFile: func(settings Settings, env Env) (Action, error) {
		return NewSiblingFile(settings, env)
	},
}

// Kinds returns every supported action kind, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(constructors))
	for kind := range constructors {
		kinds = append(kinds, kind)
	}

	slices.Sort(kinds)

	return kinds
}

// New prepares the action of the given kind. Settings are validated before
// any file is touched; invalid settings yield a [*ValidationError].
func New(kind string, settings Settings, env Env) (Action, error) {
	build, ok := constructors[kind]
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownAction, kind, strings.Join(Kinds(), ", "))
	}

	return build(settings, env.withDefaults())
}
