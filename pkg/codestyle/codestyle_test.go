package codestyle_test

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode"
)

// maxInterfaceMethods bounds interface size; larger interfaces should be split.
const maxInterfaceMethods = 5

// bannedFilenames maps grab-bag file names to the fix expected for them.
var bannedFilenames = map[string]string{
	"types.go":     "move each type next to the code that uses it",
	"utils.go":     "move each function to the file that owns its domain",
	"helpers.go":   "move each function to the file that owns its domain",
	"common.go":    "move each symbol to the file that owns its concept",
	"constants.go": "move each constant to the file where it is used",
	"errors.go":    "declare sentinel errors next to the functions returning them",
}

// bannedPackages maps generic package names to the fix expected for them.
var bannedPackages = map[string]string{
	"util":    "name the package after its domain (e.g. textutil)",
	"utils":   "name the package after its domain (e.g. textutil)",
	"misc":    "name the package after its domain",
	"shared":  "name the package after its purpose",
	"base":    "name the package after what it provides",
	"generic": "name the package after what it provides",
}

// globalLoggerCalls are slog package functions that bypass the injected logger.
var globalLoggerCalls = map[string]bool{
	"Debug":        true,
	"Info":         true,
	"Warn":         true,
	"Error":        true,
	"DebugContext": true,
	"InfoContext":  true,
	"WarnContext":  true,
	"ErrorContext": true,
	"Log":          true,
	"Default":      true,
	"SetDefault":   true,
}

func projectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	for {
		if _, statErr := os.Stat(filepath.Join(dir, "go.mod")); statErr == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("no go.mod above the working directory")
		}

		dir = parent
	}
}

// skipDir mirrors the go tool: "_" and "." prefixed directories and testdata
// are not part of the module's packages.
func skipDir(name string) bool {
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return true
	}

	return name == "testdata" || name == "vendor"
}

type sourceFile struct {
	rel  string
	ast  *ast.File
	test bool
}

// parseModule parses every Go file of the module, tests included.
func parseModule(t *testing.T) []sourceFile {
	t.Helper()

	root := projectRoot(t)

	var files []sourceFile

	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if path != root && skipDir(entry.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if !strings.HasSuffix(path, ".go") {
			return nil
		}

		parsed, parseErr := parser.ParseFile(token.NewFileSet(), path, nil, parser.SkipObjectResolution)
		if parseErr != nil {
			return fmt.Errorf("parse %s: %w", path, parseErr)
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return fmt.Errorf("rel %s: %w", path, relErr)
		}

		files = append(files, sourceFile{
			rel:  filepath.ToSlash(rel),
			ast:  parsed,
			test: strings.HasSuffix(path, "_test.go"),
		})

		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	if len(files) == 0 {
		t.Fatal("no Go files found")
	}

	return files
}

func sources(files []sourceFile) []sourceFile {
	out := make([]sourceFile, 0, len(files))

	for _, file := range files {
		if !file.test {
			out = append(out, file)
		}
	}

	return out
}

func report(t *testing.T, kind string, violations []string) {
	t.Helper()

	if len(violations) > 0 {
		t.Errorf("found %d %s:\n\n%s", len(violations), kind, strings.Join(violations, "\n\n"))
	}
}

func TestNoBannedFilenames(t *testing.T) {
	t.Parallel()

	var violations []string

	for _, file := range sources(parseModule(t)) {
		if fix, banned := bannedFilenames[filepath.Base(file.rel)]; banned {
			violations = append(violations, fmt.Sprintf("%s: %s", file.rel, fix))
		}
	}

	report(t, "banned filename(s)", violations)
}

func TestNoGrabBagPackages(t *testing.T) {
	t.Parallel()

	var violations []string

	seen := make(map[string]bool)

	for _, file := range sources(parseModule(t)) {
		name := file.ast.Name.Name
		dir := filepath.Dir(file.rel)

		if fix, banned := bannedPackages[name]; banned && !seen[dir] {
			seen[dir] = true
			violations = append(violations, fmt.Sprintf("package %q at %s: %s", name, dir, fix))
		}
	}

	report(t, "grab-bag package(s)", violations)
}

func TestNoFatInterfaces(t *testing.T) {
	t.Parallel()

	var violations []string

	for _, file := range sources(parseModule(t)) {
		ast.Inspect(file.ast, func(n ast.Node) bool {
			spec, ok := n.(*ast.TypeSpec)
			if !ok {
				return true
			}

			iface, ok := spec.Type.(*ast.InterfaceType)
			if !ok {
				return true
			}

			methods := 0

			for _, field := range iface.Methods.List {
				if _, isFunc := field.Type.(*ast.FuncType); isFunc {
					methods++
				}
			}

			if methods > maxInterfaceMethods {
				violations = append(violations, fmt.Sprintf(
					"interface %s in %s has %d methods (max %d): split it into smaller interfaces",
					spec.Name.Name, file.rel, methods, maxInterfaceMethods))
			}

			return true
		})
	}

	report(t, "fat interface(s)", violations)
}

// stutters reports whether name repeats the package name at a word boundary,
// returning the name callers should use instead.
func stutters(pkg, name string) (string, bool) {
	titled := strings.ToUpper(pkg[:1]) + pkg[1:]

	rest, found := strings.CutPrefix(name, titled)
	if !found || rest == "" {
		return "", false
	}

	first := rune(rest[0])

	return rest, unicode.IsUpper(first) || unicode.IsDigit(first)
}

func TestStutters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pkg, name string
		want      string
		stutter   bool
	}{
		{pkg: "walker", name: "WalkerOptions", want: "Options", stutter: true},
		{pkg: "walker", name: "Walker", stutter: false},
		{pkg: "report", name: "Reporter", stutter: false},
		{pkg: "config", name: "FileSpec", stutter: false},
		{pkg: "version", name: "Version2", want: "2", stutter: true},
	}

	for _, tt := range tests {
		got, stutter := stutters(tt.pkg, tt.name)
		if got != tt.want || stutter != tt.stutter {
			t.Errorf("stutters(%q, %q) = %q, %v; want %q, %v", tt.pkg, tt.name, got, stutter, tt.want, tt.stutter)
		}
	}
}

func TestNoStutteringExports(t *testing.T) {
	t.Parallel()

	var violations []string

	for _, file := range sources(parseModule(t)) {
		pkg := strings.ToLower(file.ast.Name.Name)

		for _, decl := range file.ast.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}

			for _, spec := range gen.Specs {
				name := spec.(*ast.TypeSpec).Name.Name
				if !ast.IsExported(name) {
					continue
				}

				if trimmed, stutter := stutters(pkg, name); stutter {
					violations = append(violations, fmt.Sprintf(
						"type %s.%s in %s stutters: rename it to %s",
						file.ast.Name.Name, name, file.rel, trimmed))
				}
			}
		}
	}

	report(t, "stuttering export(s)", violations)
}

// TestNoGlobalLogger keeps loggers injected: library code must not log
// through the slog package-level default.
func TestNoGlobalLogger(t *testing.T) {
	t.Parallel()

	var violations []string

	for _, file := range sources(parseModule(t)) {
		ast.Inspect(file.ast, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			if ident, isIdent := sel.X.(*ast.Ident); isIdent && ident.Name == "slog" && globalLoggerCalls[sel.Sel.Name] {
				violations = append(violations, fmt.Sprintf(
					"%s calls slog.%s: accept a *slog.Logger instead", file.rel, sel.Sel.Name))
			}

			return true
		})
	}

	report(t, "global logger call(s)", violations)
}

// TestTestsLiveWithPackages rejects test-only directories; tests sit next to
// the package they cover.
func TestTestsLiveWithPackages(t *testing.T) {
	t.Parallel()

	sourceDirs := make(map[string]bool)

	files := parseModule(t)
	for _, file := range sources(files) {
		sourceDirs[filepath.Dir(file.rel)] = true
	}

	var violations []string

	for _, file := range files {
		if file.test && !sourceDirs[filepath.Dir(file.rel)] && !strings.HasPrefix(file.rel, "pkg/codestyle/") {
			violations = append(violations, fmt.Sprintf("%s has no package source beside it", file.rel))
		}
	}

	report(t, "detached test file(s)", violations)
}
