package jsondoc

import (
	"slices"
	"sort"
)

// packageFieldOrder is the conventional package.json top-level key order.
var packageFieldOrder = []string{
	"$schema",
	"name",
	"displayName",
	"version",
	"private",
	"description",
	"categories",
	"keywords",
	"homepage",
	"bugs",
	"repository",
	"funding",
	"license",
	"qna",
	"author",
	"maintainers",
	"contributors",
	"publisher",
	"sideEffects",
	"type",
	"imports",
	"exports",
	"main",
	"svelte",
	"umd:main",
	"jsdelivr",
	"unpkg",
	"module",
	"source",
	"jsnext:main",
	"browser",
	"react-native",
	"types",
	"typesVersions",
	"typings",
	"style",
	"example",
	"examplestyle",
	"assets",
	"bin",
	"man",
	"directories",
	"files",
	"workspaces",
	"binary",
	"scripts",
	"betterScripts",
	"contributes",
	"activationEvents",
	"husky",
	"simple-git-hooks",
	"pre-commit",
	"commitlint",
	"lint-staged",
	"config",
	"nodemonConfig",
	"browserify",
	"babel",
	"browserslist",
	"xo",
	"prettier",
	"eslintConfig",
	"eslintIgnore",
	"npmpackagejsonlint",
	"release",
	"remarkConfig",
	"stylelint",
	"ava",
	"jest",
	"mocha",
	"nyc",
	"c8",
	"tap",
	"resolutions",
	"dependencies",
	"devDependencies",
	"dependenciesMeta",
	"peerDependencies",
	"peerDependenciesMeta",
	"optionalDependencies",
	"bundledDependencies",
	"bundleDependencies",
	"extensionPack",
	"extensionDependencies",
	"flat",
	"packageManager",
	"engines",
	"engineStrict",
	"volta",
	"languageName",
	"os",
	"cpu",
	"preferGlobal",
	"publishConfig",
	"icon",
	"badges",
	"galleryBanner",
	"preview",
	"markdown",
}

// sortedKeyFields hold maps whose keys are sorted alphabetically.
var sortedKeyFields = map[string]bool{
	"bin":                  true,
	"dependencies":         true,
	"dependenciesMeta":     true,
	"devDependencies":      true,
	"directories":          true,
	"engines":              true,
	"optionalDependencies": true,
	"peerDependencies":     true,
	"peerDependenciesMeta": true,
	"resolutions":          true,
	"volta":                true,
}

// uniqueArrayFields hold arrays whose duplicate entries are dropped.
// Sorted fields are additionally ordered alphabetically.
var uniqueArrayFields = map[string]bool{
	"bundleDependencies":  true,
	"bundledDependencies": true,
	"files":               true,
	"keywords":            true,
}

var sortedArrayFields = map[string]bool{
	"bundleDependencies":  true,
	"bundledDependencies": true,
}

// SortPackage reorders obj in place following the conventional package.json
// layout: known keys first in canonical order, then unknown keys in their
// original relative order. Dependency-like maps are sorted by key and
// keyword-like arrays are de-duplicated.
func SortPackage(obj *Object) {
	rank := make(map[string]int, len(packageFieldOrder))
	for i, key := range packageFieldOrder {
		rank[key] = i
	}

	sort.SliceStable(obj.keys, func(i, j int) bool {
		ri, knownI := rank[obj.keys[i]]
		rj, knownJ := rank[obj.keys[j]]

		switch {
		case knownI && knownJ:
			return ri < rj
		case knownI:
			return true
		default:
			return false
		}
	})

	for _, key := range obj.keys {
		switch value := obj.values[key].(type) {
		case *Object:
			if sortedKeyFields[key] {
				slices.Sort(value.keys)
			}
		case []any:
			if uniqueArrayFields[key] {
				obj.values[key] = uniqueArray(value, sortedArrayFields[key])
			}
		}
	}
}

func uniqueArray(items []any, sorted bool) []any {
	seen := make(map[string]bool, len(items))
	out := make([]any, 0, len(items))

	for _, item := range items {
		str, isString := item.(string)
		if !isString {
			out = append(out, item)

			continue
		}

		if seen[str] {
			continue
		}

		seen[str] = true

		out = append(out, item)
	}

	if sorted {
		out = sortStringsFirst(out)
	}

	return out
}

// sortStringsFirst orders the string items lexically, followed by the
// remaining items in their original order.
func sortStringsFirst(items []any) []any {
	strs := make([]string, 0, len(items))
	rest := make([]any, 0)

	for _, item := range items {
		if str, isString := item.(string); isString {
			strs = append(strs, str)
		} else {
			rest = append(rest, item)
		}
	}

	slices.Sort(strs)

	out := make([]any, 0, len(items))
	for _, str := range strs {
		out = append(out, str)
	}

	return append(out, rest...)
}
