package core

import (
	"path/filepath"
	"strings"
)

const (
	CategoryDocumentation = "Documentation"
	CategoryTests         = "Tests"
	CategoryCICD          = "CI/CD"
	CategoryCode          = "Code"
	CategoryOther         = "Other"
)

var codeExtensions = map[string]struct{}{
	".py": {}, ".java": {}, ".js": {}, ".ts": {}, ".go": {}, ".cpp": {},
}

// CategorizeChange labels a pull request by kind of change. Labels win when
// present; otherwise the changed paths decide, checked in order of
// specificity.
func CategorizeChange(labels []string, files []FileChange) string {
	if len(labels) > 0 {
		names := make([]string, 0, len(labels))
		for _, l := range labels {
			names = append(names, strings.ToLower(l))
		}
		return strings.Join(names, ", ")
	}
	if len(files) == 0 {
		return CategoryOther
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, strings.ToLower(f.Filename))
	}

	switch {
	case allPaths(paths, func(p string) bool { return strings.HasPrefix(p, "docs/") || strings.HasSuffix(p, ".md") }):
		return CategoryDocumentation
	case anyPath(paths, func(p string) bool { return strings.Contains(p, "test") }):
		return CategoryTests
	case anyPath(paths, func(p string) bool {
		return strings.Contains(p, ".yml") || strings.Contains(p, ".yaml") || strings.Contains(p, ".github/")
	}):
		return CategoryCICD
	case anyPath(paths, func(p string) bool { _, ok := codeExtensions[filepath.Ext(p)]; return ok }):
		return CategoryCode
	default:
		return CategoryOther
	}
}

func allPaths(paths []string, pred func(string) bool) bool {
	for _, p := range paths {
		if !pred(p) {
			return false
		}
	}
	return true
}

func anyPath(paths []string, pred func(string) bool) bool {
	for _, p := range paths {
		if pred(p) {
			return true
		}
	}
	return false
}
