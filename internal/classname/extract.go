// Package classname infers Java class names from file paths and keeps the
// frequency table the crawl aggregates into. The file name is taken to be the
// class name; file contents are never read.
package classname

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	javaExt = ".java"

	// packageInfo holds package level annotations, not a class.
	packageInfo = "Package-info"
)

// Extract returns the class name for a .java path, or false when the path
// does not name a class.
func Extract(path string) (string, bool) {
	if len(path) <= len(javaExt) || !strings.HasSuffix(path, javaExt) {
		return "", false
	}

	name := path
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	name = capitalize(strings.TrimSuffix(name, javaExt))

	if name == "" || name == packageInfo {
		return "", false
	}
	return name, true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
