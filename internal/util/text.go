package util

import "strings"

// SplitLines splits on newlines, trims each entry and drops blanks.
func SplitLines(s string) []string {
	return splitTrim(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// SplitList splits a comma separated list, trims each entry and drops blanks.
func SplitList(s string) []string {
	return splitTrim(s, ",")
}

func splitTrim(s, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Absolutize prefixes root-relative paths with origin and leaves anything else untouched.
func Absolutize(origin, path string) string {
	if origin == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return path
	}
	return strings.TrimRight(origin, "/") + path
}
