package remote

import "strings"

// Quote escapes s as a single POSIX shell word
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
