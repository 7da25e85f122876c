package security_helpers

import "unicode/utf8"

func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}

	if utf8.RuneCountInString(s) <= max {
		return s
	}

	return string([]rune(s)[:max])
}
