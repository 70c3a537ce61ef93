package model

import "unicode/utf8"

// FitsColumn reports whether s fits a varchar(maxLength) column, which
// counts characters rather than bytes.
func FitsColumn(s string, maxLength int) bool {
	return utf8.RuneCountInString(s) <= maxLength
}
