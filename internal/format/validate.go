package format

import (
	"strconv"
	"strings"
)

const invalidChars = "\n\"'\\)(][}{~`, "

// CheckValidString reports whether s is usable as a symbol or key: it must
// not be empty, start with a space or underscore, end with a space,
// underscore or period, or contain quotes, brackets, commas or whitespace.
func CheckValidString(s string) bool {
	if s == "" {
		return false
	}
	if strings.ContainsRune(" _", rune(s[0])) {
		return false
	}
	if strings.ContainsRune(" _.", rune(s[len(s)-1])) {
		return false
	}
	return !strings.ContainsAny(s, invalidChars)
}

// IsDouble reports whether the whole of s parses as a float.
func IsDouble(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// IsPositiveDouble reports whether s parses as a float >= 0.
func IsPositiveDouble(s string) bool {
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && v >= 0
}

// IsPositiveLong reports whether s parses as a base-10 integer >= 0.
func IsPositiveLong(s string) bool {
	v, err := strconv.ParseInt(s, 10, 64)
	return err == nil && v >= 0
}

// ParseAmount converts a plain or formatted amount such as "$1,234.50" to a
// float. Negative amounts, written with a minus sign or in parentheses, and
// anything that is not a number are rejected.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "-(") {
		return 0, false
	}
	n := strings.TrimSpace(ToNumStr(s))
	if !IsPositiveDouble(n) {
		return 0, false
	}
	v, _ := strconv.ParseFloat(n, 64)
	return v, true
}
