package core

import "strings"

var nameReplacer = strings.NewReplacer(" ", "_", "(", "", ")", "")

// SanitizeName replaces spaces with underscores and drops parentheses, so
// "ISS (ZARYA)" becomes "ISS_ZARYA". Sanitizing twice is a no-op.
func SanitizeName(name string) string {
	return nameReplacer.Replace(name)
}
