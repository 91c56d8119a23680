// Package normalize holds the input clean-up applied before validation and
// storage. Values are only trimmed of surrounding whitespace; case and
// inner content are preserved.
package normalize

import "strings"

// Name trims a display name.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Email trims an email address. Case is preserved so lookups match what was
// registered.
func Email(s string) string {
	return strings.TrimSpace(s)
}

// Phone trims a phone number. The number is free text; no digit
// normalization is applied.
func Phone(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a raw query-string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
