package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName turns an upper snake case enum value into a label,
// e.g. FIELD_TEAM becomes "Field Team". A Caser keeps state, so one is
// built per call.
func DisplayName[T ~string](v T) string {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
}
