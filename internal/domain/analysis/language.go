package analysis

import "strings"

// DefaultLanguage is used when the caller does not declare one.
const DefaultLanguage = "javascript"

// SupportedLanguages is advisory: other values are passed to the producers as-is.
var SupportedLanguages = []string{
	"javascript", "python", "typescript", "java", "csharp",
	"go", "ruby", "php", "html", "css",
}

// IsSupportedLanguage reports whether lang is in SupportedLanguages (case-insensitive).
func IsSupportedLanguage(lang string) bool {
	l := strings.ToLower(strings.TrimSpace(lang))
	for _, s := range SupportedLanguages {
		if s == l {
			return true
		}
	}
	return false
}

// NormalizeLanguage lowercases known languages and falls back to
// DefaultLanguage for an empty value.
func NormalizeLanguage(lang string) string {
	l := strings.TrimSpace(lang)
	if l == "" {
		return DefaultLanguage
	}
	if IsSupportedLanguage(l) {
		return strings.ToLower(l)
	}
	return l
}
