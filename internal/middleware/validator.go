package middleware

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Input validation and sanitization utilities

var (
	tenantPattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	languagePattern = regexp.MustCompile(`^[a-zA-Z0-9#+._-]{1,32}$`)
)

// SanitizeString removes null bytes and control characters and trims the
// result.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if !tenantPattern.MatchString(tenant) {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateAnalysisID accepts the UUIDs analyses are archived under.
func ValidateAnalysisID(id string) error {
	if id == "" {
		return fmt.Errorf("analysis ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid analysis ID format")
	}
	return nil
}

// ValidateLanguage accepts an empty language (the default applies) or a short
// identifier such as "go", "c++" or "c#".
func ValidateLanguage(lang string) error {
	if lang == "" {
		return nil
	}
	if !languagePattern.MatchString(lang) {
		return fmt.Errorf("invalid language %q", lang)
	}
	return nil
}

// ValidateCode checks the submission is valid UTF-8 and within maxBytes.
// Emptiness is left to the pipeline.
func ValidateCode(code string, maxBytes int) error {
	if maxBytes > 0 && len(code) > maxBytes {
		return fmt.Errorf("code exceeds %d bytes", maxBytes)
	}
	if !utf8.ValidString(code) {
		return fmt.Errorf("code must be valid UTF-8")
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidatePage clamps the page number to >= 1.
func ValidatePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 7 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
}
