package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxSearchQueryLength defines the maximum allowed length for search queries
	MaxSearchQueryLength = 100

	// LikeEscapeChar is the escape character used in LIKE patterns built by
	// SanitizeSearchString. It is portable across MySQL and SQLite, unlike a backslash.
	LikeEscapeChar = "!"

	// CRFTablePrefix is the mandatory prefix of every dynamic CRF data table
	CRFTablePrefix = "crf_"
)

// dangerousPatterns contains regex patterns that could indicate SQL injection attempts
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(union|select|insert|update|delete|drop|create|alter|exec|execute)\b`),
	regexp.MustCompile(`(?i)(or|and)\s+\d+\s*=\s*\d+`),
	regexp.MustCompile(`(?i)(or|and)\s+['"].*['"]\s*=\s*['"].*['"]`),
	regexp.MustCompile(`(?i)(--|/\*|\*/)`),
	regexp.MustCompile(`(?i)\b(waitfor|benchmark|sleep)\b`),
	regexp.MustCompile(`(?i)(<script|</script|javascript:|vbscript:|onload=|onerror=)`),
}

// ValidateSearchQuery validates and trims a free-text search query
func ValidateSearchQuery(query string) (string, error) {
	if query == "" {
		return "", nil
	}

	if len([]rune(query)) > MaxSearchQueryLength {
		return "", errors.New("search query too long")
	}

	query = strings.TrimSpace(query)

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(query) {
			return "", errors.New("search query contains invalid characters")
		}
	}

	for _, char := range query {
		if !isValidSearchChar(char) {
			return "", errors.New("search query contains invalid characters")
		}
	}

	return query, nil
}

// isValidSearchChar checks if a character is safe for search queries
func isValidSearchChar(char rune) bool {
	return unicode.IsLetter(char) || unicode.IsNumber(char) ||
		char == ' ' || char == '-' || char == '_' || char == '.' ||
		char == '@' || char == '+' || char == '#' || char == '*'
}

// SanitizeSearchString escapes LIKE wildcards so the query matches literally.
// The result must be used together with ESCAPE LikeEscapeChar.
func SanitizeSearchString(query string) string {
	if query == "" {
		return ""
	}

	query = strings.ReplaceAll(query, LikeEscapeChar, LikeEscapeChar+LikeEscapeChar)
	query = strings.ReplaceAll(query, "%", LikeEscapeChar+"%")
	query = strings.ReplaceAll(query, "_", LikeEscapeChar+"_")

	return query
}

// IsSafeIdentifier reports whether name can be spliced into SQL as a quoted
// table or column name: letters, digits and underscores only, with at least
// one letter or digit.
func IsSafeIdentifier(name string) bool {
	stripped := strings.ReplaceAll(name, "_", "")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// IsCRFTable reports whether name is an acceptable dynamic CRF table name.
func IsCRFTable(name string) bool {
	return strings.HasPrefix(name, CRFTablePrefix) && IsSafeIdentifier(name)
}

// CRFTableName derives the data table of a CRF inside a study event,
// e.g. ("V1", "DM") -> "crf_v1_dm".
func CRFTableName(eventCode, crfCode string) (string, error) {
	name := fmt.Sprintf("%s%s_%s", CRFTablePrefix, strings.ToLower(eventCode), strings.ToLower(crfCode))
	if eventCode == "" || crfCode == "" || !IsSafeIdentifier(name) {
		return name, fmt.Errorf("invalid CRF table name %q", name)
	}
	return name, nil
}
