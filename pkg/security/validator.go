package security

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxSearchQueryLength defines the maximum allowed length for search queries
	MaxSearchQueryLength = 100
)

// dangerousPatterns contains regex patterns that could indicate injection attempts.
// Plain words such as "select" or "create" stay allowed since book titles use them.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(union\s+(all\s+)?select|drop\s+(table|database|collection)|insert\s+into|delete\s+from)\b`),
	regexp.MustCompile(`(?i)\b(or|and)\s+\d+\s*=\s*\d+`),
	regexp.MustCompile(`(--|/\*|\*/)`),
	regexp.MustCompile(`(?i)\$(where|regex|ne|gt|lt|expr)`),
	regexp.MustCompile(`(?i)(<script|</script|javascript:|vbscript:|onload=|onerror=)`),
}

// ValidateSearchQuery validates a catalog search string and returns it trimmed.
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
		char == ',' || char == ':' || char == '&' || char == '\'' ||
		char == '#' || char == '+' || char == '/' || char == '(' || char == ')'
}

// SanitizeSearchString escapes LIKE wildcards so the query matches literally.
// Use with ESCAPE '\'.
func SanitizeSearchString(query string) string {
	if query == "" {
		return ""
	}

	query = strings.ReplaceAll(query, `\`, `\\`)
	query = strings.ReplaceAll(query, "%", `\%`)
	query = strings.ReplaceAll(query, "_", `\_`)

	return query
}
