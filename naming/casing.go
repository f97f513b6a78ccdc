package naming

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts PascalCase or camelCase to snake_case.
// Acronyms stay together: "HTTPSConnection" -> "https_connection".
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if i > 0 && unicode.IsUpper(r) {
			// no underscore inside an acronym, unless the next rune starts a word
			prevUpper := unicode.IsUpper(runes[i-1])
			prevSep := runes[i-1] == '_'
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if !prevSep && (!prevUpper || nextLower) {
				result.WriteRune('_')
			}
		}

		result.WriteRune(r)
	}

	return strings.ToLower(result.String())
}

// ToScreamingSnakeCase converts PascalCase or camelCase to SCREAMING_SNAKE_CASE.
func ToScreamingSnakeCase(s string) string {
	return strings.ToUpper(ToSnakeCase(s))
}

// ToPascalCase converts snake_case or kebab-case to PascalCase
func ToPascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})

	var result strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		result.WriteRune(unicode.ToUpper(runes[0]))
		result.WriteString(string(runes[1:]))
	}

	return result.String()
}

// ToCamelCase converts a Go identifier to camelCase, lowering a leading
// acronym as a whole: "ID" -> "id", "URLPath" -> "urlPath", "UserID" -> "userID".
func ToCamelCase(s string) string {
	runes := []rune(ToPascalCase(s))
	if len(runes) == 0 {
		return ""
	}

	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}
	switch {
	case upper == len(runes):
		// all caps
		return strings.ToLower(string(runes))
	case upper > 1:
		// keep the last capital of the acronym as the start of the next word
		upper--
	case upper == 0:
		return string(runes)
	}
	for i := 0; i < upper; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
