// Package naming converts arbitrary OpenAPI component names into
// TypeScript identifiers under a configurable convention.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Convention is a word-joining style for identifiers and filenames.
type Convention string

const (
	Camel  Convention = "camel"
	Pascal Convention = "pascal"
	Snake  Convention = "snake"
	Kebab  Convention = "kebab"
)

// Known reports whether the convention is one of the supported styles.
func (c Convention) Known() bool {
	switch c {
	case Camel, Pascal, Snake, Kebab:
		return true
	}
	return false
}

var titleCaser = cases.Title(language.English)

// Apply renders name in the convention. Word boundaries are runs of
// non-alphanumeric characters, lower-to-upper case transitions, and
// letter-to-digit transitions.
func (c Convention) Apply(name string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return ""
	}
	switch c {
	case Pascal:
		var sb strings.Builder
		for _, w := range words {
			sb.WriteString(titleCaser.String(w))
		}
		return sb.String()
	case Camel:
		var sb strings.Builder
		for i, w := range words {
			if i == 0 {
				sb.WriteString(strings.ToLower(w))
			} else {
				sb.WriteString(titleCaser.String(w))
			}
		}
		return sb.String()
	case Snake:
		return joinLower(words, "_")
	case Kebab:
		return joinLower(words, "-")
	default:
		return name
	}
}

func joinLower(words []string, sep string) string {
	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
	}
	return strings.Join(lowered, sep)
}

// splitWords breaks a name into words at case transitions and
// non-alphanumeric runs. Consecutive uppercase letters stay together
// except the last, which starts the next word ("HTTPServer" →
// ["HTTP", "Server"]).
func splitWords(name string) []string {
	var words []string
	var current []rune
	runes := []rune(name)

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = nil
		}
	}

	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r):
			if len(current) > 0 {
				prev := current[len(current)-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					flush()
				}
			}
			current = append(current, r)
		case unicode.IsDigit(r):
			if len(current) > 0 && unicode.IsLetter(current[len(current)-1]) {
				flush()
			}
			current = append(current, r)
		default:
			if len(current) > 0 && unicode.IsDigit(current[len(current)-1]) {
				flush()
			}
			current = append(current, r)
		}
	}
	flush()
	return words
}

// reservedWords are TypeScript keywords and the built-in utility type
// names a generated declaration must not shadow.
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true,
	"for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "typeof": true,
	"var": true, "void": true, "while": true, "with": true,
	"implements": true, "interface": true, "let": true, "package": true,
	"private": true, "protected": true, "public": true, "static": true,
	"yield": true, "any": true, "boolean": true, "number": true,
	"object": true, "string": true, "symbol": true, "undefined": true,
	// Built-in utility and global types.
	"Record": true, "Partial": true, "Required": true, "Readonly": true,
	"Pick": true, "Omit": true, "Exclude": true, "Extract": true,
	"Array": true, "Promise": true, "Date": true, "Error": true,
	"Map": true, "Set": true, "Object": true, "Function": true,
}

// Sanitize turns name into a legal TypeScript identifier: illegal
// characters are dropped at word boundaries by Apply, an illegal
// leading character or a reserved word gains a "_" prefix.
func Sanitize(name string) string {
	if name == "" {
		return "_"
	}
	runes := []rune(name)
	for i, r := range runes {
		legal := r == '_' || r == '$' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r))
		if !legal {
			runes[i] = '_'
		}
	}
	out := string(runes)
	if reservedWords[out] {
		out = "_" + out
	}
	return out
}

// Identifier applies the convention and sanitizes the result.
func Identifier(name string, c Convention) string {
	return Sanitize(c.Apply(name))
}
