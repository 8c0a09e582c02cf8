// Package tokenize implements the code-aware tokenizer: camelCase/snake_case
// splitting, compound-plus-parts emission, and language-tagged stopword
// filtering used by the TF-IDF engine (C4/C5).
package tokenize

import (
	"regexp"
	"strings"
	"unicode"
)

// tokenRegex matches alphanumeric sequences, keeping underscores so
// snake_case identifiers survive the first split.
var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9_]+`)

// Tokenize splits text with code-aware rules and filters stopwords for the
// given language tag. It handles camelCase, PascalCase, and snake_case, and
// emits both the original compound identifier and its split parts so a
// query for either "getUserById" or "user" can match the same document.
// All tokens are lowercased; tokens shorter than two characters are dropped.
func Tokenize(text string, lang string) []string {
	stop := StopWords(lang)
	words := tokenRegex.FindAllString(text, -1)

	tokens := make([]string, 0, len(words)*2)
	for _, word := range words {
		parts := SplitCodeToken(word)
		if len(parts) > 1 {
			compound := strings.ToLower(strings.ReplaceAll(word, "_", ""))
			if len(compound) >= 2 && !stop[compound] {
				tokens = append(tokens, compound)
			}
		}
		for _, p := range parts {
			lower := strings.ToLower(p)
			if len(lower) >= 2 && !stop[lower] {
				tokens = append(tokens, lower)
			}
		}
	}
	return tokens
}

// SplitCodeToken splits camelCase and snake_case identifiers into parts.
func SplitCodeToken(token string) []string {
	var result []string

	if strings.Contains(token, "_") {
		parts := strings.Split(token, "_")
		for _, part := range parts {
			if part != "" {
				result = append(result, SplitCamelCase(part)...)
			}
		}
		return result
	}

	return SplitCamelCase(token)
}

// SplitCamelCase splits camelCase and PascalCase identifiers.
//
//	"getUserById"     -> ["get", "User", "By", "Id"]
//	"HTTPHandler"     -> ["HTTP", "Handler"]
//	"parseHTTPRequest" -> ["parse", "HTTP", "Request"]
func SplitCamelCase(s string) []string {
	if s == "" {
		return []string{}
	}

	var result []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevIsLower := unicode.IsLower(runes[i-1])
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if prevIsLower || nextIsLower {
				if current.Len() > 0 {
					result = append(result, current.String())
					current.Reset()
				}
			}
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}
