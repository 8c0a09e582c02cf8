package tokenize

// Tag identifies a language for stopword selection. Unrecognized tags fall
// back to the generic list.
const (
	TagGo      = "go"
	TagTS      = "ts"
	TagJS      = "js"
	TagPy      = "py"
	TagGeneric = "generic"
)

var goStopWords = []string{
	"func", "return", "package", "import", "var", "const", "type", "struct",
	"interface", "if", "else", "for", "range", "switch", "case", "default",
	"go", "defer", "chan", "select", "map", "nil", "true", "false", "err",
}

var tsStopWords = []string{
	"function", "return", "const", "let", "var", "class", "interface", "type",
	"import", "export", "if", "else", "for", "while", "switch", "case",
	"default", "async", "await", "null", "undefined", "true", "false", "this",
}

var jsStopWords = []string{
	"function", "return", "const", "let", "var", "class", "import", "export",
	"if", "else", "for", "while", "switch", "case", "default", "async",
	"await", "null", "undefined", "true", "false", "this",
}

var pyStopWords = []string{
	"def", "return", "class", "import", "from", "if", "elif", "else", "for",
	"while", "with", "as", "try", "except", "finally", "pass", "lambda",
	"none", "true", "false", "self",
}

var genericStopWords = []string{
	"the", "a", "an", "and", "or", "but", "is", "are", "was", "were", "be",
	"been", "being", "to", "of", "in", "on", "at", "by", "for", "with",
	"this", "that", "it", "as", "from",
}

// StopWords returns the stopword set for a language tag, falling back to the
// generic English list for unrecognized tags.
func StopWords(lang string) map[string]bool {
	var words []string
	switch lang {
	case TagGo:
		words = goStopWords
	case TagTS:
		words = tsStopWords
	case TagJS:
		words = jsStopWords
	case TagPy:
		words = pyStopWords
	default:
		words = genericStopWords
	}

	m := make(map[string]bool, len(words)+len(genericStopWords))
	for _, w := range words {
		m[w] = true
	}
	if lang != TagGeneric {
		for _, w := range genericStopWords {
			m[w] = true
		}
	}
	return m
}
