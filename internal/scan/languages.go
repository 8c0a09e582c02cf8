package scan

// languageMap maps file extensions and exact filenames to a language tag.
var languageMap = map[string]string{
	".go": "go",

	".js":  "javascript",
	".jsx": "javascript",
	".mjs": "javascript",
	".ts":  "typescript",
	".tsx": "typescript",

	".py":  "python",
	".pyw": "python",
	".pyi": "python",

	".html": "html",
	".htm":  "html",
	".css":  "css",
	".scss": "scss",

	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".xml":  "xml",

	".md":       "markdown",
	".mdx":      "markdown",
	".markdown": "markdown",
	".txt":      "text",

	".sh":   "shell",
	".bash": "shell",

	".rs":    "rust",
	".java":  "java",
	".kt":    "kotlin",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".rb":    "ruby",
	".php":   "php",
	".swift": "swift",

	"Dockerfile":  "dockerfile",
	"Makefile":    "makefile",
	"GNUmakefile": "makefile",
}

var contentTypeMap = map[string]ContentType{
	"go": ContentTypeCode, "javascript": ContentTypeCode, "typescript": ContentTypeCode,
	"python": ContentTypeCode, "rust": ContentTypeCode, "java": ContentTypeCode,
	"kotlin": ContentTypeCode, "c": ContentTypeCode, "cpp": ContentTypeCode,
	"csharp": ContentTypeCode, "ruby": ContentTypeCode, "php": ContentTypeCode,
	"swift": ContentTypeCode, "html": ContentTypeCode, "css": ContentTypeCode,
	"scss": ContentTypeCode, "shell": ContentTypeCode,

	"markdown": ContentTypeMarkdown,

	"text": ContentTypeText,

	"json": ContentTypeConfig, "yaml": ContentTypeConfig, "toml": ContentTypeConfig,
	"xml": ContentTypeConfig, "dockerfile": ContentTypeConfig, "makefile": ContentTypeConfig,
}

// DetectLanguage maps a relative path to a language tag, or "" if unrecognized.
func DetectLanguage(path string) string {
	base := baseName(path)
	if lang, ok := languageMap[base]; ok {
		return lang
	}
	if lang, ok := languageMap[extension(path)]; ok {
		return lang
	}
	return ""
}

// DetectContentType maps a language tag to a content type, defaulting to text.
func DetectContentType(language string) ContentType {
	if ct, ok := contentTypeMap[language]; ok {
		return ct
	}
	return ContentTypeText
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

func extension(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' || path[i] == '\\' {
			break
		}
	}
	return ""
}
