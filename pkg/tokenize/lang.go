// Package tokenize turns source files into the token lists the similarity
// kernel consumes. Files are parsed with tree-sitter, leaves are
// normalized into a small token alphabet, and for Go a lightweight
// semantic pass annotates tokens with reads, writes, and positional
// significance for the normalizer.
package tokenize

import "path/filepath"

// Language identifiers. They double as grammar names for the loader.
const (
	LangGo         = "go"
	LangTypeScript = "typescript"
	LangJavaScript = "javascript"
	LangPython     = "python"
	LangRust       = "rust"
	LangJava       = "java"
	LangC          = "c"
	LangCPP        = "cpp"
	LangZig        = "zig"
)

// langExtensions maps file extensions to languages with a grammar.
var langExtensions = map[string]string{
	".go":   LangGo,
	".ts":   LangTypeScript,
	".tsx":  LangTypeScript,
	".js":   LangJavaScript,
	".jsx":  LangJavaScript,
	".mjs":  LangJavaScript,
	".cjs":  LangJavaScript,
	".py":   LangPython,
	".pyw":  LangPython,
	".pyi":  LangPython,
	".rs":   LangRust,
	".java": LangJava,
	".c":    LangC,
	".h":    LangC,
	".cpp":  LangCPP,
	".cc":   LangCPP,
	".cxx":  LangCPP,
	".hpp":  LangCPP,
	".hh":   LangCPP,
	".zig":  LangZig,
}

// DetectLanguage returns the language for a file path, or "" when the
// file has no supported grammar.
func DetectLanguage(path string) string {
	return langExtensions[filepath.Ext(path)]
}

// SupportedFile reports whether the frontend can tokenize the file.
func SupportedFile(path string) bool {
	return DetectLanguage(path) != ""
}
