// Package syntax wraps incremental tree-sitter parsing and projects syntax
// trees into hierarchical range indexes for enclosing-block lookup.
package syntax

import (
	"path/filepath"
	"strings"
	"sync"

	forest "github.com/alexaandru/go-sitter-forest"
	golang "github.com/alexaandru/go-sitter-forest/go"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// extensionLanguages maps file extensions to tree-sitter language names.
var extensionLanguages = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".tsx":  "tsx",
	".java": "java",
	".rs":   "rust",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".rb":   "ruby",
}

var languageCache sync.Map

// Language returns the tree-sitter Language for the given name, or nil if
// not supported. Go is linked directly; everything else is resolved through
// the grammar forest.
func Language(name string) *sitter.Language {
	if cached, ok := languageCache.Load(name); ok {
		lang, castOK := cached.(*sitter.Language)
		if castOK {
			return lang
		}
	}

	var lang *sitter.Language

	if name == "go" {
		lang = sitter.NewLanguage(golang.GetLanguage())
	} else {
		lang = forest.GetLanguage(name)
	}

	if lang != nil {
		languageCache.Store(name, lang)
	}

	return lang
}

// DetectLanguage resolves a language name from an LSP languageID or, when
// that is empty, from the filename extension. Returns "" when unsupported.
func DetectLanguage(languageID, filename string) string {
	if languageID != "" {
		if Language(languageID) != nil {
			return languageID
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))

	return extensionLanguages[ext]
}
