// Package languages maps language names and file extensions to the
// tree-sitter grammars bundled with the module.
package languages

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unsafe"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_embedded_template "github.com/tree-sitter/tree-sitter-embedded-template/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_json "github.com/tree-sitter/tree-sitter-json/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

var (
	ErrUnknownLanguage  = errors.New("unknown language")
	ErrUnknownExtension = errors.New("no language registered for file extension")
)

type grammar struct {
	extensions []string
	load       func() unsafe.Pointer
}

//nolint:gochecknoglobals // static grammar table
var grammars = map[string]grammar{
	"c":                 {[]string{".c", ".h"}, tree_sitter_c.Language},
	"cpp":               {[]string{".cc", ".cpp", ".cxx", ".hpp", ".hh"}, tree_sitter_cpp.Language},
	"embedded-template": {[]string{".erb", ".ejs"}, tree_sitter_embedded_template.Language},
	"go":                {[]string{".go"}, tree_sitter_go.Language},
	"html":              {[]string{".html", ".htm"}, tree_sitter_html.Language},
	"java":              {[]string{".java"}, tree_sitter_java.Language},
	"javascript":        {[]string{".js", ".mjs", ".cjs"}, tree_sitter_javascript.Language},
	"json":              {[]string{".json"}, tree_sitter_json.Language},
	"php":               {[]string{".php"}, tree_sitter_php.LanguagePHP},
	"python":            {[]string{".py"}, tree_sitter_python.Language},
	"ruby":              {[]string{".rb"}, tree_sitter_ruby.Language},
	"rust":              {[]string{".rs"}, tree_sitter_rust.Language},
}

var (
	loadedMu sync.Mutex
	loaded   = map[string]*sitter.Language{}
)

// Lookup returns the grammar registered under name.
func Lookup(name string) (*sitter.Language, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	g, ok := grammars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}

	loadedMu.Lock()
	defer loadedMu.Unlock()

	if lang, ok := loaded[name]; ok {
		return lang, nil
	}

	lang := sitter.NewLanguage(g.load())
	loaded[name] = lang

	return lang, nil
}

// ForPath picks a grammar from the extension of path and returns its name.
func ForPath(path string) (string, *sitter.Language, error) {
	ext := strings.ToLower(filepath.Ext(path))

	for name, g := range grammars {
		for _, candidate := range g.extensions {
			if candidate == ext {
				lang, err := Lookup(name)
				return name, lang, err
			}
		}
	}

	return "", nil, fmt.Errorf("%w: %q", ErrUnknownExtension, ext)
}

// Names returns the registered language names in sorted order.
func Names() []string {
	names := make([]string, 0, len(grammars))
	for name := range grammars {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Extensions returns the file extensions registered for name.
func Extensions(name string) []string {
	return append([]string(nil), grammars[name].extensions...)
}
