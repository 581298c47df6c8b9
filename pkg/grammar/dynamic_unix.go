//go:build !windows

package grammar

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// openAndLoadLanguage dlopens a grammar library and calls its exported
// language function. The returned pointer must stay valid, so the handle
// is never closed.
func openAndLoadLanguage(libPath, symbol string) (*tree_sitter.Language, error) {
	handle, err := purego.Dlopen(libPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen %s: %w", libPath, err)
	}

	var langFn func() unsafe.Pointer
	purego.RegisterLibFunc(&langFn, handle, symbol)

	lang := tree_sitter.NewLanguage(langFn())
	if lang == nil {
		return nil, fmt.Errorf("symbol %s returned a nil language", symbol)
	}
	return lang, nil
}
