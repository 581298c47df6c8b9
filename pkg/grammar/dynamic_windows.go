//go:build windows

package grammar

import (
	"fmt"
	"syscall"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// openAndLoadLanguage loads a grammar DLL and calls its exported language
// function.
func openAndLoadLanguage(libPath, symbol string) (*tree_sitter.Language, error) {
	dll, err := syscall.LoadDLL(libPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", libPath, err)
	}
	proc, err := dll.FindProc(symbol)
	if err != nil {
		return nil, fmt.Errorf("symbol %s: %w", symbol, err)
	}
	ptr, _, _ := proc.Call()
	if ptr == 0 {
		return nil, fmt.Errorf("symbol %s returned a nil language", symbol)
	}
	lang := tree_sitter.NewLanguage(unsafe.Pointer(ptr))
	if lang == nil {
		return nil, fmt.Errorf("symbol %s returned a nil language", symbol)
	}
	return lang, nil
}
