package components

import (
	"fmt"
	"path"
	"strings"
)

// Kind is the rendering class of an archive entry.
type Kind int

const (
	KindBinary   Kind = iota // opaque binary, replaced by a placeholder
	KindText                 // decoded as UTF-8 text
	KindBytecode             // compiled class file, replaced by a placeholder
)

var textExtensions = map[string]struct{}{
	".java":       {},
	".xml":        {},
	".def":        {},
	".properties": {},
	".txt":        {},
	".md":         {},
	".json":       {},
	".yml":        {},
	".yaml":       {},
	".css":        {},
	".js":         {},
	".html":       {},
	".mf":         {},
}

const manifestMarker = "MANIFEST"

// Classify returns the kind of the entry by its name.
func Classify(entryName string) Kind {
	lower := strings.ToLower(entryName)

	if _, ok := textExtensions[path.Ext(lower)]; ok || strings.Contains(entryName, manifestMarker) {
		return KindText
	}

	if strings.HasSuffix(lower, ".class") {
		return KindBytecode
	}

	return KindBinary
}

// BytecodePlaceholder is shown instead of the content of a compiled class file.
func BytecodePlaceholder(entryName string) string {
	return "// Compiled Java class file (bytecode)\n" +
		"// Original source not available\n" +
		"// File: " + entryName + "\n" +
		"// Use a Java decompiler to view source code"
}

// BinaryPlaceholder is shown instead of the content of any other non text file.
func BinaryPlaceholder(entryName string) string {
	return "// Binary file: " + entryName + "\n// Content not displayable as text"
}

// ErrorPlaceholder is shown instead of the content of an entry that could not be read.
func ErrorPlaceholder(err error) string {
	return fmt.Sprintf("// Error reading file content: %v", err)
}
