// Package lexer turns source files into tagged token streams for clone
// detection. Concrete lexers are swappable implementations selected by file
// extension; the rest of the pipeline only depends on the Lexer interface.
package lexer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind classifies a token for normalization purposes.
type Kind uint8

const (
	KindOther Kind = iota
	KindIdentifier
	KindKeyword
	KindLiteral
	KindOperator
	KindComment
	KindWhitespace
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindIdentifier:
		return "identifier"
	case KindKeyword:
		return "keyword"
	case KindLiteral:
		return "literal"
	case KindOperator:
		return "operator"
	case KindComment:
		return "comment"
	case KindWhitespace:
		return "whitespace"
	default:
		return "other"
	}
}

// Token is a single source token with its original text and position.
// Line is 1-based, Col is a 0-based rune offset within the line.
type Token struct {
	Kind Kind
	Text string
	Line int
	Col  int
}

// ErrUnlexableFile indicates no registered lexer can handle a file.
// Files failing with this error are skipped with a warning, never aborting
// the scan.
var ErrUnlexableFile = errors.New("unlexable file")

// Lexer produces a raw token stream from source bytes.
type Lexer interface {
	// Language returns the language name this lexer handles.
	Language() string
	// Tokenize splits src into tokens. Whitespace is consumed for position
	// tracking but not emitted; comments are emitted with KindComment.
	Tokenize(src []byte) ([]Token, error)
}

// ForFile returns a lexer for the given path, selected by extension.
func ForFile(path string) (Lexer, error) {
	spec := specForExt(strings.ToLower(filepath.Ext(path)))
	if spec == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnlexableFile, path)
	}
	return &genericLexer{spec: spec}, nil
}

// Supported reports whether a lexer is registered for the file's extension.
func Supported(path string) bool {
	return specForExt(strings.ToLower(filepath.Ext(path))) != nil
}

// Language returns the language name for a path, or "" if unsupported.
func Language(path string) string {
	spec := specForExt(strings.ToLower(filepath.Ext(path)))
	if spec == nil {
		return ""
	}
	return spec.name
}
