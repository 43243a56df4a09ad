// Package normalize rewrites raw token streams into comparable form while
// preserving the back-mapping to original source positions.
package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pastiche-dev/pastiche/pkg/lexer"
)

// Level controls how aggressively tokens are normalized before hashing.
type Level int

const (
	// LevelExact only strips whitespace and comments.
	LevelExact Level = 0
	// LevelIdentifiers additionally collapses identifiers to a sentinel,
	// so renamed-variable clones (Type-2) still match.
	LevelIdentifiers Level = 1
	// LevelLiterals collapses identifiers and literals.
	LevelLiterals Level = 2
)

const (
	identSentinel   = "ID"
	literalSentinel = "LIT"
)

// ErrUnsupportedTokenKind indicates a lexer emitted a kind this package does
// not recognize. The offending file is skipped; the scan continues.
var ErrUnsupportedTokenKind = errors.New("unsupported token kind")

// Token is a normalized token. Text is what gets hashed; Orig is the source
// text for reporting. Line is 1-based.
type Token struct {
	Text string
	Orig string
	Kind lexer.Kind
	Line int
	Col  int
}

// Stream is one file's normalized token sequence. Index lookups into Tokens
// are the position back-mapping: Tokens[i].Line is O(1).
type Stream struct {
	Path   string
	Tokens []Token
}

// Len returns the number of normalized tokens.
func (s *Stream) Len() int { return len(s.Tokens) }

// LineRange returns the inclusive 1-based source line range covered by the
// token span [start, end].
func (s *Stream) LineRange(start, end int) (int, int) {
	first := s.Tokens[start].Line
	last := s.Tokens[end].Line + strings.Count(s.Tokens[end].Orig, "\n")
	return first, last
}

// Apply maps a raw token stream to a normalized stream. Whitespace and
// comment tokens are dropped at every level; they must never participate in
// k-grams. Pure: the input slice is not modified.
func Apply(path string, raw []lexer.Token, level Level) (*Stream, error) {
	out := make([]Token, 0, len(raw))
	for _, t := range raw {
		switch t.Kind {
		case lexer.KindWhitespace, lexer.KindComment:
			continue
		case lexer.KindIdentifier, lexer.KindKeyword, lexer.KindLiteral,
			lexer.KindOperator, lexer.KindOther:
		default:
			return nil, fmt.Errorf("%w: %s (%d) in %s", ErrUnsupportedTokenKind, t.Kind, t.Kind, path)
		}

		text := t.Text
		if level >= LevelIdentifiers && t.Kind == lexer.KindIdentifier {
			text = identSentinel
		}
		if level >= LevelLiterals && t.Kind == lexer.KindLiteral {
			text = literalSentinel
		}
		out = append(out, Token{
			Text: text,
			Orig: t.Text,
			Kind: t.Kind,
			Line: t.Line,
			Col:  t.Col,
		})
	}
	return &Stream{Path: path, Tokens: out}, nil
}

// SpanText reconstructs the normalized text of a token span, used for the
// stable group fingerprint in reports.
func (s *Stream) SpanText(start, end int) string {
	var sb strings.Builder
	for i := start; i <= end; i++ {
		if i > start {
			sb.WriteByte(' ')
		}
		sb.WriteString(s.Tokens[i].Text)
	}
	return sb.String()
}
