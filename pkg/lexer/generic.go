package lexer

// genericLexer is a rune scanner parameterized by a per-language spec.
// It recognizes string/number literals, identifiers vs keywords, line and
// block comments, and multi-character operators. It is not a full parser;
// token-level fidelity is all clone detection needs.
type genericLexer struct {
	spec *langSpec
}

// langSpec captures the per-language surface the scanner needs.
type langSpec struct {
	name         string
	exts         []string
	keywords     map[string]bool
	literalWords map[string]bool // boolean/null words normalized as literals
	lineComment  []string
	blockOpen    string
	blockClose   string
	rawQuote     bool // backtick strings (Go, JS templates)
	hashComment  bool
}

func (g *genericLexer) Language() string { return g.spec.name }

// Tokenize implements Lexer.
func (g *genericLexer) Tokenize(src []byte) ([]Token, error) {
	runes := []rune(string(src))
	var tokens []Token

	line, col := 1, 0
	i := 0

	emit := func(kind Kind, text string, startLine, startCol int) {
		tokens = append(tokens, Token{Kind: kind, Text: text, Line: startLine, Col: startCol})
	}
	// advance consumes n runes starting at i, updating line/col tracking.
	advance := func(n int) {
		for j := 0; j < n; j++ {
			if runes[i+j] == '\n' {
				line++
				col = 0
			} else {
				col++
			}
		}
		i += n
	}

	for i < len(runes) {
		c := runes[i]
		startLine, startCol := line, col

		if isSpace(c) {
			advance(1)
			continue
		}

		// Line comments.
		if rest := g.lineCommentAt(runes, i); rest > 0 {
			end := i + rest
			for end < len(runes) && runes[end] != '\n' {
				end++
			}
			emit(KindComment, string(runes[i:end]), startLine, startCol)
			advance(end - i)
			continue
		}

		// Block comments.
		if g.spec.blockOpen != "" && hasPrefixAt(runes, i, g.spec.blockOpen) {
			end := i + len(g.spec.blockOpen)
			for end < len(runes) && !hasPrefixAt(runes, end, g.spec.blockClose) {
				end++
			}
			if end < len(runes) {
				end += len(g.spec.blockClose)
			}
			emit(KindComment, string(runes[i:end]), startLine, startCol)
			advance(end - i)
			continue
		}

		// String literals.
		if c == '"' || c == '\'' || (c == '`' && g.spec.rawQuote) {
			end := scanString(runes, i, c)
			emit(KindLiteral, string(runes[i:end]), startLine, startCol)
			advance(end - i)
			continue
		}

		// Number literals.
		if isDigit(c) {
			end := scanNumber(runes, i)
			emit(KindLiteral, string(runes[i:end]), startLine, startCol)
			advance(end - i)
			continue
		}

		// Identifiers and keywords.
		if isIdentStart(c) {
			end := i
			for end < len(runes) && isIdentChar(runes[end]) {
				end++
			}
			word := string(runes[i:end])
			kind := KindIdentifier
			switch {
			case g.spec.literalWords[word]:
				kind = KindLiteral
			case g.spec.keywords[word]:
				kind = KindKeyword
			}
			emit(kind, word, startLine, startCol)
			advance(end - i)
			continue
		}

		// Multi-character operators, longest first.
		if op := scanOperator(runes, i); op != "" {
			emit(KindOperator, op, startLine, startCol)
			advance(len([]rune(op)))
			continue
		}

		// Any remaining single rune: punctuation and delimiters.
		emit(KindOperator, string(c), startLine, startCol)
		advance(1)
	}

	return tokens, nil
}

// lineCommentAt returns the marker length when a line comment starts at i.
func (g *genericLexer) lineCommentAt(runes []rune, i int) int {
	for _, marker := range g.spec.lineComment {
		if hasPrefixAt(runes, i, marker) {
			return len(marker)
		}
	}
	if g.spec.hashComment && runes[i] == '#' {
		return 1
	}
	return 0
}

func hasPrefixAt(runes []rune, i int, s string) bool {
	for _, r := range s {
		if i >= len(runes) || runes[i] != r {
			return false
		}
		i++
	}
	return true
}

// scanString returns the index just past the closing quote, honoring
// backslash escapes. Unterminated strings run to end of input.
func scanString(runes []rune, i int, quote rune) int {
	j := i + 1
	for j < len(runes) {
		c := runes[j]
		j++
		if c == quote {
			return j
		}
		if c == '\\' && quote != '`' && j < len(runes) {
			j++
		}
	}
	return j
}

// scanNumber consumes a numeric literal including hex/binary/float forms.
func scanNumber(runes []rune, i int) int {
	j := i
	for j < len(runes) {
		c := runes[j]
		if isDigit(c) || c == '.' || c == '_' ||
			c == 'x' || c == 'X' || c == 'b' || c == 'B' || c == 'o' || c == 'O' ||
			(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
			c == 'e' || c == 'E' {
			j++
			continue
		}
		break
	}
	return j
}

var threeCharOps = []string{"<<=", ">>=", "...", "===", "!==", "**="}

var twoCharOps = []string{
	"==", "!=", "<=", ">=", "&&", "||", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"++", "--", "->", "=>", "::", "..", "??", ":=", "**",
}

func scanOperator(runes []rune, i int) string {
	for _, op := range threeCharOps {
		if hasPrefixAt(runes, i, op) {
			return op
		}
	}
	for _, op := range twoCharOps {
		if hasPrefixAt(runes, i, op) {
			return op
		}
	}
	return ""
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentChar(c rune) bool {
	return isIdentStart(c) || isDigit(c)
}

func words(ws ...string) map[string]bool {
	m := make(map[string]bool, len(ws))
	for _, w := range ws {
		m[w] = true
	}
	return m
}

var langSpecs = []*langSpec{
	{
		name: "go",
		exts: []string{".go"},
		keywords: words(
			"break", "case", "chan", "const", "continue", "default", "defer",
			"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
			"interface", "map", "package", "range", "return", "select",
			"struct", "switch", "type", "var",
		),
		literalWords: words("true", "false", "nil", "iota"),
		lineComment:  []string{"//"},
		blockOpen:    "/*",
		blockClose:   "*/",
		rawQuote:     true,
	},
	{
		name: "python",
		exts: []string{".py"},
		keywords: words(
			"and", "as", "assert", "async", "await", "break", "class",
			"continue", "def", "del", "elif", "else", "except", "finally",
			"for", "from", "global", "if", "import", "in", "is", "lambda",
			"nonlocal", "not", "or", "pass", "raise", "return", "try",
			"while", "with", "yield",
		),
		literalWords: words("True", "False", "None"),
		hashComment:  true,
	},
	{
		name: "javascript",
		exts: []string{".js", ".jsx", ".mjs"},
		keywords: words(
			"break", "case", "catch", "class", "const", "continue",
			"debugger", "default", "delete", "do", "else", "export",
			"extends", "finally", "for", "function", "if", "import", "in",
			"instanceof", "let", "new", "of", "return", "super", "switch",
			"this", "throw", "try", "typeof", "var", "void", "while",
			"with", "yield", "async", "await",
		),
		literalWords: words("true", "false", "null", "undefined", "NaN"),
		lineComment:  []string{"//"},
		blockOpen:    "/*",
		blockClose:   "*/",
		rawQuote:     true,
	},
	{
		name: "typescript",
		exts: []string{".ts", ".tsx"},
		keywords: words(
			"break", "case", "catch", "class", "const", "continue",
			"debugger", "default", "delete", "do", "else", "enum", "export",
			"extends", "finally", "for", "function", "if", "implements",
			"import", "in", "instanceof", "interface", "let", "namespace",
			"new", "of", "private", "protected", "public", "readonly",
			"return", "super", "switch", "this", "throw", "try", "type",
			"typeof", "var", "void", "while", "yield", "async", "await",
		),
		literalWords: words("true", "false", "null", "undefined", "NaN"),
		lineComment:  []string{"//"},
		blockOpen:    "/*",
		blockClose:   "*/",
		rawQuote:     true,
	},
	{
		name: "rust",
		exts: []string{".rs"},
		keywords: words(
			"as", "async", "await", "break", "const", "continue", "crate",
			"dyn", "else", "enum", "extern", "fn", "for", "if", "impl",
			"in", "let", "loop", "match", "mod", "move", "mut", "pub",
			"ref", "return", "self", "Self", "static", "struct", "trait",
			"type", "unsafe", "use", "where", "while",
		),
		literalWords: words("true", "false"),
		lineComment:  []string{"//"},
		blockOpen:    "/*",
		blockClose:   "*/",
	},
	{
		name: "java",
		exts: []string{".java"},
		keywords: words(
			"abstract", "assert", "boolean", "break", "byte", "case",
			"catch", "char", "class", "const", "continue", "default", "do",
			"double", "else", "enum", "extends", "final", "finally",
			"float", "for", "if", "implements", "import", "instanceof",
			"int", "interface", "long", "native", "new", "package",
			"private", "protected", "public", "return", "short", "static",
			"super", "switch", "synchronized", "this", "throw", "throws",
			"try", "void", "volatile", "while",
		),
		literalWords: words("true", "false", "null"),
		lineComment:  []string{"//"},
		blockOpen:    "/*",
		blockClose:   "*/",
	},
	{
		name: "c",
		exts: []string{".c", ".h"},
		keywords: words(
			"auto", "break", "case", "char", "const", "continue", "default",
			"do", "double", "else", "enum", "extern", "float", "for",
			"goto", "if", "int", "long", "register", "return", "short",
			"signed", "sizeof", "static", "struct", "switch", "typedef",
			"union", "unsigned", "void", "volatile", "while",
		),
		literalWords: words("NULL"),
		lineComment:  []string{"//"},
		blockOpen:    "/*",
		blockClose:   "*/",
	},
	{
		name: "cpp",
		exts: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh"},
		keywords: words(
			"auto", "bool", "break", "case", "catch", "char", "class",
			"const", "constexpr", "continue", "default", "delete", "do",
			"double", "else", "enum", "explicit", "extern", "float", "for",
			"friend", "goto", "if", "inline", "int", "long", "namespace",
			"new", "operator", "private", "protected", "public", "return",
			"short", "signed", "sizeof", "static", "struct", "switch",
			"template", "this", "throw", "try", "typedef", "typename",
			"union", "unsigned", "using", "virtual", "void", "volatile",
			"while",
		),
		literalWords: words("true", "false", "nullptr", "NULL"),
		lineComment:  []string{"//"},
		blockOpen:    "/*",
		blockClose:   "*/",
	},
	{
		name: "ruby",
		exts: []string{".rb"},
		keywords: words(
			"alias", "begin", "break", "case", "class", "def", "do",
			"else", "elsif", "end", "ensure", "for", "if", "in", "module",
			"next", "not", "or", "and", "redo", "rescue", "retry",
			"return", "self", "super", "then", "unless", "until", "when",
			"while", "yield",
		),
		literalWords: words("true", "false", "nil"),
		hashComment:  true,
	},
}

var specsByExt = func() map[string]*langSpec {
	m := make(map[string]*langSpec)
	for _, spec := range langSpecs {
		for _, ext := range spec.exts {
			m[ext] = spec
		}
	}
	return m
}()

func specForExt(ext string) *langSpec {
	return specsByExt[ext]
}
