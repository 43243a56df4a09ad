package suppress

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidSuppressionPattern indicates a malformed suppression glob. It is
// raised at configuration time, before any scanning begins; a misconfigured
// rule must not silently under-suppress.
var ErrInvalidSuppressionPattern = errors.New("invalid suppression pattern")

// Rule is a compiled suppression glob, matched against whole raw source
// lines. Globs use fnmatch semantics: * matches any run of characters
// (including path separators), ? a single character, [...] a class.
type Rule struct {
	Pattern string
	re      *regexp.Regexp
}

// Match reports whether the rule matches the given raw line.
func (r Rule) Match(line string) bool {
	return r.re.MatchString(line)
}

// CompileRules compiles glob patterns into rules, failing fast on the first
// malformed one.
func CompileRules(patterns []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		expr, err := translateGlob(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSuppressionPattern, p, err)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSuppressionPattern, p, err)
		}
		rules = append(rules, Rule{Pattern: p, re: re})
	}
	return rules, nil
}

// translateGlob converts an fnmatch-style glob to an anchored regexp.
// Path-glob libraries are deliberately not used here: rules match free-form
// source text, where * must cross '/' and '.' freely.
func translateGlob(pattern string) (string, error) {
	var sb strings.Builder
	sb.WriteString(`^`)
	rs := []rune(pattern)
	for i := 0; i < len(rs); i++ {
		switch c := rs[i]; c {
		case '*':
			sb.WriteString(`.*`)
		case '?':
			sb.WriteString(`.`)
		case '\\':
			if i+1 >= len(rs) {
				return "", errors.New("trailing backslash")
			}
			i++
			sb.WriteString(regexp.QuoteMeta(string(rs[i])))
		case '[':
			j := i + 1
			if j < len(rs) && (rs[j] == '!' || rs[j] == '^') {
				j++
			}
			if j < len(rs) && rs[j] == ']' {
				j++ // a leading ] is literal
			}
			for j < len(rs) && rs[j] != ']' {
				j++
			}
			if j >= len(rs) {
				return "", errors.New("unterminated character class")
			}
			class := string(rs[i+1 : j])
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			sb.WriteString("[" + class + "]")
			i = j
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	sb.WriteString(`$`)
	return sb.String(), nil
}
