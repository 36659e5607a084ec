package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// token matches one word of a label: ASCII or Cyrillic letters, digits, underscore.
// Case-insensitivity comes from the (?i) flag on each pattern.
const token = `[a-zа-я0-9_]+`

// ws is one whitespace rune. RE2's \s is ASCII only, so Unicode separators such
// as the no-break space browsers paste into text are added explicitly.
const ws = `[\s\p{Z}\x{FEFF}]`

// DefaultKeywords introduce the labeled-colon arrow form, e.g. "relationship: A -> B".
var DefaultKeywords = []string{"relationship", "связь"}

var (
	reCopula = regexp.MustCompile(`(?i)(` + token + `)` + ws + `+is` + ws + `+connected` + ws + `+to` + ws + `+(` + token + `(?:` + ws + `+` + token + `)*)`)
	reArrow  = regexp.MustCompile(`(?i)(` + token + `)` + ws + `*->` + ws + `*(` + token + `)`)
)

// matcher pairs a syntactic form with the way its scan resumes. Arrow forms
// resume at the captured target so "A -> B -> C" yields A->B and B->C.
type matcher struct {
	name  string
	re    *regexp.Regexp
	chain bool
}

func labeledArrow(keywords []string) (*regexp.Regexp, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(k))
	}
	if len(quoted) == 0 {
		return nil, nil
	}
	expr := `(?i)(?:` + strings.Join(quoted, "|") + `)` + ws + `*:` + ws + `*(` + token + `)` + ws + `*->` + ws + `*(` + token + `)`
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile keyword pattern: %w", err)
	}
	return re, nil
}

// buildMatchers returns the forms in evaluation order: copula, labeled arrow, bare arrow.
func buildMatchers(keywords []string) ([]matcher, error) {
	ms := []matcher{{name: "copula", re: reCopula}}
	labeled, err := labeledArrow(keywords)
	if err != nil {
		return nil, err
	}
	if labeled != nil {
		ms = append(ms, matcher{name: "labeled-arrow", re: labeled, chain: true})
	}
	ms = append(ms, matcher{name: "arrow", re: reArrow, chain: true})
	return ms, nil
}

// scan finds every match of m in sentence and calls fn with the raw captures.
func (m matcher) scan(sentence string, fn func(whole, from, to string)) {
	pos := 0
	for pos < len(sentence) {
		loc := m.re.FindStringSubmatchIndex(sentence[pos:])
		if loc == nil {
			return
		}
		fn(sentence[pos+loc[0]:pos+loc[1]], sentence[pos+loc[2]:pos+loc[3]], sentence[pos+loc[4]:pos+loc[5]])

		next := pos + loc[1]
		if m.chain {
			next = pos + loc[4]
		}
		if next <= pos {
			next = pos + 1
		}
		pos = next
	}
}
