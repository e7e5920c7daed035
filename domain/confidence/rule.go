package confidence

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"gocorda/domain/core"
)

var transcriptSuffix = regexp.MustCompile(`\.\d*`)

// NormalizeGeneID strips transcript dot-notation ("10005.1" -> "10005")
func NormalizeGeneID(gid string) string {
	return transcriptSuffix.ReplaceAllString(gid, "")
}

// ReactionConfidence evaluates a gene-reaction rule against gene confidences.
// "and" takes the minimum of its operands, "or" the maximum; "and" binds tighter.
// Genes missing from the map and empty rules count as Unknown.
func ReactionConfidence(rule string, genes map[string]Level) (Level, error) {
	toks, err := tokenize(rule)
	if err != nil {
		return 0, err
	}
	if len(toks) == 0 {
		return Unknown, nil
	}
	p := &ruleParser{toks: toks, genes: genes}
	l, err := p.or()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.toks) {
		return 0, fmt.Errorf("%w: unexpected %q in %q", core.ErrInvalidRule, p.toks[p.pos].text, rule)
	}
	return l, nil
}

// FromRules derives a reaction confidence map from reaction id -> rule
func FromRules(rules map[string]string, genes map[string]Level) (Map, error) {
	m := make(Map, len(rules))
	for id, rule := range rules {
		l, err := ReactionConfidence(rule, genes)
		if err != nil {
			return nil, fmt.Errorf("reaction %s: %w", id, err)
		}
		m[id] = l
	}
	return m, nil
}

type tokenKind int

const (
	tokGene tokenKind = iota
	tokAnd
	tokOr
	tokOpen
	tokClose
)

type token struct {
	kind tokenKind
	text string
}

func isGeneRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("_.:-", r)
}

func tokenize(rule string) ([]token, error) {
	var toks []token
	runes := []rune(rule)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{kind: tokOpen, text: "("})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokClose, text: ")"})
			i++
		case isGeneRune(r):
			j := i
			for j < len(runes) && isGeneRune(runes[j]) {
				j++
			}
			word := string(runes[i:j])
			switch strings.ToLower(word) {
			case "and":
				toks = append(toks, token{kind: tokAnd, text: word})
			case "or":
				toks = append(toks, token{kind: tokOr, text: word})
			default:
				toks = append(toks, token{kind: tokGene, text: word})
			}
			i = j
		default:
			return nil, fmt.Errorf("%w: unsupported operation %q in %q", core.ErrInvalidRule, string(r), rule)
		}
	}
	return toks, nil
}

type ruleParser struct {
	toks  []token
	pos   int
	genes map[string]Level
}

func (p *ruleParser) peek(kind tokenKind) bool {
	return p.pos < len(p.toks) && p.toks[p.pos].kind == kind
}

func (p *ruleParser) or() (Level, error) {
	l, err := p.and()
	if err != nil {
		return 0, err
	}
	for p.peek(tokOr) {
		p.pos++
		r, err := p.and()
		if err != nil {
			return 0, err
		}
		l = Max(l, r)
	}
	return l, nil
}

func (p *ruleParser) and() (Level, error) {
	l, err := p.operand()
	if err != nil {
		return 0, err
	}
	for p.peek(tokAnd) {
		p.pos++
		r, err := p.operand()
		if err != nil {
			return 0, err
		}
		l = Min(l, r)
	}
	return l, nil
}

func (p *ruleParser) operand() (Level, error) {
	if p.pos >= len(p.toks) {
		return 0, fmt.Errorf("%w: unexpected end of rule", core.ErrInvalidRule)
	}
	t := p.toks[p.pos]
	switch t.kind {
	case tokGene:
		p.pos++
		l, ok := p.genes[NormalizeGeneID(t.text)]
		if !ok {
			return Unknown, nil
		}
		return l, nil
	case tokOpen:
		p.pos++
		l, err := p.or()
		if err != nil {
			return 0, err
		}
		if !p.peek(tokClose) {
			return 0, fmt.Errorf("%w: missing closing parenthesis", core.ErrInvalidRule)
		}
		p.pos++
		return l, nil
	default:
		return 0, fmt.Errorf("%w: unexpected %q", core.ErrInvalidRule, t.text)
	}
}
