package network

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gocorda/domain/core"
)

// DefaultBound is the flux bound given to reactions built from strings
const DefaultBound = 1000.0

var (
	reversibleArrow = regexp.MustCompile(`<(-+|=+)>`)
	forwardArrow    = regexp.MustCompile(`(-+|=+)>`)
	reverseArrow    = regexp.MustCompile(`<(-+|=+)`)
	termSeparator   = regexp.MustCompile(`\s+\+\s+`)
)

// HasArrow reports whether s looks like a reaction string rather than a metabolite id
func HasArrow(s string) bool {
	return reversibleArrow.MatchString(s) || forwardArrow.MatchString(s) || reverseArrow.MatchString(s)
}

// ParseReactionString parses "A + 2 B -> C" style equations. "<=>" is
// reversible, "->" forward only and "<-" backward only. Either side may be
// empty, which describes an exchange or demand.
func ParseReactionString(s string) (stoich map[string]float64, lb, ub float64, err error) {
	var loc []int
	switch {
	case reversibleArrow.MatchString(s):
		loc = reversibleArrow.FindStringIndex(s)
		lb, ub = -DefaultBound, DefaultBound
	case forwardArrow.MatchString(s):
		loc = forwardArrow.FindStringIndex(s)
		lb, ub = 0, DefaultBound
	case reverseArrow.MatchString(s):
		loc = reverseArrow.FindStringIndex(s)
		lb, ub = -DefaultBound, 0
	default:
		return nil, 0, 0, fmt.Errorf("%w: no arrow in %q", core.ErrInvalidReaction, s)
	}

	stoich = make(map[string]float64)
	if err := addSide(stoich, s[:loc[0]], -1); err != nil {
		return nil, 0, 0, fmt.Errorf("%w in %q", err, s)
	}
	if err := addSide(stoich, s[loc[1]:], 1); err != nil {
		return nil, 0, 0, fmt.Errorf("%w in %q", err, s)
	}
	for id, c := range stoich {
		if c == 0 {
			delete(stoich, id)
		}
	}
	return stoich, lb, ub, nil
}

func addSide(stoich map[string]float64, side string, sign float64) error {
	side = strings.TrimSpace(side)
	if side == "" {
		return nil
	}
	for _, term := range termSeparator.Split(side, -1) {
		fields := strings.Fields(term)
		coef := 1.0
		var id string
		switch len(fields) {
		case 1:
			id = fields[0]
		case 2:
			c, err := strconv.ParseFloat(strings.Trim(fields[0], "()"), 64)
			if err != nil {
				return fmt.Errorf("%w: bad coefficient %q", core.ErrInvalidReaction, fields[0])
			}
			coef, id = c, fields[1]
		default:
			return fmt.Errorf("%w: bad term %q", core.ErrInvalidReaction, term)
		}
		if id == "+" {
			return fmt.Errorf("%w: dangling '+'", core.ErrInvalidReaction)
		}
		stoich[id] += sign * coef
	}
	return nil
}

// FormatReaction renders a reaction back into equation form
func FormatReaction(r *Reaction) string {
	var lhs, rhs []string
	for _, id := range sortedKeys(r.Metabolites) {
		c := r.Metabolites[id]
		term := id
		if a := absf(c); a != 1 {
			term = strconv.FormatFloat(a, 'g', -1, 64) + " " + id
		}
		if c < 0 {
			lhs = append(lhs, term)
		} else if c > 0 {
			rhs = append(rhs, term)
		}
	}
	arrow := "-->"
	switch {
	case r.Reversible():
		arrow = "<=>"
	case r.UpperBound <= 0 && r.LowerBound < 0:
		arrow = "<--"
	}
	return strings.TrimSpace(strings.Join(lhs, " + ") + " " + arrow + " " + strings.Join(rhs, " + "))
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
