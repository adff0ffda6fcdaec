package xbrl

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

//go:embed expense_signs.json
var expenseSignsJSON []byte

type signRulesFile struct {
	Version            string   `json:"version"`
	PositivePatterns   []string `json:"positivePatterns"`
	NegativeExceptions []string `json:"negativeExceptions"`
}

// SignPolicy normalizes expense signs across filers. Calculation weights
// negate expense contributions so that totals add up, but displayed expense
// lines should stay positive; the policy's whitelist of concept local-name
// patterns pins them positive, while the exception list protects items that
// are legitimately negative (tax benefits, FX losses).
//
// The whitelist is empirical. It is loaded from a JSON document and can be
// extended at runtime via Extend as new expense concepts show up in filings.
type SignPolicy struct {
	positive   []*regexp.Regexp
	exceptions []*regexp.Regexp
}

var defaultSignPolicy = mustLoadSignPolicy(expenseSignsJSON)

func mustLoadSignPolicy(data []byte) *SignPolicy {
	p, err := NewSignPolicy(data)
	if err != nil {
		panic(fmt.Sprintf("embedded expense sign rules: %v", err))
	}
	return p
}

// DefaultSignPolicy returns the policy built from the embedded rule set.
func DefaultSignPolicy() *SignPolicy { return defaultSignPolicy }

// NewSignPolicy parses a sign-rule JSON document.
func NewSignPolicy(data []byte) (*SignPolicy, error) {
	var file signRulesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse expense sign rules: %w", err)
	}
	policy := &SignPolicy{}
	for _, p := range file.PositivePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("bad sign pattern %q: %w", p, err)
		}
		policy.positive = append(policy.positive, re)
	}
	for _, p := range file.NegativeExceptions {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("bad sign exception %q: %w", p, err)
		}
		policy.exceptions = append(policy.exceptions, re)
	}
	return policy, nil
}

// Extend adds positive-pattern regexes at runtime. It returns a new policy;
// existing policies stay immutable so shared references remain safe.
func (p *SignPolicy) Extend(patterns ...string) (*SignPolicy, error) {
	next := &SignPolicy{
		positive:   append([]*regexp.Regexp(nil), p.positive...),
		exceptions: append([]*regexp.Regexp(nil), p.exceptions...),
	}
	for _, pat := range patterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("bad sign pattern %q: %w", pat, err)
		}
		next.positive = append(next.positive, re)
	}
	return next, nil
}

// ForcesPositive reports whether the concept's displayed value must be
// non-negative.
func (p *SignPolicy) ForcesPositive(concept string) bool {
	local := LocalName(concept)
	for _, re := range p.exceptions {
		if re.MatchString(local) {
			return false
		}
	}
	for _, re := range p.positive {
		if re.MatchString(local) {
			return true
		}
	}
	return false
}

// Apply yields the display value for a fact value: the calculation weight is
// applied first, then the whitelist override flips whitelisted expenses back
// positive when the weight would have made them negative.
func (p *SignPolicy) Apply(concept string, value decimal.Decimal, weight float64) decimal.Decimal {
	out := value
	if weight < 0 {
		out = out.Neg()
	}
	if out.IsNegative() && p.ForcesPositive(concept) {
		out = out.Abs()
	}
	return out
}
