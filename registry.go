package xbrl

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
)

//go:embed statement_registry.json
var statementRegistryJSON []byte

// StatementType names a canonical financial statement.
type StatementType string

const (
	BalanceSheet        StatementType = "BalanceSheet"
	IncomeStatement     StatementType = "IncomeStatement"
	CashFlowStatement   StatementType = "CashFlowStatement"
	StatementOfEquity   StatementType = "StatementOfEquity"
	ComprehensiveIncome StatementType = "ComprehensiveIncome"
	CoverPage           StatementType = "CoverPage"
)

// contentRule is one weighted concept group for content-based scoring; any
// concept in the group satisfies the rule.
type contentRule struct {
	Concepts []string `json:"concepts"`
	Weight   float64  `json:"weight"`
}

// statementSpec is the raw JSON form of one registry entry.
type statementSpec struct {
	PrimaryConcepts    []string      `json:"primaryConcepts"`
	ConceptPatterns    []string      `json:"conceptPatterns"`
	RolePatterns       []string      `json:"rolePatterns"`
	Content            []contentRule `json:"content"`
	MinContentScore    float64       `json:"minContentScore"`
	RequiredPeriodType string        `json:"requiredPeriodType"`
}

type registryFile struct {
	Version    string                   `json:"version"`
	Statements map[string]statementSpec `json:"statements"`
}

// StatementSpec is one compiled registry entry.
type StatementSpec struct {
	Type               StatementType
	PrimaryConcepts    []string
	ConceptPatterns    []*regexp.Regexp
	RolePatterns       []*regexp.Regexp
	Content            []contentRule
	MinContentScore    float64
	RequiredPeriodType PeriodType
}

// StatementRegistry maps canonical statement types to their resolution rules.
// The registry is data, not code: new statement types need only a new JSON
// entry. It is immutable after construction and safe to share across parses.
type StatementRegistry struct {
	specs map[StatementType]*StatementSpec
}

var defaultRegistry = mustLoadStatementRegistry(statementRegistryJSON)

func mustLoadStatementRegistry(data []byte) *StatementRegistry {
	r, err := NewStatementRegistry(data)
	if err != nil {
		panic(fmt.Sprintf("embedded statement registry: %v", err))
	}
	return r
}

// DefaultStatementRegistry returns the registry built from the embedded
// specification.
func DefaultStatementRegistry() *StatementRegistry { return defaultRegistry }

// NewStatementRegistry parses a registry JSON document and compiles its
// patterns. Tests and callers with custom taxonomies supply their own
// documents here instead of mutating the default.
func NewStatementRegistry(data []byte) (*StatementRegistry, error) {
	var file registryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse statement registry: %w", err)
	}

	reg := &StatementRegistry{specs: make(map[StatementType]*StatementSpec)}
	for name, raw := range file.Statements {
		spec := &StatementSpec{
			Type:               StatementType(name),
			PrimaryConcepts:    raw.PrimaryConcepts,
			Content:            raw.Content,
			MinContentScore:    raw.MinContentScore,
			RequiredPeriodType: PeriodType(raw.RequiredPeriodType),
		}
		for _, p := range raw.ConceptPatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("statement %s: bad concept pattern %q: %w", name, p, err)
			}
			spec.ConceptPatterns = append(spec.ConceptPatterns, re)
		}
		for _, p := range raw.RolePatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("statement %s: bad role pattern %q: %w", name, p, err)
			}
			spec.RolePatterns = append(spec.RolePatterns, re)
		}
		reg.specs[spec.Type] = spec
	}
	return reg, nil
}

// Spec returns the compiled entry for a statement type.
func (r *StatementRegistry) Spec(t StatementType) (*StatementSpec, error) {
	spec, ok := r.specs[t]
	if !ok {
		return nil, fmt.Errorf("unknown statement type %s", t)
	}
	return spec, nil
}

// Types returns the registered statement types, sorted.
func (r *StatementRegistry) Types() []StatementType {
	out := make([]StatementType, 0, len(r.specs))
	for t := range r.specs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
