package xbrl

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed concept_mappings.json
var conceptMappingsJSON []byte

// ConceptMapping is the structure of concept_mappings.json.
type ConceptMapping struct {
	Schema      string                       `json:"$schema"`
	Description string                       `json:"description"`
	Version     string                       `json:"version"`
	Mappings    map[string]ConceptDefinition `json:"mappings"`
}

// ConceptDefinition defines a standardized label and its XBRL variations, in
// precedence order: the earlier a concept appears, the more it is preferred
// when a filing tags the same economics with several variants.
type ConceptDefinition struct {
	Concepts []string `json:"concepts"`
	Notes    string   `json:"notes"`
}

// ConceptMapper maps XBRL concepts to standardized display labels. Built
// once from a JSON specification and immutable thereafter, so one mapper may
// be shared across concurrent parses.
type ConceptMapper struct {
	mappings      map[string]ConceptDefinition
	reverseLookup map[string]string // concept -> standardized label
	priority      map[string]int    // concept -> rank within its label group
}

var defaultMapper = mustLoadConceptMapper(conceptMappingsJSON)

func mustLoadConceptMapper(data []byte) *ConceptMapper {
	m, err := NewConceptMapper(data)
	if err != nil {
		panic(fmt.Sprintf("embedded concept mappings: %v", err))
	}
	return m
}

// DefaultConceptMapper returns the mapper built from the embedded mapping
// document.
func DefaultConceptMapper() *ConceptMapper { return defaultMapper }

// NewConceptMapper parses a mapping JSON document and builds the lookup
// tables. Tests supply their own documents to exercise alternative mappings.
func NewConceptMapper(data []byte) (*ConceptMapper, error) {
	var mapping ConceptMapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse concept mappings: %w", err)
	}

	mapper := &ConceptMapper{
		mappings:      mapping.Mappings,
		reverseLookup: make(map[string]string),
		priority:      make(map[string]int),
	}
	for label, def := range mapping.Mappings {
		for rank, concept := range def.Concepts {
			mapper.reverseLookup[concept] = label
			mapper.priority[concept] = rank
		}
	}
	return mapper, nil
}

// StandardLabel returns the standardized label for a concept, or "" when no
// mapping exists. Matching falls back to case-insensitive comparison because
// some filings vary concept capitalization.
func (m *ConceptMapper) StandardLabel(concept string) string {
	if label, ok := m.reverseLookup[concept]; ok {
		return label
	}
	for known, label := range m.reverseLookup {
		if strings.EqualFold(known, concept) {
			return label
		}
	}
	return ""
}

// HasMapping reports whether the concept has a standardized label.
func (m *ConceptMapper) HasMapping(concept string) bool {
	return m.StandardLabel(concept) != ""
}

// Priority returns the concept's rank within its standardized label group;
// lower ranks are preferred when deduplicating variant tags. Unmapped
// concepts rank last.
func (m *ConceptMapper) Priority(concept string) int {
	if rank, ok := m.priority[concept]; ok {
		return rank
	}
	return 1 << 16
}

// Concepts returns the XBRL concepts mapped to a standardized label, in
// precedence order.
func (m *ConceptMapper) Concepts(standardizedLabel string) ([]string, error) {
	def, ok := m.mappings[standardizedLabel]
	if !ok {
		return nil, fmt.Errorf("unknown standardized label: %s", standardizedLabel)
	}
	return def.Concepts, nil
}

// Labels returns all standardized labels, sorted.
func (m *ConceptMapper) Labels() []string {
	labels := make([]string, 0, len(m.mappings))
	for label := range m.mappings {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
