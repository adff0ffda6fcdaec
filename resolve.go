package xbrl

// Resolution is the outcome of mapping a canonical statement type onto one of
// a filing's presentation roles.
type Resolution struct {
	StatementType StatementType
	Role          string
	Confidence    float64
	Tier          string // which resolution tier matched, for diagnostics
}

// Resolution confidence levels per tier.
const (
	confPrimary         = 0.90
	confConceptPattern  = 0.85
	confRolePattern     = 0.75
	confContentBase     = 0.60
	confContentSpan     = 0.25 // content confidence spans 0.60..0.85
	confFallbackCeiling = 0.50
	minConfidence       = 0.40
)

// ResolveStatement finds the presentation role for a canonical statement
// type using the default registry.
func (f *Filing) ResolveStatement(t StatementType, parenthetical bool) (Resolution, error) {
	return ResolveStatement(f, t, parenthetical, DefaultStatementRegistry())
}

// ResolveStatement maps a statement type to a role URI. Tiers are tried in
// order, first match wins, each tier annotating its own confidence:
//
//  1. primary abstract concept at or near a role's root (0.90)
//  2. registry concept-name patterns, for company taxonomies (0.85)
//  3. registry patterns over the role URI / definition text (0.75)
//  4. content scoring over weighted key concepts (0.60-0.85)
//  5. fallback guess (<= 0.50), or StatementNotFoundError below 0.40
//
// The parenthetical flag filters candidates at every tier: the plain balance
// sheet must never resolve to its "(Parenthetical)" twin, and vice versa.
func ResolveStatement(f *Filing, t StatementType, parenthetical bool, registry *StatementRegistry) (Resolution, error) {
	spec, err := registry.Spec(t)
	if err != nil {
		return Resolution{}, err
	}

	candidates := resolutionCandidates(f, parenthetical)
	if len(candidates) == 0 {
		return Resolution{}, &StatementNotFoundError{StatementType: t}
	}

	// Tier 1: primary concept at the root region of the tree.
	for _, cand := range candidates {
		for _, primary := range spec.PrimaryConcepts {
			if treeHasNearRoot(cand.tree, primary) {
				return found(t, cand.role.URI, confPrimary, "primary-concept"), nil
			}
		}
	}

	// Tier 2: company-taxonomy concept patterns.
	for _, cand := range candidates {
		for _, re := range spec.ConceptPatterns {
			for _, concept := range cand.tree.Concepts() {
				if re.MatchString(concept) {
					return found(t, cand.role.URI, confConceptPattern, "concept-pattern"), nil
				}
			}
		}
	}

	// Tier 3: role URI / definition text patterns.
	for _, cand := range candidates {
		for _, re := range spec.RolePatterns {
			if re.MatchString(cand.role.URI) || re.MatchString(cand.role.Definition) {
				return found(t, cand.role.URI, confRolePattern, "role-pattern"), nil
			}
		}
	}

	// Tier 4: content scoring.
	bestRole, bestScore := "", 0.0
	for _, cand := range candidates {
		score := contentScore(spec, cand.tree)
		if score > bestScore {
			bestRole, bestScore = cand.role.URI, score
		}
	}
	if bestRole != "" && bestScore >= spec.MinContentScore {
		conf := confContentBase + confContentSpan*(bestScore-spec.MinContentScore)/(1-spec.MinContentScore)
		return found(t, bestRole, conf, "content-score"), nil
	}

	// Tier 5: fallback guess on partial content evidence.
	if bestRole != "" {
		conf := bestScore
		if conf > confFallbackCeiling {
			conf = confFallbackCeiling
		}
		if conf >= minConfidence {
			logger.WithField("statement", t).WithField("role", bestRole).
				Debugf("low-confidence fallback resolution (%.2f)", conf)
			return found(t, bestRole, conf, "fallback"), nil
		}
	}

	return Resolution{}, &StatementNotFoundError{StatementType: t, BestRole: bestRole, BestScore: bestScore}
}

func found(t StatementType, role string, conf float64, tier string) Resolution {
	res := Resolution{StatementType: t, Role: role, Confidence: conf, Tier: tier}
	if conf < confRolePattern {
		logger.WithField("statement", t).WithField("role", role).WithField("tier", tier).
			Debugf("statement resolved with confidence %.2f", conf)
	}
	return res
}

type candidate struct {
	role Role
	tree *Tree
}

// resolutionCandidates pairs each presentation role with its tree, filtered
// by the parenthetical flag and ordered by role URI for determinism.
func resolutionCandidates(f *Filing, parenthetical bool) []candidate {
	var out []candidate
	for _, uri := range f.Presentation.RoleURIs() {
		role, ok := f.Role(uri)
		if !ok {
			role = Role{URI: uri}
		}
		if role.IsParenthetical() != parenthetical {
			continue
		}
		out = append(out, candidate{role: role, tree: f.Presentation.Tree(uri)})
	}
	return out
}

// treeHasNearRoot reports whether the concept is the root of the tree or sits
// within the first two levels beneath it. Filers commonly nest the statement
// abstract under a statement table wrapper.
func treeHasNearRoot(tree *Tree, concept string) bool {
	n := tree.Node(concept)
	return n != nil && n.Depth <= 2
}

// contentScore sums the weights of the rule groups whose concepts appear in
// the tree.
func contentScore(spec *StatementSpec, tree *Tree) float64 {
	score := 0.0
	for _, rule := range spec.Content {
		for _, concept := range rule.Concepts {
			if tree.Contains(concept) {
				score += rule.Weight
				break
			}
		}
	}
	return score
}
