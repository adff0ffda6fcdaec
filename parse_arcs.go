package xbrl

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
)

// linkbaseArcNames maps a linkbase kind to its extended link and arc element
// names.
var linkbaseArcNames = map[LinkbaseKind][2]string{
	LinkbasePresentation: {"presentationLink", "presentationArc"},
	LinkbaseCalculation:  {"calculationLink", "calculationArc"},
	LinkbaseDefinition:   {"definitionLink", "definitionArc"},
}

// parseArcs reads one relational linkbase (presentation, calculation, or
// definition) into a flat arc table. Locators are scoped per extended link:
// the same xlink label can bind to different concepts in different roles.
func parseArcs(filename string, data []byte, kind LinkbaseKind) (*ArcTable, error) {
	names, ok := linkbaseArcNames[kind]
	if !ok {
		return nil, &MalformedXBRLError{File: filename, Reason: "unknown linkbase kind " + string(kind)}
	}
	linkName, arcName := names[0], names[1]

	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = asciiToUTF8

	table := &ArcTable{Kind: kind}

	type rawArc struct {
		from, to string
		arc      Arc
	}

	var (
		currentRole string
		locators    map[string]string
		pending     []rawArc
		docOrder    int
	)

	flush := func() {
		for _, r := range pending {
			arc := r.arc
			arc.From = locators[r.from]
			arc.To = locators[r.to]
			if arc.From == "" || arc.To == "" {
				// Arc endpoints must resolve through locators in the same
				// extended link; a dangling endpoint is dropped with a log
				// line rather than failing the whole linkbase.
				logger.WithField("file", filename).WithField("role", currentRole).
					Warnf("dropping %s arc with unresolved locator %s -> %s", kind, r.from, r.to)
				continue
			}
			table.Arcs = append(table.Arcs, arc)
		}
		pending = pending[:0]
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedXBRLError{File: filename, Reason: string(kind) + " linkbase XML not well-formed", Err: err}
		}

		switch elem := token.(type) {
		case xml.StartElement:
			switch elem.Name.Local {
			case linkName:
				flush()
				currentRole = getAttr(elem.Attr, "role")
				locators = make(map[string]string)
			case "loc":
				label := getAttr(elem.Attr, "label")
				href := getAttr(elem.Attr, "href")
				if label != "" && href != "" && locators != nil {
					locators[label] = conceptFromHref(href)
				}
			case arcName:
				docOrder++
				arc := Arc{
					Role:          currentRole,
					Order:         parseOrder(elem.Attr, docOrder),
					DocumentOrder: docOrder,
					Weight:        1,
				}
				if kind == LinkbasePresentation {
					arc.PreferredLabel = getAttr(elem.Attr, "preferredLabel")
				}
				if kind == LinkbaseCalculation {
					if w := getAttr(elem.Attr, "weight"); w != "" {
						if parsed, err := strconv.ParseFloat(w, 64); err == nil {
							arc.Weight = parsed
						}
					}
				}
				if kind == LinkbaseDefinition {
					arc.Arcrole = getAttr(elem.Attr, "arcrole")
				}
				pending = append(pending, rawArc{
					from: getAttr(elem.Attr, "from"),
					to:   getAttr(elem.Attr, "to"),
					arc:  arc,
				})
			}
		case xml.EndElement:
			if elem.Name.Local == linkName {
				flush()
				currentRole = ""
				locators = nil
			}
		}
	}
	flush()

	return table, nil
}

// parseOrder reads the arc's order attribute, accepting both the qualified
// xlink:order and the bare form. Missing or unparsable orders default to the
// document position so the arc still sorts deterministically.
func parseOrder(attrs []xml.Attr, docOrder int) float64 {
	for _, attr := range attrs {
		if attr.Name.Local == "order" {
			if v, err := strconv.ParseFloat(attr.Value, 64); err == nil {
				return v
			}
		}
	}
	return float64(docOrder)
}

// validateArcConcepts checks that every arc endpoint resolves in the element
// catalog, returning a ConceptResolutionError on the first miss.
func validateArcConcepts(table *ArcTable, catalog ElementCatalog) error {
	for _, arc := range table.Arcs {
		if _, ok := catalog[arc.From]; !ok {
			return &ConceptResolutionError{Concept: arc.From, Where: string(table.Kind) + " arc"}
		}
		if _, ok := catalog[arc.To]; !ok {
			return &ConceptResolutionError{Concept: arc.To, Where: string(table.Kind) + " arc"}
		}
	}
	return nil
}
