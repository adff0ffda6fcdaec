package xbrl

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// parseLabels reads the label linkbase and attaches each label to its concept
// in the catalog, keyed by label role URI.
//
// The linkbase indirects twice: locators bind xlink labels to concept hrefs,
// labelArcs bind locator labels to label-resource labels, and the label
// resources carry the text. All three are collected in one pass and joined at
// the end, since document order is not guaranteed.
func parseLabels(filename string, data []byte, catalog ElementCatalog) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = asciiToUTF8

	type labelResource struct {
		role string
		text string
	}

	locToConcept := make(map[string]string)           // locator label -> concept
	arcs := make(map[string][]string)                 // locator label -> resource labels
	resources := make(map[string][]labelResource, 64) // resource label -> labels

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &MalformedXBRLError{File: filename, Reason: "label linkbase XML not well-formed", Err: err}
		}

		elem, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		switch elem.Name.Local {
		case "loc":
			label := getAttr(elem.Attr, "label")
			href := getAttr(elem.Attr, "href")
			if label != "" && href != "" {
				locToConcept[label] = conceptFromHref(href)
			}
		case "labelArc":
			from := getAttr(elem.Attr, "from")
			to := getAttr(elem.Attr, "to")
			if from != "" && to != "" {
				arcs[from] = append(arcs[from], to)
			}
		case "label":
			resLabel := getAttr(elem.Attr, "label")
			role := getAttr(elem.Attr, "role")
			if resLabel == "" {
				continue
			}
			if role == "" {
				role = LabelRoleStandard
			}
			var text string
			if err := decoder.DecodeElement(&text, &elem); err != nil {
				continue
			}
			resources[resLabel] = append(resources[resLabel], labelResource{
				role: role,
				text: strings.TrimSpace(text),
			})
		}
	}

	for locLabel, concept := range locToConcept {
		el, ok := catalog[concept]
		if !ok {
			// Labels for concepts outside the filing's schema (standard
			// taxonomy imports) are common; register a minimal entry so
			// arcs and facts can still resolve them.
			el = &Element{Name: concept, Labels: make(map[string]string)}
			catalog[concept] = el
		}
		for _, resLabel := range arcs[locLabel] {
			for _, res := range resources[resLabel] {
				if res.text != "" {
					el.Labels[res.role] = res.text
				}
			}
		}
	}

	return nil
}
