package xbrl

import (
	"bytes"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// parseInline reads an inline-XBRL (iXBRL) document: an HTML wrapper whose
// ix:header/ix:resources section carries the contexts and units, and whose
// body embeds facts as ix:nonFraction and ix:nonNumeric elements.
//
// The HTML tokenizer lowercases tag and attribute names, so all matching here
// is against lowercase forms.
func parseInline(filename string, data []byte) (ContextTable, UnitTable, []*Fact, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, nil, &MalformedXBRLError{File: filename, Reason: "inline XBRL HTML not parseable", Err: err}
	}

	contexts := make(ContextTable)
	units := make(UnitTable)
	var raws []rawFact

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch localTag(n.Data) {
			case "context":
				if ctx := inlineContext(n); ctx != nil {
					contexts[ctx.ID] = ctx
				}
			case "unit":
				if unit := inlineUnit(n); unit != nil {
					units[unit.ID] = unit
				}
			case "nonfraction", "nonnumeric":
				if r, ok := inlineFact(n); ok {
					raws = append(raws, r)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(contexts) == 0 {
		return nil, nil, nil, &MalformedXBRLError{File: filename, Reason: "inline XBRL document has no xbrli:context resources"}
	}

	facts, err := resolveRawFacts(filename, contexts, units, raws)
	if err != nil {
		return nil, nil, nil, err
	}
	return contexts, units, facts, nil
}

// localTag strips the namespace prefix from an HTML tag name.
func localTag(tag string) string {
	if i := strings.IndexByte(tag, ':'); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

func htmlAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name || localTag(a.Key) == name {
			return a.Val
		}
	}
	return ""
}

// findDescendant returns the first descendant element whose local tag matches.
func findDescendant(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && localTag(c.Data) == tag {
			return c
		}
		if found := findDescendant(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// collectDescendants appends every descendant element with the local tag.
func collectDescendants(n *html.Node, tag string, out *[]*html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && localTag(c.Data) == tag {
			*out = append(*out, c)
		}
		collectDescendants(c, tag, out)
	}
}

// nodeText concatenates the text content beneath a node.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(string(NormalizeText([]byte(b.String()))))
}

func inlineContext(n *html.Node) *Context {
	id := htmlAttr(n, "id")
	if id == "" {
		return nil
	}
	ctx := &Context{ID: id}

	if ident := findDescendant(n, "identifier"); ident != nil {
		ctx.Entity = nodeText(ident)
	}

	parseDate := func(tag string) time.Time {
		node := findDescendant(n, tag)
		if node == nil {
			return time.Time{}
		}
		t, err := time.Parse("2006-01-02", nodeText(node))
		if err != nil {
			return time.Time{}
		}
		return t
	}
	if instant := parseDate("instant"); !instant.IsZero() {
		ctx.Period = Period{Instant: instant}
	} else {
		start, end := parseDate("startdate"), parseDate("enddate")
		if start.IsZero() || end.IsZero() {
			return nil
		}
		ctx.Period = Period{StartDate: start, EndDate: end}
	}

	var members []*html.Node
	collectDescendants(n, "explicitmember", &members)
	for _, m := range members {
		ctx.Dimensions = append(ctx.Dimensions, Dimension{
			Axis:   htmlAttr(m, "dimension"),
			Member: nodeText(m),
		})
	}
	return ctx
}

func inlineUnit(n *html.Node) *Unit {
	id := htmlAttr(n, "id")
	if id == "" {
		return nil
	}
	unit := &Unit{ID: id}
	if divide := findDescendant(n, "divide"); divide != nil {
		if num := findDescendant(divide, "unitnumerator"); num != nil {
			if m := findDescendant(num, "measure"); m != nil {
				unit.Numerator = nodeText(m)
			}
		}
		if den := findDescendant(divide, "unitdenominator"); den != nil {
			if m := findDescendant(den, "measure"); m != nil {
				unit.Denominator = nodeText(m)
			}
		}
		return unit
	}
	if m := findDescendant(n, "measure"); m != nil {
		unit.Measure = nodeText(m)
	}
	return unit
}

func inlineFact(n *html.Node) (rawFact, bool) {
	contextRef := htmlAttr(n, "contextref")
	name := htmlAttr(n, "name")
	if contextRef == "" || name == "" {
		return rawFact{}, false
	}
	r := rawFact{
		concept:    name,
		value:      nodeText(n),
		contextRef: contextRef,
		unitRef:    htmlAttr(n, "unitref"),
		decimals:   parseDecimalsAttr(htmlAttr(n, "decimals")),
		scale:      parseDecimalsAttr(htmlAttr(n, "scale")),
		negated:    htmlAttr(n, "sign") == "-",
		nilled:     htmlAttr(n, "nil") == "true",
	}
	if r.scale == DecimalsInf {
		r.scale = 0
	}
	return r, true
}
