package xbrl

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// xmlContext mirrors the xbrli:context element for decoding.
type xmlContext struct {
	ID     string `xml:"id,attr"`
	Entity struct {
		Identifier string `xml:"identifier"`
		Segment    struct {
			Members []xmlMember `xml:"explicitMember"`
		} `xml:"segment"`
	} `xml:"entity"`
	Period struct {
		Instant   string `xml:"instant"`
		StartDate string `xml:"startDate"`
		EndDate   string `xml:"endDate"`
	} `xml:"period"`
	// Dimensions may also sit under scenario instead of segment.
	Scenario struct {
		Members []xmlMember `xml:"explicitMember"`
	} `xml:"scenario"`
}

type xmlMember struct {
	Dimension string `xml:"dimension,attr"`
	Member    string `xml:",chardata"`
}

// xmlUnit mirrors the xbrli:unit element for decoding.
type xmlUnit struct {
	ID      string `xml:"id,attr"`
	Measure string `xml:"measure"`
	Divide  *struct {
		Numerator   string `xml:"unitNumerator>measure"`
		Denominator string `xml:"unitDenominator>measure"`
	} `xml:"divide"`
}

// parseInstance reads a standalone XBRL instance document: contexts, units,
// and the dynamic fact elements. Facts are any elements carrying a contextRef
// attribute; their concept name comes from the element's namespace prefix and
// local name.
func parseInstance(filename string, data []byte) (ContextTable, UnitTable, []*Fact, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = asciiToUTF8

	contexts := make(ContextTable)
	units := make(UnitTable)

	var raws []rawFact

	depth := 0
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, nil, &MalformedXBRLError{File: filename, Reason: "instance XML not well-formed", Err: err}
		}

		switch elem := token.(type) {
		case xml.StartElement:
			depth++
			switch elem.Name.Local {
			case "context":
				var xc xmlContext
				if err := decoder.DecodeElement(&xc, &elem); err != nil {
					depth--
					continue
				}
				depth--
				ctx, err := buildContext(xc)
				if err != nil {
					return nil, nil, nil, &MalformedXBRLError{File: filename, Reason: "bad context " + xc.ID, Err: err}
				}
				contexts[ctx.ID] = ctx
			case "unit":
				var xu xmlUnit
				if err := decoder.DecodeElement(&xu, &elem); err != nil {
					depth--
					continue
				}
				depth--
				units[xu.ID] = buildUnit(xu)
			default:
				contextRef := getAttr(elem.Attr, "contextRef")
				if contextRef == "" || depth < 2 {
					continue // structural element, not a fact
				}
				nilled := getAttr(elem.Attr, "nil") == "true"
				unitRef := getAttr(elem.Attr, "unitRef")
				decimals := parseDecimalsAttr(getAttr(elem.Attr, "decimals"))
				var value string
				if err := decoder.DecodeElement(&value, &elem); err != nil {
					depth--
					continue
				}
				depth--
				raws = append(raws, rawFact{
					concept:    qualifiedName(elem.Name),
					value:      strings.TrimSpace(value),
					contextRef: contextRef,
					unitRef:    unitRef,
					decimals:   decimals,
					nilled:     nilled,
				})
			}
		case xml.EndElement:
			depth--
		}
	}

	facts, err := resolveRawFacts(filename, contexts, units, raws)
	if err != nil {
		return nil, nil, nil, err
	}
	return contexts, units, facts, nil
}

// rawFact is a fact as read off the wire, before context and unit resolution.
type rawFact struct {
	concept    string
	value      string
	contextRef string
	unitRef    string
	decimals   int
	scale      int  // inline XBRL scale attribute
	negated    bool // inline XBRL sign="-"
	nilled     bool
}

// resolveRawFacts turns raw fact tuples into typed Facts with resolved
// contexts and units. Nil facts are preserved as absent rather than zero.
// Duplicate (concept, context, unit) tuples keep their first non-empty value.
func resolveRawFacts(filename string, contexts ContextTable, units UnitTable, raws []rawFact) ([]*Fact, error) {
	var facts []*Fact
	seen := make(map[string]bool)

	for _, r := range raws {
		if r.nilled || r.value == "" {
			continue
		}
		ctx, ok := contexts[r.contextRef]
		if !ok {
			return nil, &MalformedXBRLError{File: filename, Reason: fmt.Sprintf("fact %s references unknown context %s", r.concept, r.contextRef)}
		}
		var unit *Unit
		if r.unitRef != "" {
			unit, ok = units[r.unitRef]
			if !ok {
				return nil, &MalformedXBRLError{File: filename, Reason: fmt.Sprintf("fact %s references unknown unit %s", r.concept, r.unitRef)}
			}
		}
		dedupeKey := r.concept + "\x00" + r.contextRef + "\x00" + r.unitRef
		if seen[dedupeKey] {
			continue
		}
		seen[dedupeKey] = true

		fact := &Fact{
			Concept:  r.concept,
			Context:  ctx,
			Unit:     unit,
			Decimals: r.decimals,
		}
		if unit != nil {
			num, err := parseNumericValue(r.value)
			if err != nil {
				// A unitRef with a non-numeric body is a boundary case;
				// keep the text so queries can still see it.
				fact.Value = TextValue(r.value)
			} else {
				if r.scale != 0 {
					num = num.Shift(int32(r.scale))
				}
				if r.negated {
					num = num.Neg()
				}
				fact.Value = NumericValue(num)
			}
		} else {
			fact.Value = TextValue(r.value)
		}
		facts = append(facts, fact)
	}

	return facts, nil
}

func buildContext(xc xmlContext) (*Context, error) {
	ctx := &Context{
		ID:     xc.ID,
		Entity: strings.TrimSpace(xc.Entity.Identifier),
	}

	parse := func(s string) (time.Time, error) {
		return time.Parse("2006-01-02", strings.TrimSpace(s))
	}
	if xc.Period.Instant != "" {
		t, err := parse(xc.Period.Instant)
		if err != nil {
			return nil, err
		}
		ctx.Period = Period{Instant: t}
	} else if xc.Period.StartDate != "" && xc.Period.EndDate != "" {
		start, err := parse(xc.Period.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := parse(xc.Period.EndDate)
		if err != nil {
			return nil, err
		}
		ctx.Period = Period{StartDate: start, EndDate: end}
	} else {
		return nil, fmt.Errorf("context %s has neither instant nor duration period", xc.ID)
	}

	members := xc.Entity.Segment.Members
	members = append(members, xc.Scenario.Members...)
	for _, m := range members {
		ctx.Dimensions = append(ctx.Dimensions, Dimension{
			Axis:   strings.TrimSpace(m.Dimension),
			Member: strings.TrimSpace(m.Member),
		})
	}
	return ctx, nil
}

func buildUnit(xu xmlUnit) *Unit {
	unit := &Unit{ID: xu.ID, Measure: strings.TrimSpace(xu.Measure)}
	if xu.Divide != nil {
		unit.Measure = ""
		unit.Numerator = strings.TrimSpace(xu.Divide.Numerator)
		unit.Denominator = strings.TrimSpace(xu.Divide.Denominator)
	}
	return unit
}

// parseNumericValue parses an XBRL numeric literal. Commas and surrounding
// whitespace are tolerated; parenthesized values are negative.
func parseNumericValue(value string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(value, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	if cleaned == "" || cleaned == "-" || cleaned == "—" {
		return decimal.Zero, fmt.Errorf("empty or invalid value %q", value)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// parseDecimalsAttr reads the decimals attribute; "INF" maps to DecimalsInf.
func parseDecimalsAttr(s string) int {
	if s == "" {
		return 0
	}
	if s == "INF" {
		return DecimalsInf
	}
	d, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return d
}

// qualifiedName builds a "prefix:Local" concept name from an XML element
// name, mapping the namespace URI to its conventional prefix.
func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return namespacePrefix(name.Space) + ":" + name.Local
}

// namespacePrefix extracts a conventional prefix from a namespace URI.
// Example: "http://fasb.org/us-gaap/2023" -> "us-gaap".
func namespacePrefix(namespace string) string {
	known := []string{"us-gaap", "ifrs-full", "dei", "srt", "xbrli", "country", "currency"}
	for _, prefix := range known {
		if strings.Contains(namespace, "/"+prefix+"/") || strings.HasSuffix(namespace, "/"+prefix) {
			return prefix
		}
	}

	// Company taxonomies follow "http://www.company.com/20231231" or
	// "http://company.com/ticker"; use the hostname's registrable label.
	trimmed := strings.TrimPrefix(strings.TrimPrefix(namespace, "https://"), "http://")
	parts := strings.Split(trimmed, "/")
	host := parts[0]
	hostParts := strings.Split(host, ".")
	if len(hostParts) >= 2 {
		return hostParts[len(hostParts)-2]
	}
	if len(parts) > 1 && parts[len(parts)-1] != "" {
		return parts[len(parts)-1]
	}
	return host
}

// getAttr gets an attribute value by local name.
func getAttr(attrs []xml.Attr, name string) string {
	for _, attr := range attrs {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}
