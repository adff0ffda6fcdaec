package xbrl

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// parseSchema reads the taxonomy schema (.xsd) and fills the element catalog
// and the role catalog. Element declarations carry the concept's data type,
// period type, balance, and abstract flag; roleType declarations carry the
// human-readable definitions for the extended link roles.
func parseSchema(filename string, data []byte) (ElementCatalog, []Role, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = asciiToUTF8

	catalog := make(ElementCatalog)
	var roles []Role

	var currentRole *Role

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &MalformedXBRLError{File: filename, Reason: "schema XML not well-formed", Err: err}
		}

		switch elem := token.(type) {
		case xml.StartElement:
			switch elem.Name.Local {
			case "element":
				id := getAttr(elem.Attr, "id")
				name := getAttr(elem.Attr, "name")
				if id == "" || name == "" {
					continue // import stubs and anonymous types
				}
				el := &Element{
					Name:       conceptFromID(id),
					DataType:   getAttr(elem.Attr, "type"),
					PeriodType: PeriodType(getAttr(elem.Attr, "periodType")),
					Balance:    BalanceType(getAttr(elem.Attr, "balance")),
					Abstract:   getAttr(elem.Attr, "abstract") == "true",
					Labels:     make(map[string]string),
				}
				catalog[el.Name] = el
			case "roleType":
				uri := getAttr(elem.Attr, "roleURI")
				if uri == "" {
					continue
				}
				roles = append(roles, Role{URI: uri})
				currentRole = &roles[len(roles)-1]
			case "definition":
				if currentRole == nil {
					continue
				}
				var text string
				if err := decoder.DecodeElement(&text, &elem); err != nil {
					continue
				}
				currentRole.Definition = strings.TrimSpace(text)
			}
		case xml.EndElement:
			if elem.Name.Local == "roleType" {
				currentRole = nil
			}
		}
	}

	return catalog, roles, nil
}

// conceptFromID converts a schema element id to a qualified concept name.
// EDGAR schemas use "us-gaap_Revenues" style ids; the first underscore
// separates the namespace prefix from the local name.
func conceptFromID(id string) string {
	if i := strings.IndexByte(id, '_'); i >= 0 {
		return id[:i] + ":" + id[i+1:]
	}
	return id
}

// conceptFromHref resolves an xlink:href locator to a qualified concept name.
// Hrefs look like "aapl-20231230.xsd#us-gaap_Revenues".
func conceptFromHref(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[i+1:]
	}
	return conceptFromID(href)
}

// asciiToUTF8 tolerates the us-ascii and iso-8859-1 encoding declarations that
// appear in SEC filings by reading them as UTF-8.
func asciiToUTF8(charset string, input io.Reader) (io.Reader, error) {
	return input, nil
}
