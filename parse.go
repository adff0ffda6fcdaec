package xbrl

import (
	"context"
	"strings"
)

// Format identifies how a bundle's instance document is encoded.
type Format string

const (
	FormatStandalone Format = "standalone"
	FormatInline     Format = "inline"
	FormatUnknown    Format = "unknown"
)

// DetectOptions configures instance format detection. SEC storage sometimes
// answers a filing URL with an XML or HTML error body; ErrorMarkers lists the
// substrings that identify those responses so they are never mistaken for an
// inline-XBRL document.
type DetectOptions struct {
	ErrorMarkers []string
}

// DefaultDetectOptions returns the stock SEC error-response markers.
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{
		ErrorMarkers: []string{
			"<Code>NoSuchKey</Code>",
			"<Code>AccessDenied</Code>",
			"SEC.gov | Request Rate Threshold Exceeded",
			"Your Request Originates from an Undeclared Automated Tool",
		},
	}
}

// DetectFormat classifies instance bytes as standalone XBRL, inline XBRL, or
// unknown. The canonical <xbrl> root is checked before any HTML markers so
// that SGML instance documents, and SEC error responses wrapped in HTML, are
// never routed to the inline parser.
func DetectFormat(data []byte, opts DetectOptions) Format {
	content := string(data)

	for _, marker := range opts.ErrorMarkers {
		if strings.Contains(content, marker) {
			return FormatUnknown
		}
	}

	// Standalone first: the root element is authoritative.
	head := content
	if len(head) > 4096 {
		head = head[:4096]
	}
	if strings.Contains(head, "<xbrl") || strings.Contains(head, "xmlns:xbrli=") {
		if !strings.Contains(head, "<ix:") && !strings.Contains(head, "xmlns:ix=") {
			return FormatStandalone
		}
	}

	if strings.Contains(content, "xmlns:ix=") || strings.Contains(content, "<ix:") {
		return FormatInline
	}

	return FormatUnknown
}

// ParseOptions configures bundle parsing.
type ParseOptions struct {
	Detect DetectOptions
}

// Filing is the fully parsed in-memory model of one XBRL document bundle.
type Filing struct {
	Catalog  ElementCatalog
	Roles    []Role
	Contexts ContextTable
	Units    UnitTable
	Facts    *FactTable

	Presentation *TreeSet
	Calculation  *TreeSet
	Definition   *TreeSet

	Doc DocumentInfo
}

// Role returns the filing's role catalog entry for a URI.
func (f *Filing) Role(uri string) (Role, bool) {
	for _, r := range f.Roles {
		if r.URI == uri {
			return r, true
		}
	}
	return Role{}, false
}

// ParseBundle parses a bundle using default options.
func ParseBundle(ctx context.Context, src Source) (*Filing, error) {
	return ParseBundleOptions(ctx, src, ParseOptions{Detect: DefaultDetectOptions()})
}

// ParseBundleOptions parses the five-file XBRL bundle supplied by src into a
// Filing. The phases run in dependency order — schema, labels, relational
// linkbases, instance, trees — and the context is checked between phases so
// cancellation never leaves external state half-mutated.
func ParseBundleOptions(ctx context.Context, src Source, opts ParseOptions) (*Filing, error) {
	files := classifyBundle(src.Files())

	if files.schema == "" {
		return nil, &MalformedXBRLError{Reason: "bundle has no schema (.xsd)"}
	}
	if files.presentation == "" {
		return nil, &MalformedXBRLError{Reason: "bundle has no presentation linkbase (_pre.xml)"}
	}
	if files.labels == "" {
		return nil, &MalformedXBRLError{Reason: "bundle has no label linkbase (_lab.xml)"}
	}
	if files.instance == "" {
		return nil, &MalformedXBRLError{Reason: "bundle has no instance document"}
	}

	read := func(name string) ([]byte, error) {
		data, err := src.Read(name)
		if err != nil {
			return nil, &MalformedXBRLError{File: name, Reason: "unreadable", Err: err}
		}
		return data, nil
	}

	// Phase: schema.
	data, err := read(files.schema)
	if err != nil {
		return nil, err
	}
	catalog, roles, err := parseSchema(files.schema, data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase: labels. Parsed before the relational linkbases so every concept
	// they reference already has its display labels attached.
	data, err = read(files.labels)
	if err != nil {
		return nil, err
	}
	if err := parseLabels(files.labels, data, catalog); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase: relational linkbases. Calculation and definition are optional
	// and degrade to empty trees.
	parseOptional := func(name string, kind LinkbaseKind) (*ArcTable, error) {
		if name == "" {
			return &ArcTable{Kind: kind}, nil
		}
		data, err := read(name)
		if err != nil {
			return nil, err
		}
		table, err := parseArcs(name, data, kind)
		if err != nil {
			return nil, err
		}
		if err := validateArcConcepts(table, catalog); err != nil {
			return nil, err
		}
		return table, nil
	}

	preArcs, err := parseOptional(files.presentation, LinkbasePresentation)
	if err != nil {
		return nil, err
	}
	calArcs, err := parseOptional(files.calculation, LinkbaseCalculation)
	if err != nil {
		return nil, err
	}
	defArcs, err := parseOptional(files.definition, LinkbaseDefinition)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase: instance.
	data, err = read(files.instance)
	if err != nil {
		return nil, err
	}
	var (
		contexts ContextTable
		units    UnitTable
		facts    []*Fact
	)
	switch DetectFormat(data, opts.Detect) {
	case FormatStandalone:
		contexts, units, facts, err = parseInstance(files.instance, data)
	case FormatInline:
		contexts, units, facts, err = parseInline(files.instance, data)
	default:
		err = &MalformedXBRLError{File: files.instance, Reason: "instance is neither standalone nor inline XBRL"}
	}
	if err != nil {
		return nil, err
	}
	if err := registerFactConcepts(facts, catalog); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase: trees.
	presentation, err := BuildTrees(preArcs)
	if err != nil {
		return nil, err
	}
	calculation, err := BuildTrees(calArcs)
	if err != nil {
		return nil, err
	}
	definition, err := BuildTrees(defArcs)
	if err != nil {
		return nil, err
	}

	filing := &Filing{
		Catalog:      catalog,
		Roles:        roles,
		Contexts:     contexts,
		Units:        units,
		Facts:        NewFactTable(facts),
		Presentation: presentation,
		Calculation:  calculation,
		Definition:   definition,
	}
	filing.Doc = extractDocumentInfo(filing.Facts)
	return filing, nil
}

// registerFactConcepts checks every fact's concept against the catalog.
// Concepts from the dei and srt support taxonomies are declared in schemas
// the bundle does not ship, so they are registered on the fly; anything else
// unresolved is a structural error.
func registerFactConcepts(facts []*Fact, catalog ElementCatalog) error {
	for _, f := range facts {
		if _, ok := catalog[f.Concept]; ok {
			continue
		}
		ns := Namespace(f.Concept)
		if ns == "dei" || ns == "srt" {
			periodType := PeriodDuration
			if f.IsInstant() {
				periodType = PeriodInstant
			}
			catalog[f.Concept] = &Element{
				Name:       f.Concept,
				PeriodType: periodType,
				Labels:     make(map[string]string),
			}
			continue
		}
		return &ConceptResolutionError{Concept: f.Concept, Where: "fact"}
	}
	return nil
}

// bundleFiles holds the classified filenames of one bundle.
type bundleFiles struct {
	schema       string
	presentation string
	calculation  string
	definition   string
	labels       string
	instance     string
}

// classifyBundle routes filenames by the conventional EDGAR suffixes.
func classifyBundle(names []string) bundleFiles {
	var files bundleFiles
	for _, name := range names {
		lower := strings.ToLower(name)
		switch {
		case strings.HasSuffix(lower, ".xsd"):
			files.schema = name
		case strings.HasSuffix(lower, "_pre.xml"):
			files.presentation = name
		case strings.HasSuffix(lower, "_cal.xml"):
			files.calculation = name
		case strings.HasSuffix(lower, "_def.xml"):
			files.definition = name
		case strings.HasSuffix(lower, "_lab.xml"):
			files.labels = name
		case strings.HasSuffix(lower, ".htm"), strings.HasSuffix(lower, ".html"):
			files.instance = name
		case strings.HasSuffix(lower, ".xml"):
			// Remaining .xml is the instance (covers both plain instances
			// and the *_htm.xml extracted-instance naming).
			if files.instance == "" || strings.HasSuffix(lower, "_htm.xml") {
				files.instance = name
			}
		}
	}
	return files
}
