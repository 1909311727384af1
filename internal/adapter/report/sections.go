// Package report decodes OROBNAT HTML result pages into parsed sections.
//
// The pages are untrusted, loosely structured input: headings, labels, and
// table shapes vary between régions. Every decoder here degrades to an empty
// result when its section is missing or malformed; callers decide what an
// empty section means.
package report

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/hydromet/orobnat-etl/internal/domain"
)

// Section headings, matched case-insensitively as substrings of h3 text.
const (
	headingGeneralInfo = "informations générales"
	headingConformity  = "conformité"
	headingResults     = "résultats d'analyses"

	// servedCommunesLabel marks the optional list of communes the network
	// serves.
	servedCommunesLabel = "commune(s) et/ou quartier(s) du réseau"
)

// Canonical result-table column tokens.
const (
	colParameter = "parametre"
	colValue     = "valeur"
	colLimit     = "limite_qualite"
	colReference = "reference_qualite"
)

var bulletRe = regexp.MustCompile(`^\s*-\s*`)

// Parse decodes one result page. A missing section yields an empty slice; the
// only error is HTML that cannot be tokenized at all.
func Parse(r io.Reader, payload domain.SearchPayload) (domain.ParsedSections, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return domain.ParsedSections{}, fmt.Errorf("parse report html: %w", err)
	}

	sections := domain.ParsedSections{
		GeneralInfo:      keyValueSection(doc, headingGeneralInfo),
		Conformity:       keyValueSection(doc, headingConformity),
		Results:          resultRows(doc),
		ServedCommunes:   servedCommunes(doc),
		DepartementLabel: SelectedOptionLabel(doc, "departement", payload.Departement),
		CommuneLabel:     SelectedOptionLabel(doc, "communeDepartement", payload.Commune),
	}

	// Some pages render the commune only inside the general-information
	// table, not in the search form.
	if sections.CommuneLabel == "" {
		if v, ok := sections.GeneralInfo.Lookup("commune"); ok {
			sections.CommuneLabel = v
		}
	}
	return sections, nil
}

// keyValueSection decodes the table following a heading into ordered
// (label, value) pairs. Rows missing the header or data cell are skipped.
func keyValueSection(doc *goquery.Document, heading string) domain.Fields {
	table := tableAfterHeading(doc, heading)
	if table == nil {
		return nil
	}
	var fields domain.Fields
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		th := tr.Find("th").First()
		td := tr.Find("td").First()
		if th.Length() == 0 || td.Length() == 0 {
			return
		}
		label := domain.CleanText(joinedText(th))
		if label == "" {
			return
		}
		fields = append(fields, domain.Field{Label: label, Value: domain.CleanText(joinedText(td))})
	})
	return fields
}

// resultRows decodes the analysis table. Column identity comes from the
// header row when one exists and its cell count matches; otherwise the
// historical four-column layout (parameter, value, limit, reference) is
// assumed.
func resultRows(doc *goquery.Document) []domain.AnalysisRow {
	table := tableAfterHeading(doc, headingResults)
	if table == nil {
		return nil
	}

	trs := table.Find("tr")
	var headers []string
	trs.First().Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, normalizeHeader(joinedText(th)))
	})

	var rows []domain.AnalysisRow
	trs.Each(func(i int, tr *goquery.Selection) {
		if len(headers) > 0 && i == 0 {
			return
		}
		tds := tr.Find("td")
		if tds.Length() == 0 {
			return
		}
		cells := make([]string, 0, tds.Length())
		tds.Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, domain.CleanText(joinedText(td)))
		})
		if allEmpty(cells) {
			return
		}
		rows = append(rows, rowFromCells(headers, cells))
	})
	return rows
}

// normalizeHeader maps a column heading onto its canonical token,
// accent- and case-insensitively. Unrecognized headings pass through
// normalized, which leaves their cells unused.
func normalizeHeader(h string) string {
	n := domain.NormalizeLabel(h)
	switch {
	case strings.Contains(n, "parametre"), strings.Contains(n, "libelle"), strings.Contains(n, "substance"):
		return colParameter
	case strings.Contains(n, "limite"):
		return colLimit
	case strings.Contains(n, "reference"):
		return colReference
	case strings.Contains(n, "valeur"), strings.Contains(n, "resul"):
		return colValue
	default:
		return n
	}
}

func rowFromCells(headers, cells []string) domain.AnalysisRow {
	if len(headers) > 0 && len(headers) == len(cells) {
		var row domain.AnalysisRow
		for i, h := range headers {
			switch h {
			case colParameter:
				row.Parameter = cells[i]
			case colValue:
				row.Value = cells[i]
			case colLimit:
				row.QualityLimit = cells[i]
			case colReference:
				row.QualityReference = cells[i]
			}
		}
		return row
	}

	// No header, or header and cell counts disagree: positional fallback.
	cell := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	return domain.AnalysisRow{
		Parameter:        cell(0),
		Value:            cell(1),
		QualityLimit:     cell(2),
		QualityReference: cell(3),
	}
}

// servedCommunes extracts the optional commune list: the span following the
// network-communes label, one entry per line, leading bullet dashes stripped.
func servedCommunes(doc *goquery.Document) []string {
	var out []string
	doc.Find("label").EachWithBreak(func(_ int, label *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(label.Text()), servedCommunesLabel) {
			return true
		}
		span := nextElement(label.Nodes[0], "span")
		if span == nil {
			return false
		}
		for _, line := range textLines(span) {
			line = domain.CleanText(bulletRe.ReplaceAllString(line, ""))
			if line != "" {
				out = append(out, line)
			}
		}
		return false
	})
	return out
}

// SelectedOptionLabel resolves the display text of a select element's active
// option: the option whose value matches, else the marked-selected option,
// else the first option. Returns "" when the select is absent.
func SelectedOptionLabel(doc *goquery.Document, name, value string) string {
	sel := doc.Find(fmt.Sprintf("select[name=%q]", name)).First()
	if sel.Length() == 0 {
		return ""
	}
	opt := sel.Find(fmt.Sprintf("option[value=%q]", value))
	if value == "" || opt.Length() == 0 {
		opt = sel.Find("option[selected]")
	}
	if opt.Length() == 0 {
		opt = sel.Find("option")
	}
	return domain.CleanText(opt.First().Text())
}

// tableAfterHeading finds the first h3 containing the heading text and
// returns the next table in document order, crossing container boundaries
// the way the pages nest their sections.
func tableAfterHeading(doc *goquery.Document, heading string) *goquery.Selection {
	var table *goquery.Selection
	doc.Find("h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(h.Text()), heading) {
			return true
		}
		if node := nextElement(h.Nodes[0], "table"); node != nil {
			table = doc.FindNodes(node)
		}
		return false
	})
	return table
}

// nextElement walks the DOM in document order starting after n and returns
// the first element with the given tag, or nil.
func nextElement(n *html.Node, tag string) *html.Node {
	for cur := nextNode(n); cur != nil; cur = nextNode(cur) {
		if cur.Type == html.ElementNode && cur.Data == tag {
			return cur
		}
	}
	return nil
}

// nextNode is a depth-first document-order successor.
func nextNode(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// joinedText concatenates a selection's text nodes with single spaces, so
// markup between words ("<abbr>Date</abbr>du prélèvement") does not glue
// them together the way plain Text() would.
func joinedText(s *goquery.Selection) string {
	var parts []string
	for _, n := range s.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

// textLines returns the trimmed non-empty text nodes under n in order, one
// entry per node; <br>-separated lists arrive as separate nodes.
func textLines(n *html.Node) []string {
	var parts []string
	collectText(n, &parts)
	return parts
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// allEmpty reports whether every decoded cell is blank (spacer rows).
func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
