package validation

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Block is the visible text of one part of the generated document.
type Block struct {
	// ID is "header" or the id of a <section>.
	ID   string
	Text string
}

// ExpectedBlocks lists the parts every generated resume should contain, in order.
var ExpectedBlocks = []string{
	"header",
	"education",
	"work-experience",
	"side-projects",
	"achievements",
	"certifications",
	"skills-languages",
}

// Blocks returns the header and sections of an HTML resume in document order.
// Block text keeps one line per list item, paragraph or heading.
func Blocks(html string) ([]Block, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{Message: "failed to parse HTML", Cause: err}
	}
	doc.Find("script, style").Remove()

	var blocks []Block
	doc.Find("body header, body section[id]").Each(func(_ int, s *goquery.Selection) {
		id := "header"
		if goquery.NodeName(s) == "section" {
			id, _ = s.Attr("id")
		}
		blocks = append(blocks, Block{ID: id, Text: blockText(s)})
	})
	return blocks, nil
}

func blockText(s *goquery.Selection) string {
	s = s.Clone()
	s.Find("li, p, br, h1, h2, h3, h4, h5, h6, div").Each(func(_ int, el *goquery.Selection) {
		el.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(s.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// CheckSections reports expected parts that are missing or have no text.
func CheckSections(blocks []Block) []Violation {
	seen := make(map[string]Block, len(blocks))
	for _, b := range blocks {
		if _, ok := seen[b.ID]; !ok {
			seen[b.ID] = b
		}
	}

	var violations []Violation
	for _, id := range ExpectedBlocks {
		b, ok := seen[id]
		switch {
		case !ok:
			violations = append(violations, Violation{
				Type:     TypeMissingSection,
				Severity: SeverityWarning,
				Details:  fmt.Sprintf("document has no %s", id),
				Section:  id,
			})
		case b.Text == "":
			violations = append(violations, Violation{
				Type:     TypeEmptySection,
				Severity: SeverityWarning,
				Details:  fmt.Sprintf("%s has no visible text", id),
				Section:  id,
			})
		}
	}
	return violations
}
