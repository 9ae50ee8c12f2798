package validation

import (
	"bytes"
	"regexp"
)

// pageObject matches page dictionaries but not the /Pages tree node.
var pageObject = regexp.MustCompile(`/Type\s*/Page\b`)

// CountPDFPages counts the page objects of an uncompressed-xref PDF, which
// is what Chrome's printer produces.
func CountPDFPages(pdf []byte) (int, error) {
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		return 0, &Error{Message: "data is not a PDF"}
	}
	count := len(pageObject.FindAll(pdf, -1))
	if count == 0 {
		return 0, &Error{Message: "could not find any page objects"}
	}
	return count, nil
}
