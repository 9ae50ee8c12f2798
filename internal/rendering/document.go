package rendering

import (
	"bytes"
	"html/template"
	"strings"
)

const documentTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
{{.CSS}}
  </style>
</head>
{{.Body}}
</html>
`

var document = template.Must(template.New("document").Parse(documentTemplate))

// Document is the input of RenderDocument.
type Document struct {
	// Body is the generated <body> element. It is inserted verbatim.
	Body string
	// CSS is the chosen style sheet, inlined into <head>.
	CSS   string
	Title string
	Lang  string
}

// RenderDocument wraps a generated body in a complete HTML page with the style inlined.
func RenderDocument(doc Document) (string, error) {
	if strings.TrimSpace(doc.Body) == "" {
		return "", &RenderError{Message: "document body is empty"}
	}
	if doc.Title == "" {
		doc.Title = "Resume"
	}
	if doc.Lang == "" {
		doc.Lang = "en"
	}

	data := struct {
		Title string
		Lang  string
		CSS   template.CSS
		Body  template.HTML
	}{
		Title: doc.Title,
		Lang:  doc.Lang,
		CSS:   template.CSS(doc.CSS),
		Body:  template.HTML(doc.Body),
	}

	var buf bytes.Buffer
	if err := document.Execute(&buf, data); err != nil {
		return "", &TemplateError{Message: "failed to execute document template", Cause: err}
	}
	return buf.String(), nil
}
