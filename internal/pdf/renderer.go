package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// CardData is the value set available to uploaded HTML templates:
// {{.ProjectName}}, {{.ProjectDescription}}, {{.Images}} (local file paths)
// and {{.CurrentDate}}.
type CardData struct {
	ProjectName        string
	ProjectDescription string
	Images             []string
	CurrentDate        string
}

// Renderer turns an uploaded HTML/CSS template plus project data into a PDF.
type Renderer struct{}

// NewRenderer creates a PDF renderer. Requires the wkhtmltopdf binary on the
// host.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the project-card PDF as a byte buffer.
func (r *Renderer) Render(name, description string, imagePaths []string, htmlBody string, cssBody *string) ([]byte, error) {
	rendered, err := RenderHTML(htmlBody, cssBody, CardData{
		ProjectName:        name,
		ProjectDescription: description,
		Images:             imagePaths,
		CurrentDate:        time.Now().Format("January 2, 2006"),
	})
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("init pdf generator: %w", err)
	}

	page := wkhtmltopdf.NewPageReader(strings.NewReader(rendered))
	// Image paths are local temp files
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdfg.Bytes(), nil
}

// RenderHTML executes the uploaded template against the card data and injects
// the optional CSS as a <style> block.
func RenderHTML(htmlBody string, cssBody *string, data CardData) (string, error) {
	tmpl, err := template.New("card").Parse(htmlBody)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	rendered := buf.String()
	if cssBody != nil && *cssBody != "" {
		rendered = injectCSS(rendered, *cssBody)
	}
	return rendered, nil
}

// injectCSS places the stylesheet before </head> when the document has one,
// otherwise prepends it.
func injectCSS(html, css string) string {
	style := "<style>\n" + css + "\n</style>"
	if idx := strings.Index(strings.ToLower(html), "</head>"); idx >= 0 {
		return html[:idx] + style + html[idx:]
	}
	return style + "\n" + html
}
