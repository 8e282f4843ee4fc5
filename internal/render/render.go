// Package render produces the HTML view of a paste: a metadata header
// plus the content run through chroma syntax highlighting.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/quickpaste/quickpaste/models"
)

const styleName = "monokai"

var pageTemplate = template.Must(template.New("view").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Title}} - Quick Paste</title>
    <style>
        body { font-family: monospace; margin: 20px; background: #1e1e1e; color: #d4d4d4; }
        .header { margin-bottom: 20px; }
        .header a { color: #569cd6; }
        .meta { color: #808080; font-size: 0.9em; }
        pre { background: #2d2d2d; padding: 15px; overflow-x: auto; }
        {{.CSS}}
    </style>
</head>
<body>
    <div class="header">
        <h2>{{.Title}}</h2>
        <div class="meta">
            Language: {{.Language}} |
            Created: {{.Created}} |
            <a href="/{{.ID}}/raw">Raw</a>
        </div>
    </div>
    {{.Code}}
</body>
</html>
`))

type pageData struct {
	ID       string
	Title    string
	Language string
	Created  string
	CSS      template.CSS
	Code     template.HTML
}

// Page renders the full HTML view for a paste. The language hint picks
// the lexer; without one the content is analysed, falling back to plain
// text.
func Page(paste *models.Paste, content []byte) ([]byte, error) {
	code, css, err := highlight(string(content), paste.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to highlight content: %w", err)
	}

	title := paste.Title
	if title == "" {
		title = paste.ID
	}
	language := paste.Language
	if language == "" {
		language = "auto"
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, pageData{
		ID:       paste.ID,
		Title:    title,
		Language: language,
		Created:  paste.CreatedAt.Format("2006-01-02 15:04:05"),
		CSS:      template.CSS(css),
		Code:     template.HTML(code),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return buf.Bytes(), nil
}

// highlight returns the highlighted HTML fragment and the stylesheet for
// the chosen chroma style.
func highlight(content, language string) (string, string, error) {
	var lexer chroma.Lexer
	if language != "" {
		lexer = lexers.Get(language)
	}
	if lexer == nil {
		lexer = lexers.Analyse(content)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	formatter := chromahtml.New(
		chromahtml.WithLineNumbers(true),
		chromahtml.WithClasses(true),
	)

	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return "", "", err
	}

	var code bytes.Buffer
	if err := formatter.Format(&code, style, iterator); err != nil {
		return "", "", err
	}

	var css bytes.Buffer
	if err := formatter.WriteCSS(&css, style); err != nil {
		return "", "", err
	}
	return code.String(), css.String(), nil
}
