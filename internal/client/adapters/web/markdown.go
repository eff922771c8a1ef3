package web

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Сырой HTML в заметках экранируется: WithUnsafe не включен.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithExtensions(&externalLinks{}),
)

type externalLinks struct{}

func (e *externalLinks) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&externalLinksTransformer{}, 100),
	))
}

// externalLinksTransformer открывает внешние ссылки в новой вкладке.
type externalLinksTransformer struct{}

func (t *externalLinksTransformer) Transform(node *ast.Document, reader text.Reader, _ parser.Context) {
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch link := n.(type) {
		case *ast.Link:
			if isExternal(link.Destination) {
				markExternal(link)
			}
		case *ast.AutoLink:
			if link.AutoLinkType == ast.AutoLinkURL && isExternal(link.URL(reader.Source())) {
				markExternal(link)
			}
		}
		return ast.WalkContinue, nil
	})
}

func markExternal(n ast.Node) {
	n.SetAttributeString("target", []byte("_blank"))
	n.SetAttributeString("rel", []byte("noopener noreferrer"))
}

func isExternal(dest []byte) bool {
	s := strings.ToLower(strings.TrimSpace(string(dest)))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// renderMarkdown возвращает HTML предпросмотра; при ошибке - экранированный текст.
func renderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(source) + "</pre>") // #nosec G203 - escaped above
	}
	return template.HTML(buf.String()) // #nosec G203 - goldmark escapes raw HTML
}
