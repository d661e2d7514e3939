package preview

import (
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// extractMarkdown walks the goldmark AST and collects heading and paragraph
// text. Parsing instead of regex-stripping keeps link targets, fences, and
// table syntax out of the preview.
func extractMarkdown(path string, limit int) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read markdown: %w", err)
	}

	parser := goldmark.DefaultParser()
	doc := parser.Parse(text.NewReader(source))

	var sb strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if sb.Len() >= limit {
			return ast.WalkStop, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(source))
			sb.WriteString(" ")
		case *ast.Heading, *ast.Paragraph:
			sb.WriteString("\n")
		case *ast.FencedCodeBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("walk markdown: %w", err)
	}

	return truncate(collapseSpace(sb.String()), limit), nil
}
