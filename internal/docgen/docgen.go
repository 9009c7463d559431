// Package docgen converts Markdown essays into Word documents.
// The Markdown is rendered to HTML with goldmark, the element tree is
// walked in document order, and recognized blocks are emitted into a
// unioffice document.
package docgen

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/unidoc/unioffice/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// BlockKind classifies a converted block.
type BlockKind int

const (
	Heading BlockKind = iota
	Paragraph
	ListItem
	Table
)

// Block is one unit of converted content. Heading uses Level (1..3) and
// Text; Paragraph and ListItem use Text; Table uses Rows, a rectangular
// grid sized by its first row.
type Block struct {
	Kind  BlockKind
	Level int
	Text  string
	Rows  [][]string
}

// RenderHTML renders Markdown to an HTML fragment for the web page.
func RenderHTML(mdText string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(mdText), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// Parse renders Markdown to HTML and collapses the element tree into a
// flat block sequence.
func Parse(mdText string) ([]Block, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(mdText), &buf); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	root, err := html.Parse(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered html: %w", err)
	}

	var blocks []Block
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.H1, atom.H2, atom.H3:
				level := int(n.Data[1] - '0')
				if text := inlineText(n); text != "" {
					blocks = append(blocks, Block{Kind: Heading, Level: level, Text: text})
				}
				return
			case atom.P:
				if text := inlineText(n); text != "" {
					blocks = append(blocks, Block{Kind: Paragraph, Text: text})
				}
				return
			case atom.Li:
				if text := inlineText(n); text != "" {
					blocks = append(blocks, Block{Kind: ListItem, Text: text})
				}
				// Nested lists produce their own items.
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
						walk(c)
					}
				}
				return
			case atom.Table:
				if rows := tableRows(n); len(rows) > 0 {
					blocks = append(blocks, Block{Kind: Table, Rows: rows})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return blocks, nil
}

// inlineText collects the text content of a node, excluding nested lists
// so a parent <li> does not swallow its children's items.
func inlineText(n *html.Node) string {
	var sb strings.Builder
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && (n.DataAtom == atom.Ul || n.DataAtom == atom.Ol) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c)
	}
	return strings.TrimSpace(sb.String())
}

// tableRows flattens a <table> into a rectangular grid. Column count is
// fixed by the first row; short rows are padded with empty cells and long
// rows are truncated.
func tableRows(table *html.Node) [][]string {
	var trs []*html.Node
	var findRows func(n *html.Node)
	findRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			trs = append(trs, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findRows(c)
		}
	}
	findRows(table)
	if len(trs) == 0 {
		return nil
	}

	cellsOf := func(tr *html.Node) []string {
		var cells []string
		var findCells func(n *html.Node)
		findCells = func(n *html.Node) {
			if n.Type == html.ElementNode && (n.DataAtom == atom.Td || n.DataAtom == atom.Th) {
				cells = append(cells, inlineText(n))
				return
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				findCells(c)
			}
		}
		findCells(tr)
		return cells
	}

	width := len(cellsOf(trs[0]))
	if width == 0 {
		return nil
	}

	rows := make([][]string, 0, len(trs))
	for _, tr := range trs {
		cells := cellsOf(tr)
		row := make([]string, width)
		for i := 0; i < width && i < len(cells); i++ {
			row[i] = cells[i]
		}
		rows = append(rows, row)
	}
	return rows
}

// Build emits a block sequence into a new Word document. Headings map to
// the Heading1..Heading3 styles, list items get a bullet prefix, and
// tables become positional grids.
func Build(blocks []Block) *document.Document {
	doc := document.New()

	for _, b := range blocks {
		switch b.Kind {
		case Heading:
			para := doc.AddParagraph()
			para.SetStyle(fmt.Sprintf("Heading%d", b.Level))
			para.AddRun().AddText(b.Text)
		case Paragraph:
			doc.AddParagraph().AddRun().AddText(b.Text)
		case ListItem:
			doc.AddParagraph().AddRun().AddText("• " + b.Text)
		case Table:
			tbl := doc.AddTable()
			for _, cells := range b.Rows {
				row := tbl.AddRow()
				for _, cell := range cells {
					row.AddCell().AddParagraph().AddRun().AddText(cell)
				}
			}
		}
	}
	return doc
}

// Convert parses Markdown and builds the corresponding Word document.
func Convert(mdText string) (*document.Document, error) {
	blocks, err := Parse(mdText)
	if err != nil {
		return nil, err
	}
	return Build(blocks), nil
}

// Write converts Markdown and serializes the .docx bytes to w.
func Write(mdText string, w io.Writer) error {
	doc, err := Convert(mdText)
	if err != nil {
		return err
	}
	if err := doc.Save(w); err != nil {
		return fmt.Errorf("failed to save docx: %w", err)
	}
	return nil
}
