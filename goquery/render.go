package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docscout"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skippedTags are never rendered.
var skippedTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Nav:      true,
	atom.Header:   true,
	atom.Footer:   true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
	atom.Button:   true,
}

// blockTags end the current paragraph before and after their content.
var blockTags = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Details: true, atom.Div: true, atom.Dl: true,
	atom.Dt: true, atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true,
	atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Hr: true, atom.Li: true, atom.Main: true,
	atom.P: true, atom.Section: true, atom.Summary: true,
}

// section is the text between two headings.
type section struct {
	title  string
	blocks []string
}

// renderer flattens a DOM subtree into text sections. Headings start new
// sections; content before the first heading lands in a section with an
// empty title.
type renderer struct {
	headings map[*html.Node]bool
	sections []*section
	inline   strings.Builder
}

func newRenderer(headings map[*html.Node]bool) *renderer {
	return &renderer{
		headings: headings,
		sections: []*section{{}},
	}
}

// render walks n depth first and returns the sections found.
func (r *renderer) render(n *html.Node) []*section {
	r.walk(n)
	r.flush()
	return r.sections
}

func (r *renderer) current() *section {
	return r.sections[len(r.sections)-1]
}

// flush ends the current paragraph.
func (r *renderer) flush() {
	text := strings.TrimSpace(r.inline.String())
	r.inline.Reset()
	if text != "" {
		r.block(text)
	}
}

func (r *renderer) block(text string) {
	s := r.current()
	s.blocks = append(s.blocks, text)
}

func (r *renderer) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		r.text(n.Data)
		return
	case html.ElementNode:
	case html.DocumentNode:
		r.children(n)
		return
	default:
		return
	}

	if r.headings[n] {
		r.flush()
		r.sections = append(r.sections, &section{title: nodeText(n)})
		return
	}
	if skippedTags[n.DataAtom] {
		return
	}

	switch n.DataAtom {
	case atom.Pre:
		r.flush()
		r.block(fencedCode(n))
	case atom.Ul, atom.Ol:
		r.flush()
		if items := listItems(n); items != "" {
			r.block(items)
		}
	case atom.Table:
		r.flush()
		if rows := tableRows(n); rows != "" {
			r.block(rows)
		}
	default:
		block := blockTags[n.DataAtom]
		if block {
			r.flush()
		}
		r.children(n)
		if block {
			r.flush()
		}
	}
}

func (r *renderer) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c)
	}
}

// text appends a text node to the current paragraph, keeping a single space
// between words of adjacent inline nodes.
func (r *renderer) text(data string) {
	if strings.TrimSpace(data) == "" {
		if r.inline.Len() > 0 {
			r.inline.WriteByte(' ')
		}
		return
	}
	if r.inline.Len() > 0 && startsWithSpace(data) {
		r.inline.WriteByte(' ')
	}
	r.inline.WriteString(strings.Join(strings.Fields(data), " "))
	if endsWithSpace(data) {
		r.inline.WriteByte(' ')
	}
}

func startsWithSpace(s string) bool {
	return s != "" && strings.TrimLeft(s[:1], " \t\r\n\f") == ""
}

func endsWithSpace(s string) bool {
	return s != "" && strings.TrimRight(s[len(s)-1:], " \t\r\n\f") == ""
}

// fencedCode renders a pre element as a fenced code block, taking the
// language from a language-* or lang-* class when present.
func fencedCode(n *html.Node) string {
	sel := goquery.NewDocumentFromNode(n).Selection
	lang := codeLanguage(sel.AttrOr("class", ""))
	if lang == "" {
		lang = codeLanguage(sel.Find("code").AttrOr("class", ""))
	}
	code := strings.Trim(sel.Text(), "\n")
	return "```" + lang + "\n" + code + "\n```"
}

func codeLanguage(class string) string {
	for _, c := range strings.Fields(class) {
		for _, prefix := range []string{"language-", "lang-"} {
			if strings.HasPrefix(c, prefix) {
				return strings.TrimPrefix(c, prefix)
			}
		}
	}
	return ""
}

// listItems renders the direct items of a list as "- item" lines.
func listItems(n *html.Node) string {
	var lines []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		if text := nodeText(c); text != "" {
			lines = append(lines, "- "+text)
		}
	}
	return strings.Join(lines, "\n")
}

// tableRows renders each row of a table as its cells joined by " | ".
func tableRows(n *html.Node) string {
	var lines []string
	goquery.NewDocumentFromNode(n).Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Children().Filter("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, collapse(cell.Text()))
		})
		if strings.TrimSpace(strings.Join(cells, "")) != "" {
			lines = append(lines, strings.Join(cells, " | "))
		}
	})
	return strings.Join(lines, "\n")
}

// nodeText returns the whitespace-collapsed text of n, ignoring skipped tags.
// Block children are separated by a space.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if skippedTags[n.DataAtom] {
				return
			}
		}
		block := blockTags[n.DataAtom]
		if block {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte(' ')
		}
	}
	walk(n)
	return docscout.StripZeroWidth(collapse(b.String()))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// renderText renders sel as plain text, one block per paragraph.
func renderText(sel *goquery.Selection) string {
	var blocks []string
	for _, n := range sel.Nodes {
		for _, s := range newRenderer(nil).render(n) {
			blocks = append(blocks, s.blocks...)
		}
	}
	return docscout.CleanMarkdownWhitespace(strings.Join(blocks, "\n\n"))
}
