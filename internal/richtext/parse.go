package richtext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// parse builds an editable block model from arbitrary markup. Unknown
// elements contribute their text; nothing is rejected.
func parse(markup string) []Block {
	p := &parser{blocks: []Block{{}}}
	if markup == "" {
		return p.blocks
	}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		p.text(markup, 0)
		return p.blocks
	}
	for _, n := range nodes {
		p.walk(n, 0, false)
	}
	if len(p.blocks) > 1 && isBlank(p.blocks[0]) {
		p.blocks = p.blocks[1:]
	}
	return p.blocks
}

type parser struct {
	blocks []Block
}

func (p *parser) current() *Block { return &p.blocks[len(p.blocks)-1] }

func (p *parser) open(list bool, align Align) {
	if isBlank(*p.current()) {
		b := p.current()
		b.List, b.Align = list, align
		return
	}
	p.blocks = append(p.blocks, Block{List: list, Align: align})
}

func (p *parser) text(s string, style Style) {
	if s == "" {
		return
	}
	b := p.current()
	if n := len(b.Runs); n > 0 && b.Runs[n-1].Style == style {
		b.Runs[n-1].Text += s
		return
	}
	b.Runs = append(b.Runs, Run{Text: s, Style: style})
}

func (p *parser) walk(n *html.Node, style Style, list bool) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" && (n.Parent == nil || n.Parent.DataAtom == atom.Ul || n.Parent.DataAtom == atom.Ol) {
			return
		}
		p.text(n.Data, style)
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.walk(c, style, list)
		}
		return
	}

	switch n.DataAtom {
	case atom.B, atom.Strong:
		style |= StyleBold
	case atom.I, atom.Em:
		style |= StyleItalic
	case atom.U:
		style |= StyleUnderline
	case atom.Ul, atom.Ol:
		list = true
	case atom.Br:
		if !placeholder(n) {
			p.blocks = append(p.blocks, Block{List: p.current().List, Align: p.current().Align})
		}
		return
	case atom.Li:
		p.open(true, alignOf(n))
	case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Blockquote:
		p.open(list, alignOf(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, style, list)
	}
}

// placeholder reports whether n is the lone <br> that keeps an empty block
// open, as in <p><br></p>.
func placeholder(n *html.Node) bool {
	parent := n.Parent
	if parent == nil || parent.FirstChild != n || parent.LastChild != n {
		return false
	}
	switch parent.DataAtom {
	case atom.Li, atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Blockquote:
		return true
	}
	return false
}

func alignOf(n *html.Node) Align {
	for _, a := range n.Attr {
		switch a.Key {
		case "align":
			return toAlign(a.Val)
		case "style":
			for _, decl := range strings.Split(a.Val, ";") {
				k, v, ok := strings.Cut(decl, ":")
				if ok && strings.TrimSpace(strings.ToLower(k)) == "text-align" {
					return toAlign(v)
				}
			}
		}
	}
	return AlignLeft
}

func toAlign(v string) Align {
	switch strings.TrimSpace(strings.ToLower(v)) {
	case "center":
		return AlignCenter
	case "right":
		return AlignRight
	}
	return AlignLeft
}

func isBlank(b Block) bool { return len(b.Runs) == 0 }

// PlainText strips markup, separating blocks with newlines.
func PlainText(markup string) string {
	if markup == "" {
		return ""
	}
	blocks := parse(markup)
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		lines = append(lines, b.Text())
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
