// Package richtext models the description editor: a small block document
// that formatting commands mutate and that serializes to HTML markup.
package richtext

import (
	"errors"
	"fmt"
	"html"
	"strings"
)

// Command is a formatting command name, matching the browser execCommand names.
type Command string

const (
	Bold                Command = "bold"
	Italic              Command = "italic"
	Underline           Command = "underline"
	InsertUnorderedList Command = "insertUnorderedList"
	JustifyLeft         Command = "justifyLeft"
	JustifyCenter       Command = "justifyCenter"
	JustifyRight        Command = "justifyRight"
)

// Commands lists every supported command in toolbar order.
var Commands = []Command{Bold, Italic, Underline, InsertUnorderedList, JustifyLeft, JustifyCenter, JustifyRight}

// ErrUnknownCommand is returned by Apply for a command outside Commands.
var ErrUnknownCommand = errors.New("richtext: unknown command")

// Editor is the editing surface the form drives.
type Editor interface {
	Apply(cmd Command) error
	Insert(text string)
	Break()
	Backspace()
	SetMarkup(markup string)
	Markup() string
	Reset()
}

// Style is a set of inline formats.
type Style uint8

const (
	StyleBold Style = 1 << iota
	StyleItalic
	StyleUnderline
)

// Has reports whether every bit of f is set.
func (s Style) Has(f Style) bool { return s&f == f }

// Align is a block alignment. The zero value is left.
type Align string

const (
	AlignLeft   Align = ""
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Run is a span of text sharing one style.
type Run struct {
	Text  string
	Style Style
}

// Block is a paragraph or a list item.
type Block struct {
	List  bool
	Align Align
	Runs  []Run
}

// Text returns the block's text without formatting.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Document is the default Editor. The cursor is always at the end of the
// last block.
type Document struct {
	blocks []Block
	style  Style

	// raw is returned by Markup until the document is edited.
	raw   string
	dirty bool
}

var _ Editor = (*Document)(nil)

// New returns an empty document.
func New() *Document {
	d := &Document{}
	d.Reset()
	return d
}

// Reset clears the document and the pending style.
func (d *Document) Reset() {
	d.blocks = []Block{{}}
	d.style = 0
	d.raw = ""
	d.dirty = false
}

// Style returns the style applied to the next Insert.
func (d *Document) Style() Style { return d.style }

// Blocks returns a copy of the document blocks.
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = Block{List: b.List, Align: b.Align, Runs: append([]Run(nil), b.Runs...)}
	}
	return out
}

func (d *Document) current() *Block { return &d.blocks[len(d.blocks)-1] }

// Apply runs a formatting command.
func (d *Document) Apply(cmd Command) error {
	switch cmd {
	case Bold:
		d.style ^= StyleBold
		return nil
	case Italic:
		d.style ^= StyleItalic
		return nil
	case Underline:
		d.style ^= StyleUnderline
		return nil
	case InsertUnorderedList:
		b := d.current()
		b.List = !b.List
	case JustifyLeft:
		d.current().Align = AlignLeft
	case JustifyCenter:
		d.current().Align = AlignCenter
	case JustifyRight:
		d.current().Align = AlignRight
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, string(cmd))
	}
	d.touch()
	return nil
}

// Insert appends text to the current block using the pending style.
func (d *Document) Insert(text string) {
	if text == "" {
		return
	}
	b := d.current()
	if n := len(b.Runs); n > 0 && b.Runs[n-1].Style == d.style {
		b.Runs[n-1].Text += text
	} else {
		b.Runs = append(b.Runs, Run{Text: text, Style: d.style})
	}
	d.touch()
}

// Break starts a new block carrying over the list flag and alignment.
func (d *Document) Break() {
	b := d.current()
	d.blocks = append(d.blocks, Block{List: b.List, Align: b.Align})
	d.touch()
}

// Backspace removes the last character, or joins an empty block into the
// previous one.
func (d *Document) Backspace() {
	b := d.current()
	if n := len(b.Runs); n > 0 {
		last := []rune(b.Runs[n-1].Text)
		last = last[:len(last)-1]
		if len(last) == 0 {
			b.Runs = b.Runs[:n-1]
		} else {
			b.Runs[n-1].Text = string(last)
		}
		d.touch()
		return
	}
	if len(d.blocks) > 1 {
		d.blocks = d.blocks[:len(d.blocks)-1]
		d.touch()
	}
}

// SetMarkup loads an existing description. Markup returns it unchanged
// until the next edit.
func (d *Document) SetMarkup(markup string) {
	d.blocks = parse(markup)
	d.style = 0
	d.raw = markup
	d.dirty = false
}

// Markup serializes the document. An untouched loaded document yields the
// loaded markup; a document with no text yields "".
func (d *Document) Markup() string {
	if !d.dirty {
		return d.raw
	}
	return render(d.blocks)
}

func (d *Document) touch() { d.dirty = true }

func render(blocks []Block) string {
	hasText := false
	for _, b := range blocks {
		if b.Text() != "" {
			hasText = true
			break
		}
	}
	if !hasText {
		return ""
	}

	var sb strings.Builder
	inList := false
	for _, b := range blocks {
		if b.List && !inList {
			sb.WriteString("<ul>")
		}
		if !b.List && inList {
			sb.WriteString("</ul>")
		}
		inList = b.List

		tag := "p"
		if b.List {
			tag = "li"
		}
		sb.WriteString("<" + tag)
		if b.Align != AlignLeft {
			sb.WriteString(` style="text-align: ` + string(b.Align) + `;"`)
		}
		sb.WriteString(">")
		if len(b.Runs) == 0 {
			sb.WriteString("<br>")
		}
		for _, r := range b.Runs {
			writeRun(&sb, r)
		}
		sb.WriteString("</" + tag + ">")
	}
	if inList {
		sb.WriteString("</ul>")
	}
	return sb.String()
}

func writeRun(sb *strings.Builder, r Run) {
	var open, close string
	if r.Style.Has(StyleBold) {
		open, close = open+"<b>", "</b>"+close
	}
	if r.Style.Has(StyleItalic) {
		open, close = open+"<i>", "</i>"+close
	}
	if r.Style.Has(StyleUnderline) {
		open, close = open+"<u>", "</u>"+close
	}
	sb.WriteString(open)
	sb.WriteString(html.EscapeString(r.Text))
	sb.WriteString(close)
}
