package richtext

import (
	"errors"
	"testing"
)

func TestDocument_InlineCommandsToggleStyle(t *testing.T) {
	d := New()
	d.Insert("plain ")
	mustApply(t, d, Bold)
	d.Insert("bold ")
	mustApply(t, d, Italic)
	d.Insert("both")
	mustApply(t, d, Bold)
	mustApply(t, d, Italic)
	mustApply(t, d, Underline)
	d.Insert(" u")

	want := "<p>plain <b>bold </b><b><i>both</i></b><u> u</u></p>"
	if got := d.Markup(); got != want {
		t.Errorf("Markup() = %q, want %q", got, want)
	}
}

func TestDocument_BlockCommands(t *testing.T) {
	tests := []struct {
		name  string
		build func(d *Document)
		want  string
	}{
		{
			name: "center",
			build: func(d *Document) {
				d.Insert("title")
				mustApply(t, d, JustifyCenter)
			},
			want: `<p style="text-align: center;">title</p>`,
		},
		{
			name: "right then left",
			build: func(d *Document) {
				mustApply(t, d, JustifyRight)
				d.Insert("x")
				mustApply(t, d, JustifyLeft)
			},
			want: "<p>x</p>",
		},
		{
			name: "list items carry over on break",
			build: func(d *Document) {
				d.Insert("intro")
				d.Break()
				mustApply(t, d, InsertUnorderedList)
				d.Insert("milk")
				d.Break()
				d.Insert("bread")
			},
			want: "<p>intro</p><ul><li>milk</li><li>bread</li></ul>",
		},
		{
			name: "list toggled off",
			build: func(d *Document) {
				mustApply(t, d, InsertUnorderedList)
				d.Insert("a")
				d.Break()
				mustApply(t, d, InsertUnorderedList)
				d.Insert("b")
			},
			want: "<ul><li>a</li></ul><p>b</p>",
		},
		{
			name: "empty block between paragraphs",
			build: func(d *Document) {
				d.Insert("a")
				d.Break()
				d.Break()
				d.Insert("b")
			},
			want: "<p>a</p><p><br></p><p>b</p>",
		},
		{
			name: "text is escaped",
			build: func(d *Document) {
				d.Insert(`1 < 2 & "x"`)
			},
			want: "<p>1 &lt; 2 &amp; &#34;x&#34;</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			tt.build(d)
			if got := d.Markup(); got != tt.want {
				t.Errorf("Markup() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDocument_UnknownCommand(t *testing.T) {
	d := New()
	d.Insert("x")
	before := d.Markup()

	err := d.Apply(Command("strikeThrough"))
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("Apply() error = %v, want ErrUnknownCommand", err)
	}
	if d.Markup() != before {
		t.Error("unknown command changed the document")
	}
}

func TestDocument_EmptyDocumentHasNoMarkup(t *testing.T) {
	d := New()
	if d.Markup() != "" {
		t.Fatalf("new document markup = %q", d.Markup())
	}

	mustApply(t, d, Bold)
	mustApply(t, d, JustifyCenter)
	d.Break()
	if got := d.Markup(); got != "" {
		t.Errorf("formatting without text = %q, want empty", got)
	}
}

func TestDocument_Backspace(t *testing.T) {
	d := New()
	d.Insert("ab")
	mustApply(t, d, Bold)
	d.Insert("é")
	d.Backspace()
	if got := d.Markup(); got != "<p>ab</p>" {
		t.Fatalf("after backspace = %q", got)
	}

	d.Break()
	d.Backspace()
	d.Backspace()
	if got := d.Markup(); got != "<p>a</p>" {
		t.Errorf("after joining blocks = %q", got)
	}

	d.Backspace()
	d.Backspace()
	if got := d.Markup(); got != "" {
		t.Errorf("backspace past start = %q", got)
	}
}

func TestDocument_SetMarkupIsVerbatim(t *testing.T) {
	inputs := []string{
		"<p>2%</p>",
		`<div onclick="x()"><script>alert(1)</script>kept as is</div>`,
		"not html at all",
		"<p>unclosed <b>tag",
	}
	for _, in := range inputs {
		d := New()
		d.SetMarkup(in)
		if got := d.Markup(); got != in {
			t.Errorf("Markup() = %q, want %q", got, in)
		}
	}
}

func TestDocument_EditAfterSetMarkup(t *testing.T) {
	d := New()
	d.SetMarkup(`<p style="text-align:right">Buy <strong>milk</strong></p><ul><li>2%</li></ul>`)

	blocks := d.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("blocks = %+v", blocks)
	}
	if blocks[0].Align != AlignRight || blocks[0].Text() != "Buy milk" {
		t.Errorf("first block = %+v", blocks[0])
	}
	if !blocks[1].List || blocks[1].Text() != "2%" {
		t.Errorf("second block = %+v", blocks[1])
	}

	d.Insert(" fat")
	want := `<p style="text-align: right;">Buy <b>milk</b></p><ul><li>2% fat</li></ul>`
	if got := d.Markup(); got != want {
		t.Errorf("Markup() = %q, want %q", got, want)
	}
}

func TestDocument_ReloadOwnMarkup(t *testing.T) {
	tests := []struct {
		name  string
		build func(d *Document)
	}{
		{"trailing empty paragraph", func(d *Document) {
			d.Insert("a")
			d.Break()
		}},
		{"empty paragraph between", func(d *Document) {
			d.Insert("a")
			d.Break()
			d.Break()
			d.Insert("c")
		}},
		{"empty list item", func(d *Document) {
			mustApply(t, d, InsertUnorderedList)
			d.Insert("a")
			d.Break()
		}},
		{"centered empty paragraph", func(d *Document) {
			d.Insert("a")
			d.Break()
			mustApply(t, d, JustifyCenter)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := New()
			tt.build(original)

			reloaded := New()
			reloaded.SetMarkup(original.Markup())
			if got, want := len(reloaded.Blocks()), len(original.Blocks()); got != want {
				t.Fatalf("reloaded %q into %d blocks, want %d", original.Markup(), got, want)
			}

			original.Insert("b")
			reloaded.Insert("b")
			if got, want := reloaded.Markup(), original.Markup(); got != want {
				t.Errorf("edit after reload = %q, want %q", got, want)
			}
		})
	}
}

func TestDocument_Reset(t *testing.T) {
	d := New()
	d.SetMarkup("<p>x</p>")
	mustApply(t, d, Bold)
	d.Reset()
	if d.Markup() != "" || d.Style() != 0 || len(d.Blocks()) != 1 {
		t.Errorf("Reset left state: markup=%q style=%v", d.Markup(), d.Style())
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"<p>2%</p>", "2%"},
		{"<p>a <b>b</b></p><ul>\n<li>c</li>\n<li>d</li>\n</ul>", "a b\nc\nd"},
		{"line<br>next", "line\nnext"},
		{"<p>a</p><p><br></p><p>c</p>", "a\n\nc"},
		{"&lt;tag&gt;", "<tag>"},
	}
	for _, tt := range tests {
		if got := PlainText(tt.in); got != tt.want {
			t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func mustApply(t *testing.T, d *Document, c Command) {
	t.Helper()
	if err := d.Apply(c); err != nil {
		t.Fatalf("Apply(%s): %v", c, err)
	}
}
