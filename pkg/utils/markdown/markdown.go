package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Options selects how post content is turned into HTML.
type Options struct {
	// HardWraps renders single newlines as <br>.
	HardWraps bool
	// Typographer swaps straight quotes and dashes for typographic ones.
	Typographer bool
}

// Renderer converts post content from Markdown to HTML. Raw HTML in the
// source is always dropped. Safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

func New(opts Options) *Renderer {
	exts := []goldmark.Extender{extension.GFM}
	if opts.Typographer {
		exts = append(exts, extension.Typographer)
	}
	var rendererOpts []renderer.Option
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(rendererOpts...),
		),
	}
}

func (r *Renderer) Render(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
