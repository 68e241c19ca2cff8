// Package pdf turns report HTML into a single merged PDF document. One
// headless Chromium process is shared across requests; every render opens
// its own page inside it and closes that page on every exit path.
package pdf

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/avichaydahan/brandlight-reports/internal/errors"
)

// Document is one report to print. Cover and content are rendered as
// separate browser pages so they get different header/footer treatment,
// then merged into one PDF.
type Document struct {
	CoverHTML      string
	ContentHTML    string
	HeaderTemplate string
	FooterTemplate string
}

type Options struct {
	Bin           string
	Headless      bool
	RenderTimeout time.Duration
}

type Compositor struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
}

// NewCompositor launches the browser process. The returned handle must be
// closed with Close; it is safe for concurrent Compose calls.
func NewCompositor(opts Options) (*Compositor, error) {
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = 60 * time.Second
	}

	l := launcher.New().Headless(opts.Headless)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, errors.Internal("launch browser", errors.WithCause(err))
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, errors.Internal("connect to browser", errors.WithCause(err))
	}

	slog.Info("brandlight_reports.pdf.browser_started")
	return &Compositor{browser: browser, launcher: l, timeout: opts.RenderTimeout}, nil
}

func (c *Compositor) Close() error {
	err := c.browser.Close()
	c.launcher.Cleanup()
	return err
}

// Compose prints the cover without header/footer and the content with the
// document's print header/footer, then merges both streams in that order.
func (c *Compositor) Compose(ctx context.Context, doc Document) ([]byte, error) {
	cover, err := c.render(ctx, doc.CoverHTML, &proto.PagePrintToPDF{
		PrintBackground: true,
	})
	if err != nil {
		return nil, err
	}

	content, err := c.render(ctx, doc.ContentHTML, &proto.PagePrintToPDF{
		PrintBackground:     true,
		DisplayHeaderFooter: true,
		HeaderTemplate:      doc.HeaderTemplate,
		FooterTemplate:      doc.FooterTemplate,
		MarginTop:           f64(0.6),
		MarginBottom:        f64(0.6),
	})
	if err != nil {
		return nil, err
	}

	var merged bytes.Buffer
	readers := []io.ReadSeeker{bytes.NewReader(cover), bytes.NewReader(content)}
	if err := api.MergeRaw(readers, &merged, false, nil); err != nil {
		return nil, errors.Internal("merge pdf streams", errors.WithCause(err))
	}
	return merged.Bytes(), nil
}

func (c *Compositor) render(ctx context.Context, html string, print *proto.PagePrintToPDF) ([]byte, error) {
	page, err := c.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, errors.Internal("open browser page", errors.WithCause(err))
	}
	page = page.Context(ctx).Timeout(c.timeout)
	// The page must be released whether printing succeeds or not.
	defer func() { _ = page.Close() }()

	if err := page.SetDocumentContent(html); err != nil {
		return nil, errors.Internal("set page content", errors.WithCause(err))
	}
	if err := page.WaitStable(300 * time.Millisecond); err != nil {
		return nil, errors.Internal("wait for page render", errors.WithCause(err))
	}

	stream, err := page.PDF(print)
	if err != nil {
		return nil, errors.Internal("print page to pdf", errors.WithCause(err))
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, errors.Internal("read pdf stream", errors.WithCause(err))
	}
	return data, nil
}

func f64(v float64) *float64 { return &v }
