package report

import (
	"bytes"
	"context"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	api.DisableConfigDir()
}

// PDFExporter prints report pages with headless Chrome.
type PDFExporter struct {
	Timeout time.Duration
	// print is swapped in tests to avoid launching a browser.
	print func(ctx context.Context, html string) ([]byte, error)
}

func NewPDFExporter(timeout time.Duration) *PDFExporter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PDFExporter{Timeout: timeout, print: printHTML}
}

// Export renders md as a page, prints it and stamps title and subject into
// the document properties.
func (x *PDFExporter) Export(ctx context.Context, title, md string) ([]byte, error) {
	doc, err := RenderPage(title, md)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, x.Timeout)
	defer cancel()

	raw, err := x.print(ctx, doc)
	if err != nil {
		return nil, goerr.Wrap(err, "print to pdf failed", goerr.V("title", title))
	}
	return stampProperties(raw, map[string]string{
		"Title":   title,
		"Subject": "Deep research report",
		"Creator": "deepresearch",
	})
}

func stampProperties(raw []byte, props map[string]string) ([]byte, error) {
	var out bytes.Buffer
	if err := api.AddProperties(bytes.NewReader(raw), &out, props, model.NewDefaultConfiguration()); err != nil {
		return nil, goerr.Wrap(err, "add pdf properties failed")
	}
	return out.Bytes(), nil
}

func printHTML(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", true))
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var pdf []byte
	err := chromedp.Run(bctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	return pdf, err
}
