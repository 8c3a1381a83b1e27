// Package printing turns bills and payment receipts into PDF documents.
//
// Rendering is two steps: TemplateEngine binds document data to an HTML
// template, then a PDFRenderer prints the HTML. ChromedpRenderer drives a
// headless Chrome through the DevTools protocol:
//
//	engine := NewTemplateEngine()
//	html, err := engine.Render(BillTemplate, data)
//	if err != nil {
//	    return err
//	}
//	result, err := renderer.Render(ctx, &RenderRequest{HTML: html, PaperSize: PaperSizeA4})
package printing
