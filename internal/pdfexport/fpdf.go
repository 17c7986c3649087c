package pdfexport

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/lehigh-university-libraries/booklet/internal/images"
)

// pdfCanvas draws onto a single landscape Letter page with FPDF. FPDF core
// fonts expect cp1252 text, so strings are re-encoded before measuring and
// drawing; runes outside cp1252 become '\x1a'.
type pdfCanvas struct {
	pdf    *fpdf.Fpdf
	height float64
	enc    *encoding.Encoder
	images int
}

// NewPDFCanvas starts a one-page landscape Letter document.
func NewPDFCanvas() Canvas {
	pdf := fpdf.New("L", "pt", "Letter", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("booklet", true)
	pdf.SetTextColor(0, 0, 0)
	pdf.AddPage()
	_, h := pdf.GetPageSize()

	return &pdfCanvas{
		pdf:    pdf,
		height: h,
		enc:    encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()),
	}
}

func (c *pdfCanvas) encode(s string) string {
	out, err := c.enc.String(s)
	if err != nil {
		return s
	}
	return out
}

func (c *pdfCanvas) SetFont(face Face, size float64) {
	c.pdf.SetFont(face.Family, face.Style, size)
}

func (c *pdfCanvas) TextWidth(text string) float64 {
	return c.pdf.GetStringWidth(c.encode(text))
}

func (c *pdfCanvas) Text(x, y float64, text string) {
	c.pdf.Text(x, c.height-y, c.encode(text))
}

func (c *pdfCanvas) Image(data []byte, mime string, x, y, w, h float64) error {
	raw, typ, err := images.ForPDF(data, mime)
	if err != nil {
		return err
	}
	c.images++
	name := fmt.Sprintf("img%d", c.images)
	opts := fpdf.ImageOptions{ImageType: typ}
	c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(raw))
	c.pdf.ImageOptions(name, x, c.height-y-h, w, h, false, opts, 0, "")
	return c.pdf.Error()
}

func (c *pdfCanvas) Rotate(angle, x, y float64, draw func()) {
	c.pdf.TransformBegin()
	c.pdf.TransformRotate(angle, x, c.height-y)
	draw()
	c.pdf.TransformEnd()
}

func (c *pdfCanvas) Output(w io.Writer) error {
	return c.pdf.Output(w)
}
