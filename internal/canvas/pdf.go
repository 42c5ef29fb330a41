package canvas

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	"github.com/jung-kurt/gofpdf"
)

// writePDF serialises a vector recording as a single-page PDF. One canvas
// pixel maps to one PDF point.
func writePDF(w io.Writer, width, height int, ops []vectorOp) error {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: float64(width), Ht: float64(height)},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	fonts := make(map[*fontEntry]string)
	for i, op := range ops {
		switch op.kind {
		case opFill:
			r, g, b := rgb255(op.color)
			pdf.SetAlpha(op.color.A, "Normal")
			pdf.SetFillColor(r, g, b)
			pdfPath(pdf, op.path)
			pdf.DrawPath("F")

		case opStroke:
			r, g, b := rgb255(op.stroke.color)
			pdf.SetAlpha(op.stroke.color.A, "Normal")
			pdf.SetDrawColor(r, g, b)
			pdf.SetLineWidth(op.stroke.width)
			pdf.SetDashPattern(op.stroke.dash, 0)
			pdfPath(pdf, op.path)
			pdf.DrawPath("D")

		case opText:
			t := op.text
			family, ok := fonts[t.entry]
			if !ok {
				family = fmt.Sprintf("F%d", len(fonts)+1)
				pdf.AddUTF8FontFromBytes(family, "", t.entry.data)
				fonts[t.entry] = family
			}
			r, g, b := rgb255(t.color)
			pdf.SetAlpha(t.color.A, "Normal")
			pdf.SetFont(family, "", t.font.Size)
			pdf.SetTextColor(r, g, b)
			pdf.Text(t.x, t.y, t.text)

		case opImage:
			var buf bytes.Buffer
			if err := imaging.Encode(&buf, op.image.img, imaging.PNG); err != nil {
				return fmt.Errorf("embed image: %w", err)
			}
			name := fmt.Sprintf("img%d", i)
			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.SetAlpha(op.image.alpha, "Normal")
			pdf.RegisterImageOptionsReader(name, opts, &buf)
			pdf.ImageOptions(name, op.image.x, op.image.y, op.image.w, op.image.h, false, opts, 0, "")
		}
	}

	return pdf.Output(w)
}

func pdfPath(pdf *gofpdf.Fpdf, p *gg.Path) {
	for _, el := range p.Elements() {
		switch e := el.(type) {
		case gg.MoveTo:
			pdf.MoveTo(e.Point.X, e.Point.Y)
		case gg.LineTo:
			pdf.LineTo(e.Point.X, e.Point.Y)
		case gg.QuadTo:
			pdf.CurveTo(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case gg.CubicTo:
			pdf.CurveBezierCubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case gg.Close:
			pdf.ClosePath()
		}
	}
}

func rgb255(c gg.RGBA) (int, int, int) {
	return to255(c.R), to255(c.G), to255(c.B)
}
