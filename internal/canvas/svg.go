package canvas

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
)

// writeSVG serialises a vector recording as a standalone SVG document.
func writeSVG(w io.Writer, width, height int, ops []vectorOp) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="%d" viewBox="0 0 %d %d">
`, width, height, width, height)

	for _, op := range ops {
		switch op.kind {
		case opFill:
			fmt.Fprintf(bw, `<path d="%s" fill="%s"%s/>`+"\n",
				svgPathData(op.path), svgColor(op.color), svgOpacity("fill-opacity", op.color.A))
		case opStroke:
			dash := ""
			if len(op.stroke.dash) > 0 {
				dash = fmt.Sprintf(` stroke-dasharray="%s"`, joinFloats(op.stroke.dash, ","))
			}
			fmt.Fprintf(bw, `<path d="%s" fill="none" stroke="%s" stroke-width="%s"%s%s/>`+"\n",
				svgPathData(op.path), svgColor(op.stroke.color), fmtFloat(op.stroke.width),
				svgOpacity("stroke-opacity", op.stroke.color.A), dash)
		case opText:
			t := op.text
			weight := ""
			if t.font.Bold() {
				weight = ` font-weight="bold"`
			}
			style := ""
			if t.font.Italic() {
				style = ` font-style="italic"`
			}
			fmt.Fprintf(bw, `<text x="%s" y="%s" font-family="%s" font-size="%s"%s%s fill="%s"%s>%s</text>`+"\n",
				fmtFloat(t.x), fmtFloat(t.y), html.EscapeString(strings.Join(t.font.Families, ", ")),
				fmtFloat(t.font.Size), weight, style, svgColor(t.color),
				svgOpacity("fill-opacity", t.color.A), html.EscapeString(t.text))
		case opImage:
			var buf bytes.Buffer
			if err := imaging.Encode(&buf, op.image.img, imaging.PNG); err != nil {
				return fmt.Errorf("embed image: %w", err)
			}
			fmt.Fprintf(bw, `<image x="%s" y="%s" width="%s" height="%s"%s xlink:href="data:image/png;base64,%s"/>`+"\n",
				fmtFloat(op.image.x), fmtFloat(op.image.y), fmtFloat(op.image.w), fmtFloat(op.image.h),
				svgOpacity("opacity", op.image.alpha), base64.StdEncoding.EncodeToString(buf.Bytes()))
		}
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}

func svgPathData(p *gg.Path) string {
	var b strings.Builder
	for _, el := range p.Elements() {
		switch e := el.(type) {
		case gg.MoveTo:
			fmt.Fprintf(&b, "M%s %s", fmtFloat(e.Point.X), fmtFloat(e.Point.Y))
		case gg.LineTo:
			fmt.Fprintf(&b, "L%s %s", fmtFloat(e.Point.X), fmtFloat(e.Point.Y))
		case gg.QuadTo:
			fmt.Fprintf(&b, "Q%s %s %s %s", fmtFloat(e.Control.X), fmtFloat(e.Control.Y),
				fmtFloat(e.Point.X), fmtFloat(e.Point.Y))
		case gg.CubicTo:
			fmt.Fprintf(&b, "C%s %s %s %s %s %s", fmtFloat(e.Control1.X), fmtFloat(e.Control1.Y),
				fmtFloat(e.Control2.X), fmtFloat(e.Control2.Y), fmtFloat(e.Point.X), fmtFloat(e.Point.Y))
		case gg.Close:
			b.WriteByte('Z')
		}
	}
	return b.String()
}

func svgColor(c gg.RGBA) string {
	r, g, b := to255(c.R), to255(c.G), to255(c.B)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func svgOpacity(attr string, a float64) string {
	if a >= 1 {
		return ""
	}
	return fmt.Sprintf(` %s="%s"`, attr, fmtFloat(a))
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 32)
}

func joinFloats(vs []float64, sep string) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmtFloat(v)
	}
	return strings.Join(parts, sep)
}

func to255(v float64) int {
	return int(clamp01(v)*255 + 0.5)
}
