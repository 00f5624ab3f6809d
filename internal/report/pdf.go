package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/linergy/subtrans-ops/internal/catalog"
	"github.com/linergy/subtrans-ops/internal/models"
)

// Institutional palette.
var (
	colText    = [3]int{17, 24, 39}
	colSubtext = [3]int{55, 65, 81}
	colMuted   = [3]int{100, 116, 139}
	colLine    = [3]int{203, 213, 225}
	colCard    = [3]int{250, 250, 250}
	colBrand   = [3]int{21, 122, 90}
)

const (
	pageMargin  = 44.0
	footerSpace = 72.0
)

type pdfRenderer struct {
	pdf      *gofpdf.Fpdf
	tr       func(string) string
	pageW    float64
	pageH    float64
	contentW float64
	y        float64
	folio    string
	generado time.Time
}

// PDF renders the paginated report document and returns its bytes.
func PDF(f *models.Falla, l *models.Linea, ov catalog.Overrides) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	pageW, pageH := pdf.GetPageSize()
	r := &pdfRenderer{
		pdf:      pdf,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		pageW:    pageW,
		pageH:    pageH,
		contentW: pageW - pageMargin*2,
		folio:    Folio(f),
		generado: time.Now(),
	}

	pdf.AddPage()
	r.drawHeader(false)

	r.summaryCard(f, l)
	r.datesCard(f)
	if entry := catalogEntry(l, ov); entry != nil {
		r.catalogCard(entry)
	}
	r.descriptionCard(f)
	r.locationCard(f)
	r.footer()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error rendering PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pdfRenderer) setTextColor(c [3]int) { r.pdf.SetTextColor(c[0], c[1], c[2]) }
func (r *pdfRenderer) setDrawColor(c [3]int) { r.pdf.SetDrawColor(c[0], c[1], c[2]) }
func (r *pdfRenderer) setFillColor(c [3]int) { r.pdf.SetFillColor(c[0], c[1], c[2]) }

func (r *pdfRenderer) text(x, y float64, s string) {
	r.pdf.Text(x, y, r.tr(s))
}

func (r *pdfRenderer) textRight(y float64, s string) {
	w := r.pdf.GetStringWidth(r.tr(s))
	r.pdf.Text(r.pageW-pageMargin-w, y, r.tr(s))
}

// splitLines wraps value to width w. gofpdf's SplitText walks runes
// and indexes the core font's 256-entry width table with them, so the
// translated bytes are widened to one rune per byte before splitting
// and narrowed back afterwards. The returned lines are already in the
// font encoding and must be drawn without translating again.
func (r *pdfRenderer) splitLines(value string, w float64) []string {
	translated := r.tr(value)
	widened := make([]rune, 0, len(translated))
	for _, b := range []byte(translated) {
		widened = append(widened, rune(b))
	}

	lines := r.pdf.SplitText(string(widened), w)
	out := make([]string, len(lines))
	for i, line := range lines {
		narrowed := make([]byte, 0, len(line))
		for _, rn := range line {
			narrowed = append(narrowed, byte(rn))
		}
		out[i] = string(narrowed)
	}
	return out
}

func (r *pdfRenderer) drawHeader(continuation bool) {
	r.setDrawColor(colBrand)
	r.pdf.SetLineWidth(3)
	r.pdf.Line(pageMargin, 30, r.pageW-pageMargin, 30)

	r.setTextColor(colText)
	r.pdf.SetFont("Helvetica", "B", 15)
	r.text(pageMargin, 54, "REPORTE DE FALLA")

	r.pdf.SetFont("Helvetica", "", 10)
	r.setTextColor(colSubtext)
	r.text(pageMargin, 70, "Comisión Federal de Electricidad · Linergy")

	r.pdf.SetFont("Helvetica", "", 9)
	r.setTextColor(colMuted)
	r.textRight(54, "Folio: "+r.folio)
	r.textRight(70, fmt.Sprintf("Emisión: %s · %s", fmtDateLong(r.generado), fmtTime(r.generado)))

	r.setDrawColor(colLine)
	r.pdf.SetLineWidth(1)
	r.pdf.Line(pageMargin, 84, r.pageW-pageMargin, 84)

	if continuation {
		r.pdf.SetFont("Helvetica", "", 9)
		r.setTextColor(colMuted)
		r.textRight(98, "Continuación")
	}

	r.y = 104
}

// ensureSpace starts a new page (with a continuation header) when the
// next block does not fit above the footer band.
func (r *pdfRenderer) ensureSpace(needed float64) {
	if r.y+needed > r.pageH-footerSpace {
		r.footer()
		r.pdf.AddPage()
		r.drawHeader(true)
	}
}

// card draws the paper-style block and returns the inner origin and
// width. The cursor advances past the card.
func (r *pdfRenderer) card(h float64) (x, y, w float64) {
	r.ensureSpace(h + 12)

	r.setFillColor(colCard)
	r.setDrawColor(colLine)
	r.pdf.SetLineWidth(1)
	r.pdf.RoundedRect(pageMargin, r.y, r.contentW, h, 6, "1234", "FD")

	r.setDrawColor(colBrand)
	r.pdf.SetLineWidth(2)
	r.pdf.Line(pageMargin+8, r.y+12, pageMargin+8, r.y+h-12)

	x = pageMargin + 20
	y = r.y + 18
	w = r.contentW - 32

	r.y += h + 14
	return x, y, w
}

func (r *pdfRenderer) sectionTitle(x, y float64, title string) {
	r.pdf.SetFont("Helvetica", "B", 10.5)
	r.setTextColor(colText)
	r.text(x, y, strings.ToUpper(title))

	r.setDrawColor(colLine)
	r.pdf.SetLineWidth(1)
	r.pdf.Line(x, y+8, x+220, y+8)
}

// kvRow prints a small label above a wrapped value and returns the y
// below the block.
func (r *pdfRenderer) kvRow(x, y float64, label, value string, valueMaxW float64) float64 {
	r.pdf.SetFont("Helvetica", "", 8.5)
	r.setTextColor(colMuted)
	r.text(x, y, strings.ToUpper(label))

	r.pdf.SetFont("Helvetica", "", 10.5)
	r.setTextColor(colText)

	if value == "" {
		value = "N/A"
	}
	lines := r.splitLines(value, valueMaxW)
	for i, line := range lines {
		r.pdf.Text(x, y+16+float64(i)*13, line)
	}
	return y + 16 + float64(len(lines))*13 + 8
}

func (r *pdfRenderer) badge(text string, x, y float64) {
	r.pdf.SetFont("Helvetica", "B", 9)

	padX := 10.0
	tw := r.pdf.GetStringWidth(r.tr(text))
	bw := tw + padX*2
	bh := 18.0

	r.setFillColor(colBrand)
	r.pdf.RoundedRect(x, y-12, bw, bh, 9, "1234", "F")

	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.Text(x+padX, y+1, r.tr(text))
	r.setTextColor(colText)
}

func (r *pdfRenderer) summaryCard(f *models.Falla, l *models.Linea) {
	x, y, w := r.card(120)
	r.sectionTitle(x, y, "Resumen")

	col1 := x
	col2 := x + w*0.55

	yy := y + 24
	yy = r.kvRow(col1, yy, "ID", f.ID, w*0.5)
	r.kvRow(col1, yy, "Línea", lineaLabel(l), w*0.5)

	yy2 := y + 24
	yy2 = r.kvRow(col2, yy2, "Kilómetro", fmt.Sprintf("%.1f km", f.Km), w*0.4)
	r.kvRow(col2, yy2, "Tipo", f.Tipo, w*0.4)

	estado := f.Estado.Display()
	bw := r.pdf.GetStringWidth(r.tr(estado)) + 20
	r.badge(estado, pageMargin+r.contentW-16-bw, y)
}

func (r *pdfRenderer) datesCard(f *models.Falla) {
	x, y, w := r.card(92)
	r.sectionTitle(x, y, "Fechas")

	r.kvRow(x, y+24, "Ocurrencia",
		fmt.Sprintf("%s · %s", fmtDateLong(f.OcurrenciaTS), fmtTime(f.OcurrenciaTS)), w*0.5)
	r.kvRow(x+w*0.55, y+24, "Generado",
		fmt.Sprintf("%s · %s", fmtDateLong(r.generado), fmtTime(r.generado)), w*0.4)
}

func (r *pdfRenderer) catalogCard(entry *catalog.Entry) {
	items := entry.Grid()

	rowH := 36.0
	rows := (len(items) + 1) / 2
	h := 68 + float64(rows)*rowH
	if h < 140 {
		h = 140
	}
	if h > 340 {
		h = 340
	}

	x, y, w := r.card(h)
	r.sectionTitle(x, y, "Características de la línea")

	colGap := 16.0
	colW := (w - colGap) / 2
	yy := y + 26

	r.setDrawColor(colLine)
	r.pdf.SetLineWidth(1)
	r.pdf.Line(x, yy-10, x+w, yy-10)

	for row := 0; row < rows; row++ {
		if row%2 == 0 {
			r.pdf.SetFillColor(252, 252, 252)
			r.pdf.Rect(pageMargin+18, yy-14, r.contentW-36, rowH, "F")
		}

		left := items[row*2]
		r.gridCell(x, yy, colW, left[0], left[1])
		if row*2+1 < len(items) {
			right := items[row*2+1]
			r.gridCell(x+colW+colGap, yy, colW, right[0], right[1])
		}

		r.setDrawColor(colLine)
		r.pdf.SetLineWidth(1)
		r.pdf.Line(x, yy+rowH-14, x+w, yy+rowH-14)

		yy += rowH
	}
}

func (r *pdfRenderer) gridCell(x, y, w float64, label, value string) {
	r.pdf.SetFont("Helvetica", "", 8.2)
	r.setTextColor(colMuted)
	r.text(x, y, strings.ToUpper(label))

	r.pdf.SetFont("Helvetica", "", 10.2)
	r.setTextColor(colText)
	if value == "" {
		value = "N/A"
	}
	lines := r.splitLines(value, w)
	if len(lines) > 0 {
		r.pdf.Text(x, y+14, lines[0])
	}
}

func (r *pdfRenderer) descriptionCard(f *models.Falla) {
	text := f.Descripcion
	if text == "" {
		text = "Sin descripción adicional."
	}

	r.pdf.SetFont("Helvetica", "", 10.5)
	lines := r.splitLines(text, r.contentW-32)

	h := 58 + float64(len(lines))*13
	if h < 110 {
		h = 110
	}
	if h > 230 {
		h = 230
	}

	x, y, _ := r.card(h)
	r.sectionTitle(x, y, "Descripción")

	r.pdf.SetFont("Helvetica", "", 10.5)
	r.setTextColor(colText)
	for i, line := range lines {
		yy := y + 28 + float64(i)*13
		if yy > y+h-24 {
			break
		}
		r.pdf.Text(x, yy, line)
	}
}

func (r *pdfRenderer) locationCard(f *models.Falla) {
	lat, lon, ok := coordinates(f)

	h := 80.0
	if ok {
		h = 110
	}
	x, y, w := r.card(h)
	r.sectionTitle(x, y, "Ubicación")

	coordsText := "No disponible"
	if ok {
		coordsText = fmt.Sprintf("%.6f, %.6f", lat, lon)
	}
	yy := r.kvRow(x, y+24, "Coordenadas (lat, lon)", coordsText, w)

	if ok {
		url := mapsURL(lat, lon)

		r.pdf.SetFont("Helvetica", "", 8.5)
		r.setTextColor(colMuted)
		r.text(x, yy+2, "GOOGLE MAPS")

		r.pdf.SetFont("Helvetica", "", 10.5)
		r.setTextColor(colBrand)
		r.pdf.Text(x, yy+18, url)
		r.pdf.LinkString(x, yy+8, r.pdf.GetStringWidth(url), 12, url)
		r.setTextColor(colText)
	}
}

func (r *pdfRenderer) footer() {
	r.setDrawColor(colLine)
	r.pdf.SetLineWidth(1)
	r.pdf.Line(pageMargin, r.pageH-44, r.pageW-pageMargin, r.pageH-44)

	r.pdf.SetFont("Helvetica", "", 9)
	r.setTextColor(colSubtext)
	r.text(pageMargin, r.pageH-26, "Documento generado automáticamente · Uso interno")

	r.setTextColor(colMuted)
	r.textRight(r.pageH-26, "CFE · Linergy · Folio "+r.folio)
}
