// Package report renders a fault record as a paginated PDF document or
// a plain-text block. Rendering is pure: inputs plus the static catalog
// (with local overrides applied) fully determine the output.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/linergy/subtrans-ops/internal/catalog"
	"github.com/linergy/subtrans-ops/internal/geo"
	"github.com/linergy/subtrans-ops/internal/models"
)

// Folio derives the short human-readable identifier printed on
// exported documents: the first 8 characters of the fault id,
// upper-cased.
func Folio(f *models.Falla) string {
	id := f.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

// Filename is the download name for the PDF artifact.
func Filename(f *models.Falla) string {
	return fmt.Sprintf("reporte-falla-%s.pdf", Folio(f))
}

var spanishMonths = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

func fmtDateLong(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

func fmtTime(t time.Time) string {
	return t.Format("15:04")
}

// coordinates resolves the printable location for a fault. Invalid or
// missing geometry yields ok=false; callers then print "No disponible"
// and emit no maps link.
func coordinates(f *models.Falla) (lat, lon float64, ok bool) {
	g := geo.ParseGeometry(f.Geom)
	if g == nil || g.Type != geo.TypePoint {
		return 0, 0, false
	}
	lon, lat = g.Point[0], g.Point[1]
	if !geo.ValidLatLon(lat, lon) {
		return 0, 0, false
	}
	return lat, lon, true
}

func mapsURL(lat, lon float64) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%g,%g", lat, lon)
}

func lineaLabel(l *models.Linea) string {
	if l == nil || l.Numero == "" {
		return "N/A"
	}
	if l.Nombre != "" {
		return l.Numero + " — " + l.Nombre
	}
	return l.Numero
}

func catalogEntry(l *models.Linea, ov catalog.Overrides) *catalog.Entry {
	if l == nil {
		return nil
	}
	key := l.Numero
	if key == "" {
		key = l.Nombre
	}
	return ov.Apply(catalog.Find(key))
}

// Text renders the flat labeled block suitable for clipboard copy.
func Text(f *models.Falla, l *models.Linea, ov catalog.Overrides) string {
	var b strings.Builder

	b.WriteString("REPORTE DE FALLA - Linergy (CFE)\n\n")
	fmt.Fprintf(&b, "Folio: %s\n", Folio(f))
	fmt.Fprintf(&b, "Línea: %s\n", lineaLabel(l))

	if entry := catalogEntry(l, ov); entry != nil {
		b.WriteString("\nCARACTERÍSTICAS DE LA LÍNEA:\n")
		for _, line := range entry.FormatLines() {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	fmt.Fprintf(&b, "\nKilómetro: %.1f km\n", f.Km)
	fmt.Fprintf(&b, "Tipo de falla: %s\n", f.Tipo)
	fmt.Fprintf(&b, "Estado: %s\n", f.Estado.Display())
	fmt.Fprintf(&b, "\nOcurrencia: %s %s\n", fmtDateLong(f.OcurrenciaTS), fmtTime(f.OcurrenciaTS))

	b.WriteString("\nUbicación:\n")
	if lat, lon, ok := coordinates(f); ok {
		fmt.Fprintf(&b, "Coordenadas: %.6f, %.6f\n", lat, lon)
		fmt.Fprintf(&b, "Google Maps: %s\n", mapsURL(lat, lon))
	} else {
		b.WriteString("Coordenadas: No disponible\n")
		b.WriteString("Google Maps: N/A\n")
	}

	descripcion := strings.TrimSpace(f.Descripcion)
	if descripcion == "" {
		descripcion = "Sin descripción adicional"
	}
	fmt.Fprintf(&b, "\nDescripción:\n%s\n", descripcion)
	fmt.Fprintf(&b, "\nID de falla: %s\n", f.ID)

	return b.String()
}
