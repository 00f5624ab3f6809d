package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/linergy/subtrans-ops/internal/catalog"
	"github.com/linergy/subtrans-ops/internal/models"
)

func testFalla() *models.Falla {
	return &models.Falla{
		ID:           "a1b2c3d4-0000-0000-0000-000000000000",
		LineaID:      "linea-1",
		Km:           12.5,
		Tipo:         "Descarga atmosférica",
		Descripcion:  "Aislador dañado en la torre 41.",
		Estado:       models.EstadoAbierta,
		Geom:         "POINT(-104.65 24.02)",
		OcurrenciaTS: time.Date(2026, 3, 14, 16, 30, 0, 0, time.UTC),
	}
}

func testLinea() *models.Linea {
	return &models.Linea{
		ID:     "linea-1",
		Numero: "73990",
		Nombre: "JOM-73990-LAF",
	}
}

func TestFolio(t *testing.T) {
	f := testFalla()
	if got := Folio(f); got != "A1B2C3D4" {
		t.Fatalf("Folio = %q, want A1B2C3D4", got)
	}
	if got := Filename(f); got != "reporte-falla-A1B2C3D4.pdf" {
		t.Fatalf("Filename = %q", got)
	}
}

func TestTextComplete(t *testing.T) {
	out := Text(testFalla(), testLinea(), nil)

	for _, want := range []string{
		"REPORTE DE FALLA - Linergy (CFE)",
		"Folio: A1B2C3D4",
		"Línea: 73990 — JOM-73990-LAF",
		"CARACTERÍSTICAS DE LA LÍNEA:",
		"Kilómetro: 12.5 km",
		"Estado: Abierta",
		"Ocurrencia: 14 de marzo de 2026 16:30",
		"Coordenadas: 24.020000, -104.650000",
		"https://www.google.com/maps?q=24.02,-104.65",
		"Aislador dañado en la torre 41.",
		"ID de falla: a1b2c3d4-0000-0000-0000-000000000000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q\n%s", want, out)
		}
	}
}

func TestTextWithoutGeometry(t *testing.T) {
	f := testFalla()
	f.Geom = ""
	f.Descripcion = "  "
	out := Text(f, nil, nil)

	if !strings.Contains(out, "Coordenadas: No disponible") {
		t.Errorf("missing coordinate fallback:\n%s", out)
	}
	if !strings.Contains(out, "Google Maps: N/A") {
		t.Errorf("missing maps fallback:\n%s", out)
	}
	if strings.Contains(out, "google.com/maps?q=") {
		t.Errorf("maps link rendered without coordinates:\n%s", out)
	}
	if !strings.Contains(out, "Línea: N/A") {
		t.Errorf("missing line fallback:\n%s", out)
	}
	if !strings.Contains(out, "Sin descripción adicional") {
		t.Errorf("missing description fallback:\n%s", out)
	}
}

func TestTextCatalogBlockOnlyWhenMatched(t *testing.T) {
	l := testLinea()
	l.Numero = "00000"
	l.Nombre = "desconocida"
	out := Text(testFalla(), l, nil)
	if strings.Contains(out, "CARACTERÍSTICAS DE LA LÍNEA:") {
		t.Errorf("catalog block rendered for unknown line:\n%s", out)
	}
}

func TestTextAppliesOverrides(t *testing.T) {
	ov := catalog.Overrides{"JOM-73990-LAF": {"kms": 99.9}}
	out := Text(testFalla(), testLinea(), ov)
	if !strings.Contains(out, "KMS: 99.9") {
		t.Errorf("override value not rendered:\n%s", out)
	}
}

func TestPDFProducesDocument(t *testing.T) {
	got, err := PDF(testFalla(), testLinea(), nil)
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(got, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF document (%d bytes)", len(got))
	}
	if len(got) < 1000 {
		t.Fatalf("suspiciously small PDF: %d bytes", len(got))
	}
}

func TestPDFWithoutLineOrGeometry(t *testing.T) {
	f := testFalla()
	f.Geom = "POINT(9999 9999)"
	got, err := PDF(f, nil, nil)
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(got, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF document")
	}
}

func TestPDFWrapsAccentedText(t *testing.T) {
	f := testFalla()
	f.Tipo = "Falla por descarga atmosférica múltiple"
	f.Descripcion = strings.Repeat("Vegetación crecida bajo la línea; aislador dañado cerca de Cañón del Águila. ", 8)
	l := testLinea()
	l.Nombre = "Línea Gómez Palacio – Cañón"

	got, err := PDF(f, l, nil)
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(got, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF document")
	}
}
