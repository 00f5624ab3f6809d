package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/linergy/subtrans-ops/internal/models"
	"github.com/linergy/subtrans-ops/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Folder>
      <name>Lineas</name>
      <Placemark>
        <name>LT 73990 Jeronimo Ortiz - La Flor</name>
        <ExtendedData>
          <Data name="clasificacion"><value>ALTA</value></Data>
          <Data name="km_inicio"><value>0</value></Data>
          <Data name="km_fin"><value>10.98</value></Data>
        </ExtendedData>
        <LineString>
          <coordinates>
            -104.70,24.00,0 -104.65,24.02,0 -104.60,24.05,0
          </coordinates>
        </LineString>
      </Placemark>
      <Placemark>
        <name>E1</name>
        <ExtendedData>
          <Data name="km"><value>0.5</value></Data>
        </ExtendedData>
        <Point><coordinates>-104.69,24.005,0</coordinates></Point>
      </Placemark>
      <Placemark>
        <name>E2</name>
        <ExtendedData>
          <Data name="km"><value>5.2</value></Data>
          <Data name="linea"><value>73990</value></Data>
        </ExtendedData>
        <Point><coordinates>-104.65,24.02,0</coordinates></Point>
      </Placemark>
      <Placemark>
        <name>Sin geometria</name>
      </Placemark>
      <Placemark>
        <name>Sin km</name>
        <Point><coordinates>-104.64,24.03,0</coordinates></Point>
      </Placemark>
    </Folder>
  </Document>
</kml>`

func buildKMZ(t *testing.T, kml string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("doc.kml")
	if err != nil {
		t.Fatalf("zip create failed: %v", err)
	}
	if _, err := w.Write([]byte(kml)); err != nil {
		t.Fatalf("zip write failed: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close failed: %v", err)
	}
	return buf.Bytes()
}

func TestParseKMZ(t *testing.T) {
	placemarks, err := ParseKMZ(buildKMZ(t, testKML))
	if err != nil {
		t.Fatalf("ParseKMZ failed: %v", err)
	}
	if len(placemarks) != 5 {
		t.Fatalf("expected 5 placemarks, got %d", len(placemarks))
	}
	if placemarks[0].LineString == nil {
		t.Error("first placemark should carry a LineString")
	}
	if placemarks[1].Point == nil {
		t.Error("second placemark should carry a Point")
	}
}

func TestParseKMZ_NotAZip(t *testing.T) {
	if _, err := ParseKMZ([]byte("not a zip")); err == nil {
		t.Fatal("expected error for non-zip payload")
	}
}

func TestParseKMZ_NoKML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("readme.txt")
	w.Write([]byte("hola"))
	zw.Close()

	if _, err := ParseKMZ(buf.Bytes()); err != ErrNoKML {
		t.Fatalf("expected ErrNoKML, got %v", err)
	}
}

func TestImport(t *testing.T) {
	db, err := store.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	defer db.Close()

	im := New(db, 2, 10)
	summary, err := im.Import(context.Background(), buildKMZ(t, testKML))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if summary.Lineas != 1 {
		t.Errorf("expected 1 linea, got %d", summary.Lineas)
	}
	if summary.Estructuras != 2 {
		t.Errorf("expected 2 estructuras, got %d", summary.Estructuras)
	}
	if summary.Omitidos != 2 {
		t.Errorf("expected 2 omitidos, got %d", summary.Omitidos)
	}

	ctx := context.Background()
	lineas, err := db.ListLineas(ctx)
	if err != nil {
		t.Fatalf("ListLineas failed: %v", err)
	}
	if len(lineas) != 1 {
		t.Fatalf("expected 1 linea stored, got %d", len(lineas))
	}
	l := lineas[0]
	if l.Numero != "73990" {
		t.Errorf("expected numero extracted from name, got %s", l.Numero)
	}
	if l.Clasificacion != models.ClasificacionAlta {
		t.Errorf("expected clasificacion ALTA, got %s", l.Clasificacion)
	}
	if l.KmFin == nil || *l.KmFin != 10.98 {
		t.Errorf("km_fin not imported: %v", l.KmFin)
	}
	if !strings.HasPrefix(l.Geom, "LINESTRING(") {
		t.Errorf("unexpected geom: %s", l.Geom)
	}

	estructuras, err := db.ListEstructuras(ctx, l.ID)
	if err != nil {
		t.Fatalf("ListEstructuras failed: %v", err)
	}
	if len(estructuras) != 2 {
		t.Fatalf("expected 2 estructuras stored, got %d", len(estructuras))
	}
	if estructuras[0].Km != 0.5 || estructuras[0].NumeroEstructura != "E1" {
		t.Errorf("unexpected first estructura: %+v", estructuras[0])
	}
}
