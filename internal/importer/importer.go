// Package importer loads line traces and structures from a KMZ file
// (a zip archive wrapping a KML document) into the store.
package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/linergy/subtrans-ops/internal/catalog"
	"github.com/linergy/subtrans-ops/internal/geo"
	"github.com/linergy/subtrans-ops/internal/models"
	"github.com/linergy/subtrans-ops/internal/store"
	"github.com/linergy/subtrans-ops/internal/worker"
)

var ErrNoKML = errors.New("el archivo KMZ no contiene un documento KML")

// Summary is the import result returned to the caller.
type Summary struct {
	Lineas      int `json:"lineas"`
	Estructuras int `json:"estructuras"`
	Omitidos    int `json:"omitidos"`
}

type Placemark struct {
	Name       string        `xml:"name"`
	Point      *geomElem     `xml:"Point"`
	LineString *geomElem     `xml:"LineString"`
	Extended   *extendedData `xml:"ExtendedData"`
}

type geomElem struct {
	Coordinates string `xml:"coordinates"`
}

type extendedData struct {
	Data []dataElem `xml:"Data"`
}

type dataElem struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

func (p *Placemark) data(name string) string {
	if p.Extended == nil {
		return ""
	}
	for _, d := range p.Extended.Data {
		if strings.EqualFold(d.Name, name) {
			return strings.TrimSpace(d.Value)
		}
	}
	return ""
}

// ParseKMZ extracts the placemarks from the first KML document found in
// the archive, in document order. Folder nesting is flattened.
func ParseKMZ(data []byte) ([]Placemark, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("error opening KMZ archive: %w", err)
	}

	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".kml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("error opening %s: %w", f.Name, err)
		}
		placemarks, err := parseKML(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		return placemarks, nil
	}

	return nil, ErrNoKML
}

func parseKML(r io.Reader) ([]Placemark, error) {
	dec := xml.NewDecoder(r)
	var placemarks []Placemark

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error decoding KML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Placemark" {
			continue
		}
		var p Placemark
		if err := dec.DecodeElement(&p, &start); err != nil {
			return nil, fmt.Errorf("error decoding Placemark: %w", err)
		}
		placemarks = append(placemarks, p)
	}

	return placemarks, nil
}

// parseCoordinates reads a KML coordinate block: whitespace-separated
// "lon,lat[,alt]" tuples. Malformed tuples are dropped.
func parseCoordinates(s string) [][]float64 {
	var out [][]float64
	for _, tuple := range strings.Fields(s) {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			continue
		}
		lon, errLon := strconv.ParseFloat(parts[0], 64)
		lat, errLat := strconv.ParseFloat(parts[1], 64)
		if errLon != nil || errLat != nil || !geo.ValidLatLon(lat, lon) {
			continue
		}
		out = append(out, []float64{lon, lat})
	}
	return out
}

type Importer struct {
	store   store.Store
	workers int
	buffer  int
}

func New(s store.Store, workers, buffer int) *Importer {
	return &Importer{store: s, workers: workers, buffer: buffer}
}

// Import parses a KMZ payload and persists its contents. LineString
// placemarks become lineas; Point placemarks become estructuras on the
// most recent linea seen in document order (or one named by a "linea"
// data field). Placemarks that fit neither shape are counted as
// omitted, never guessed at.
func (im *Importer) Import(ctx context.Context, data []byte) (*Summary, error) {
	placemarks, err := ParseKMZ(data)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}

	pool := worker.NewPool(im.workers, im.buffer, func(ctx context.Context, task worker.Task) error {
		switch row := task.(type) {
		case *models.Linea:
			return im.store.CreateLinea(ctx, row)
		case *models.Estructura:
			return im.store.AddEstructura(ctx, row)
		}
		return fmt.Errorf("unknown import task %T", task)
	})
	pool.Start(ctx)

	lineaByNumero := map[string]string{}
	currentLinea := ""

	for i := range placemarks {
		p := &placemarks[i]
		switch {
		case p.LineString != nil:
			path := parseCoordinates(p.LineString.Coordinates)
			if len(path) < 2 || p.Name == "" {
				summary.Omitidos++
				continue
			}
			l := lineaFromPlacemark(p, path)
			lineaByNumero[l.Numero] = l.ID
			currentLinea = l.ID
			summary.Lineas++
			pool.Submit(l)

		case p.Point != nil:
			coords := parseCoordinates(p.Point.Coordinates)
			lineaID := im.resolveLinea(p, lineaByNumero, currentLinea)
			km, kmErr := strconv.ParseFloat(p.data("km"), 64)
			if len(coords) != 1 || lineaID == "" || kmErr != nil || km < 0 {
				summary.Omitidos++
				continue
			}
			summary.Estructuras++
			pool.Submit(&models.Estructura{
				ID:               uuid.NewString(),
				LineaID:          lineaID,
				NumeroEstructura: p.Name,
				Km:               km,
				Geom:             geo.PointWKT(coords[0][0], coords[0][1]),
			})

		default:
			summary.Omitidos++
		}
	}

	pool.Stop()

	if failed := int(pool.Failed()); failed > 0 {
		slog.Warn("import finished with insert failures", "failed", failed)
		summary.Omitidos += failed
	}

	return summary, nil
}

func lineaFromPlacemark(p *Placemark, path [][]float64) *models.Linea {
	numero := catalog.ExtractNumero(p.Name)
	if numero == "" {
		numero = p.Name
	}

	clasificacion := models.Clasificacion(strings.ToUpper(p.data("clasificacion")))
	if !clasificacion.Valid() {
		clasificacion = models.ClasificacionBaja
	}

	l := &models.Linea{
		ID:            uuid.NewString(),
		Numero:        numero,
		Nombre:        p.Name,
		Clasificacion: clasificacion,
		Geom:          geo.LineStringWKT(path),
	}
	if inicio, err := strconv.ParseFloat(p.data("km_inicio"), 64); err == nil {
		l.KmInicio = &inicio
	}
	if fin, err := strconv.ParseFloat(p.data("km_fin"), 64); err == nil {
		l.KmFin = &fin
	}
	return l
}

func (im *Importer) resolveLinea(p *Placemark, byNumero map[string]string, current string) string {
	if name := p.data("linea"); name != "" {
		if numero := catalog.ExtractNumero(name); numero != "" {
			if id, ok := byNumero[numero]; ok {
				return id
			}
		}
		if id, ok := byNumero[name]; ok {
			return id
		}
	}
	return current
}
