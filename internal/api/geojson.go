package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linergy/subtrans-ops/internal/geo"
	"github.com/linergy/subtrans-ops/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   *geo.Geometry  `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

func feature(wkt string, props map[string]any) (Feature, bool) {
	g := geo.ParseGeometry(wkt)
	if g == nil {
		return Feature{}, false
	}
	return Feature{Type: "Feature", Geometry: g, Properties: props}, true
}

func collection(features []Feature) FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

func (h *Handler) lineasGeoJSON(c *gin.Context) {
	lineas, err := h.store.ListLineas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch lineas"})
		return
	}

	features := make([]Feature, 0, len(lineas))
	for _, l := range lineas {
		f, ok := feature(l.Geom, map[string]any{
			"id":            l.ID,
			"numero":        l.Numero,
			"nombre":        l.Nombre,
			"clasificacion": l.Clasificacion,
			"km_inicio":     l.KmInicio,
			"km_fin":        l.KmFin,
		})
		if !ok {
			continue
		}
		features = append(features, f)
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, collection(features))
}

func (h *Handler) estructurasGeoJSON(c *gin.Context) {
	estructuras, err := h.store.ListEstructuras(c.Request.Context(), c.Query("linea_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch estructuras"})
		return
	}

	features := make([]Feature, 0, len(estructuras))
	for _, e := range estructuras {
		f, ok := feature(e.Geom, map[string]any{
			"id":                e.ID,
			"linea_id":          e.LineaID,
			"numero_estructura": e.NumeroEstructura,
			"km":                e.Km,
		})
		if !ok {
			continue
		}
		features = append(features, f)
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, collection(features))
}

func (h *Handler) fallasGeoJSON(c *gin.Context) {
	fallas, err := h.store.ListFallas(c.Request.Context(), h.fallaFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch fallas"})
		return
	}

	features := make([]Feature, 0, len(fallas))
	for _, fa := range fallas {
		f, ok := feature(fa.Geom, fallaProps(&fa))
		if !ok {
			continue
		}
		features = append(features, f)
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, collection(features))
}

func fallaProps(f *models.Falla) map[string]any {
	return map[string]any{
		"id":            f.ID,
		"linea_id":      f.LineaID,
		"km":            f.Km,
		"tipo":          f.Tipo,
		"estado":        f.Estado,
		"ocurrencia_ts": f.OcurrenciaTS,
	}
}
