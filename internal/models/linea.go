package models

import "time"

type Clasificacion string

const (
	ClasificacionAlta     Clasificacion = "ALTA"
	ClasificacionModerada Clasificacion = "MODERADA"
	ClasificacionBaja     Clasificacion = "BAJA"
)

func (c Clasificacion) Valid() bool {
	switch c {
	case ClasificacionAlta, ClasificacionModerada, ClasificacionBaja:
		return true
	}
	return false
}

// Linea is a subtransmission line asset. Geom holds the stored path as
// WKT text ("LINESTRING(lon lat, ...)"); it may be empty for lines
// registered before their trace was imported.
type Linea struct {
	ID            string        `json:"id"`
	Numero        string        `json:"numero"`
	Nombre        string        `json:"nombre"`
	KmInicio      *float64      `json:"km_inicio"`
	KmFin         *float64      `json:"km_fin"`
	Clasificacion Clasificacion `json:"clasificacion"`
	Geom          string        `json:"geom,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Estructura is a support structure at a kilometer offset on a line.
// Rows are produced by the KMZ import; this system never edits them.
type Estructura struct {
	ID               string    `json:"id"`
	LineaID          string    `json:"linea_id"`
	NumeroEstructura string    `json:"numero_estructura"`
	Km               float64   `json:"km"`
	Geom             string    `json:"geom,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
