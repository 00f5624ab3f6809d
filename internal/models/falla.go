package models

import "time"

type Estado string

const (
	EstadoAbierta    Estado = "ABIERTA"
	EstadoEnAtencion Estado = "EN_ATENCION"
	EstadoCerrada    Estado = "CERRADA"
)

func (e Estado) Valid() bool {
	switch e {
	case EstadoAbierta, EstadoEnAtencion, EstadoCerrada:
		return true
	}
	return false
}

// Next advances the lifecycle ring: ABIERTA -> EN_ATENCION -> CERRADA -> ABIERTA.
// No skip transitions exist.
func (e Estado) Next() Estado {
	switch e {
	case EstadoAbierta:
		return EstadoEnAtencion
	case EstadoEnAtencion:
		return EstadoCerrada
	case EstadoCerrada:
		return EstadoAbierta
	}
	return e
}

// Display returns the human-readable Spanish label used on reports.
func (e Estado) Display() string {
	switch e {
	case EstadoAbierta:
		return "Abierta"
	case EstadoEnAtencion:
		return "En atención"
	case EstadoCerrada:
		return "Cerrada"
	}
	return string(e)
}

// Falla is an incident report against a line. Geom holds the computed
// point as WKT text ("POINT(lon lat)") or is empty when no location
// could be derived.
type Falla struct {
	ID           string    `json:"id"`
	LineaID      string    `json:"linea_id"`
	Km           float64   `json:"km"`
	Tipo         string    `json:"tipo"`
	Descripcion  string    `json:"descripcion"`
	Estado       Estado    `json:"estado"`
	OcurrenciaTS time.Time `json:"ocurrencia_ts"`
	Geom         string    `json:"geom,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Reporte is the export projection of a falla. It is written when a
// falla is registered and lives independently afterwards: deleting a
// reporte never touches the originating falla.
type Reporte struct {
	ID           string    `json:"id"`
	FallaID      string    `json:"falla_id,omitempty"`
	LineaID      string    `json:"linea_id"`
	Km           float64   `json:"km"`
	Tipo         string    `json:"tipo"`
	Descripcion  string    `json:"descripcion"`
	Estado       Estado    `json:"estado"`
	OcurrenciaTS time.Time `json:"ocurrencia_ts"`
	Geom         string    `json:"geom,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
