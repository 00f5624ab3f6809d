package store

import (
	"context"
	"errors"
	"time"

	"github.com/linergy/subtrans-ops/internal/models"
)

var ErrNotFound = errors.New("registro no encontrado")

// FallaFilter narrows falla and reporte listings.
type FallaFilter struct {
	LineaID *string
	Estado  *models.Estado
	Since   *time.Time
	Limit   int
}

// FallaUpdate is a partial update; nil fields are left untouched.
// Geometry is deliberately absent: it is only written through
// UpdateFallaGeom, the trusted server-side path.
type FallaUpdate struct {
	LineaID      *string
	Km           *float64
	Tipo         *string
	Descripcion  *string
	Estado       *models.Estado
	OcurrenciaTS *time.Time
}

type LineaRepository interface {
	CreateLinea(ctx context.Context, l *models.Linea) error
	GetLinea(ctx context.Context, id string) (*models.Linea, error)
	ListLineas(ctx context.Context) ([]models.Linea, error)
	UpdateLinea(ctx context.Context, l *models.Linea) error
	DeleteLinea(ctx context.Context, id string) error
}

type EstructuraRepository interface {
	AddEstructura(ctx context.Context, e *models.Estructura) error
	ListEstructuras(ctx context.Context, lineaID string) ([]models.Estructura, error)
}

type FallaRepository interface {
	// InsertFallaWithWKT inserts the falla row and its reporte
	// projection in one transaction.
	InsertFallaWithWKT(ctx context.Context, f *models.Falla) error
	GetFalla(ctx context.Context, id string) (*models.Falla, error)
	ListFallas(ctx context.Context, filter FallaFilter) ([]models.Falla, error)
	UpdateFalla(ctx context.Context, id string, upd FallaUpdate) (*models.Falla, error)
	UpdateFallaGeom(ctx context.Context, id, wkt string) error
	SetFallaEstado(ctx context.Context, id string, estado models.Estado) (*models.Falla, error)
	DeleteFalla(ctx context.Context, id string) error
}

type ReporteRepository interface {
	ListReportes(ctx context.Context, filter FallaFilter) ([]models.Reporte, error)
	DeleteReporte(ctx context.Context, id string) error
}

type ProfileRepository interface {
	CreateProfile(ctx context.Context, p *models.Profile, passwordHash string) error
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, string, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	UpdateProfileRole(ctx context.Context, id, role string) error
}

// Store is the full persistence surface the API needs.
type Store interface {
	LineaRepository
	EstructuraRepository
	FallaRepository
	ReporteRepository
	ProfileRepository
}
