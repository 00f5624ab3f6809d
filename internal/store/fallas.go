package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linergy/subtrans-ops/internal/models"
)

// InsertFallaWithWKT is the transactional insert the registration flow
// calls: the falla row plus its reporte projection, committed together.
// The caller supplies the computed geometry as WKT; estado defaults to
// ABIERTA.
func (s *SQLiteDB) InsertFallaWithWKT(ctx context.Context, f *models.Falla) error {
	now := time.Now()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Estado == "" {
		f.Estado = models.EstadoAbierta
	}
	f.CreatedAt = now
	f.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO fallas (id, linea_id, km, tipo, descripcion, estado, ocurrencia_ts, geom, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.LineaID, f.Km, f.Tipo, f.Descripcion, string(f.Estado), f.OcurrenciaTS, f.Geom, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting falla: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reportes (id, falla_id, linea_id, km, tipo, descripcion, estado, ocurrencia_ts, geom, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), f.ID, f.LineaID, f.Km, f.Tipo, f.Descripcion, string(f.Estado), f.OcurrenciaTS, f.Geom, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting reporte projection: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteDB) GetFalla(ctx context.Context, id string) (*models.Falla, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, linea_id, km, tipo, descripcion, estado, ocurrencia_ts, geom, created_at, updated_at
		FROM fallas WHERE id = ?`, id)
	return scanFalla(row)
}

func (s *SQLiteDB) ListFallas(ctx context.Context, filter FallaFilter) ([]models.Falla, error) {
	query := `
		SELECT id, linea_id, km, tipo, descripcion, estado, ocurrencia_ts, geom, created_at, updated_at
		FROM fallas`
	where, args := fallaWhere(filter)
	query += where + ` ORDER BY ocurrencia_ts DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing fallas: %w", err)
	}
	defer rows.Close()

	var fallas []models.Falla
	for rows.Next() {
		f, err := scanFalla(rows)
		if err != nil {
			return nil, err
		}
		fallas = append(fallas, *f)
	}
	return fallas, rows.Err()
}

func (s *SQLiteDB) UpdateFalla(ctx context.Context, id string, upd FallaUpdate) (*models.Falla, error) {
	sets := []string{}
	args := []any{}

	if upd.LineaID != nil {
		sets = append(sets, "linea_id = ?")
		args = append(args, *upd.LineaID)
	}
	if upd.Km != nil {
		sets = append(sets, "km = ?")
		args = append(args, *upd.Km)
	}
	if upd.Tipo != nil {
		sets = append(sets, "tipo = ?")
		args = append(args, *upd.Tipo)
	}
	if upd.Descripcion != nil {
		sets = append(sets, "descripcion = ?")
		args = append(args, *upd.Descripcion)
	}
	if upd.Estado != nil {
		sets = append(sets, "estado = ?")
		args = append(args, string(*upd.Estado))
	}
	if upd.OcurrenciaTS != nil {
		sets = append(sets, "ocurrencia_ts = ?")
		args = append(args, *upd.OcurrenciaTS)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = ?")
		args = append(args, time.Now())
		args = append(args, id)

		res, err := s.db.ExecContext(ctx,
			`UPDATE fallas SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return nil, fmt.Errorf("error updating falla: %w", err)
		}
		if err := requireRow(res); err != nil {
			return nil, err
		}
	}

	return s.GetFalla(ctx, id)
}

// UpdateFallaGeom is the only write path for falla geometry.
func (s *SQLiteDB) UpdateFallaGeom(ctx context.Context, id, wkt string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE fallas SET geom = ?, updated_at = ? WHERE id = ?`, wkt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error updating falla geom: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteDB) SetFallaEstado(ctx context.Context, id string, estado models.Estado) (*models.Falla, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE fallas SET estado = ?, updated_at = ? WHERE id = ?`, string(estado), time.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("error setting falla estado: %w", err)
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.GetFalla(ctx, id)
}

func (s *SQLiteDB) DeleteFalla(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fallas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting falla: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteDB) ListReportes(ctx context.Context, filter FallaFilter) ([]models.Reporte, error) {
	query := `
		SELECT id, falla_id, linea_id, km, tipo, descripcion, estado, ocurrencia_ts, geom, created_at, updated_at
		FROM reportes`
	where, args := fallaWhere(filter)
	query += where + ` ORDER BY ocurrencia_ts DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing reportes: %w", err)
	}
	defer rows.Close()

	var reportes []models.Reporte
	for rows.Next() {
		var r models.Reporte
		var fallaID, descripcion, geom sql.NullString
		var estado string
		if err := rows.Scan(&r.ID, &fallaID, &r.LineaID, &r.Km, &r.Tipo, &descripcion, &estado,
			&r.OcurrenciaTS, &geom, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning reporte: %w", err)
		}
		r.FallaID = fallaID.String
		r.Descripcion = descripcion.String
		r.Geom = geom.String
		r.Estado = models.Estado(estado)
		reportes = append(reportes, r)
	}
	return reportes, rows.Err()
}

func (s *SQLiteDB) DeleteReporte(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reportes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting reporte: %w", err)
	}
	return requireRow(res)
}

func fallaWhere(filter FallaFilter) (string, []any) {
	conds := []string{}
	args := []any{}
	if filter.LineaID != nil {
		conds = append(conds, "linea_id = ?")
		args = append(args, *filter.LineaID)
	}
	if filter.Estado != nil {
		conds = append(conds, "estado = ?")
		args = append(args, string(*filter.Estado))
	}
	if filter.Since != nil {
		conds = append(conds, "ocurrencia_ts >= ?")
		args = append(args, *filter.Since)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanFalla(row rowScanner) (*models.Falla, error) {
	var f models.Falla
	var descripcion, geom sql.NullString
	var estado string

	err := row.Scan(&f.ID, &f.LineaID, &f.Km, &f.Tipo, &descripcion, &estado,
		&f.OcurrenciaTS, &geom, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning falla: %w", err)
	}

	f.Descripcion = descripcion.String
	f.Geom = geom.String
	f.Estado = models.Estado(estado)
	return &f, nil
}
