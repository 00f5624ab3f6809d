package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/linergy/subtrans-ops/internal/models"
)

func (s *SQLiteDB) CreateLinea(ctx context.Context, l *models.Linea) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lineas (id, numero, nombre, km_inicio, km_fin, clasificacion, geom, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Numero, l.Nombre, nullFloat(l.KmInicio), nullFloat(l.KmFin),
		string(l.Clasificacion), l.Geom, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting linea: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetLinea(ctx context.Context, id string) (*models.Linea, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, numero, nombre, km_inicio, km_fin, clasificacion, geom, created_at, updated_at
		FROM lineas WHERE id = ?`, id)
	return scanLinea(row)
}

func (s *SQLiteDB) ListLineas(ctx context.Context) ([]models.Linea, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, numero, nombre, km_inicio, km_fin, clasificacion, geom, created_at, updated_at
		FROM lineas ORDER BY numero`)
	if err != nil {
		return nil, fmt.Errorf("error listing lineas: %w", err)
	}
	defer rows.Close()

	var lineas []models.Linea
	for rows.Next() {
		l, err := scanLinea(rows)
		if err != nil {
			return nil, err
		}
		lineas = append(lineas, *l)
	}
	return lineas, rows.Err()
}

func (s *SQLiteDB) UpdateLinea(ctx context.Context, l *models.Linea) error {
	l.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE lineas
		SET numero = ?, nombre = ?, km_inicio = ?, km_fin = ?, clasificacion = ?, geom = ?, updated_at = ?
		WHERE id = ?`,
		l.Numero, l.Nombre, nullFloat(l.KmInicio), nullFloat(l.KmFin),
		string(l.Clasificacion), l.Geom, l.UpdatedAt, l.ID)
	if err != nil {
		return fmt.Errorf("error updating linea: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteDB) DeleteLinea(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lineas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting linea: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteDB) AddEstructura(ctx context.Context, e *models.Estructura) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO estructuras (id, linea_id, numero_estructura, km, geom, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.LineaID, e.NumeroEstructura, e.Km, e.Geom, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting estructura: %w", err)
	}
	return nil
}

func (s *SQLiteDB) ListEstructuras(ctx context.Context, lineaID string) ([]models.Estructura, error) {
	query := `
		SELECT id, linea_id, numero_estructura, km, geom, created_at, updated_at
		FROM estructuras`
	args := []any{}
	if lineaID != "" {
		query += ` WHERE linea_id = ?`
		args = append(args, lineaID)
	}
	query += ` ORDER BY linea_id, km`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing estructuras: %w", err)
	}
	defer rows.Close()

	var estructuras []models.Estructura
	for rows.Next() {
		var e models.Estructura
		var geom sql.NullString
		if err := rows.Scan(&e.ID, &e.LineaID, &e.NumeroEstructura, &e.Km, &geom, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning estructura: %w", err)
		}
		e.Geom = geom.String
		estructuras = append(estructuras, e)
	}
	return estructuras, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLinea(row rowScanner) (*models.Linea, error) {
	var l models.Linea
	var nombre, geom sql.NullString
	var kmInicio, kmFin sql.NullFloat64
	var clasificacion string

	err := row.Scan(&l.ID, &l.Numero, &nombre, &kmInicio, &kmFin, &clasificacion, &geom, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning linea: %w", err)
	}

	l.Nombre = nombre.String
	l.Geom = geom.String
	l.Clasificacion = models.Clasificacion(clasificacion)
	if kmInicio.Valid {
		l.KmInicio = &kmInicio.Float64
	}
	if kmFin.Valid {
		l.KmFin = &kmFin.Float64
	}
	return &l, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
