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

func (s *SQLiteDB) CreateProfile(ctx context.Context, p *models.Profile, passwordHash string) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.Role == "" {
		p.Role = models.RoleUser
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, role, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.Role, passwordHash, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting profile: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, string, error) {
	var p models.Profile
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, role, password_hash, created_at
		FROM profiles WHERE email = ?`, email).
		Scan(&p.ID, &p.Email, &p.Role, &hash, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("error scanning profile: %w", err)
	}
	return &p, hash, nil
}

func (s *SQLiteDB) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, role, created_at FROM profiles ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("error listing profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.Role, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *SQLiteDB) UpdateProfileRole(ctx context.Context, id, role string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE profiles SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return fmt.Errorf("error updating profile role: %w", err)
	}
	return requireRow(res)
}
