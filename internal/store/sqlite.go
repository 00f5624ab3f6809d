package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS lineas (
			id TEXT PRIMARY KEY,
			numero TEXT NOT NULL,
			nombre TEXT,
			km_inicio REAL,
			km_fin REAL,
			clasificacion TEXT NOT NULL,
			geom TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS estructuras (
			id TEXT PRIMARY KEY,
			linea_id TEXT NOT NULL,
			numero_estructura TEXT NOT NULL,
			km REAL NOT NULL,
			geom TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (linea_id) REFERENCES lineas(id)
		);

		CREATE TABLE IF NOT EXISTS fallas (
			id TEXT PRIMARY KEY,
			linea_id TEXT NOT NULL,
			km REAL NOT NULL,
			tipo TEXT NOT NULL,
			descripcion TEXT,
			estado TEXT NOT NULL,
			ocurrencia_ts DATETIME NOT NULL,
			geom TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (linea_id) REFERENCES lineas(id)
		);

		CREATE TABLE IF NOT EXISTS reportes (
			id TEXT PRIMARY KEY,
			falla_id TEXT,
			linea_id TEXT NOT NULL,
			km REAL NOT NULL,
			tipo TEXT NOT NULL,
			descripcion TEXT,
			estado TEXT NOT NULL,
			ocurrencia_ts DATETIME NOT NULL,
			geom TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_estructuras_linea_id ON estructuras(linea_id);
		CREATE INDEX IF NOT EXISTS idx_fallas_linea_id ON fallas(linea_id);
		CREATE INDEX IF NOT EXISTS idx_fallas_estado ON fallas(estado);
		CREATE INDEX IF NOT EXISTS idx_reportes_linea_id ON reportes(linea_id);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
