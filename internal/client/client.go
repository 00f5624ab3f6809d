// Package client wraps the dashboard API for programmatic callers (the
// KMZ import CLI and tests). Every remote failure except a location
// resolution error is inspected for expired-session signatures; when one
// matches, the injected sign-out callback runs before the error is
// returned.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/linergy/subtrans-ops/internal/auth"
	"github.com/linergy/subtrans-ops/internal/geo"
	"github.com/linergy/subtrans-ops/internal/importer"
	"github.com/linergy/subtrans-ops/internal/locator"
	"github.com/linergy/subtrans-ops/internal/models"
)

type Resolver interface {
	ComputeFaultLocation(ctx context.Context, lineaID string, km float64) (locator.Location, error)
	SetToken(token string)
}

type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	resolver Resolver

	// signOut runs when a remote call fails with a session-expiry
	// signature. Optional.
	signOut func()
}

func New(baseURL string, resolver Resolver, signOut func()) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		resolver: resolver,
		signOut:  signOut,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateFallaInput is everything the registration form captures.
type CreateFallaInput struct {
	LineaID      string
	Km           float64
	Tipo         string
	Descripcion  string
	OcurrenciaTS time.Time
}

type loginResponse struct {
	Token string         `json:"token"`
	User  models.Profile `json:"user"`
}

// Login authenticates and stores the session token for subsequent
// calls, including the location resolver's.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Profile, error) {
	var out loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	if c.resolver != nil {
		c.resolver.SetToken(out.Token)
	}
	return &out.User, nil
}

// CreateFallaResult is what the registration flow hands back for
// display: the stored record, the resolved point, and the line it
// belongs to (nil when the line could not be fetched afterwards).
type CreateFallaResult struct {
	Falla    *models.Falla
	Location locator.Location
	Linea    *models.Linea
}

// CreateFalla validates the input, resolves the geographic point for
// (linea, km), and registers the falla through the transactional insert
// RPC. A failed resolution aborts before anything is written.
func (c *Client) CreateFalla(ctx context.Context, in CreateFallaInput) (*CreateFallaResult, error) {
	if in.LineaID == "" {
		return nil, errors.New("selecciona una línea")
	}
	if in.Km < 0 {
		return nil, errors.New("el kilómetro debe ser mayor o igual a cero")
	}
	if strings.TrimSpace(in.Tipo) == "" {
		return nil, errors.New("selecciona el tipo de falla")
	}

	loc, err := c.resolver.ComputeFaultLocation(ctx, in.LineaID, in.Km)
	if err != nil {
		var resErr *locator.ResolutionError
		if errors.As(err, &resErr) {
			return nil, resErr
		}
		return nil, c.intercept(err)
	}

	ts := in.OcurrenciaTS
	if ts.IsZero() {
		ts = time.Now()
	}

	var out models.Falla
	err = c.do(ctx, http.MethodPost, "/api/rpc/insert_falla_with_wkt", map[string]any{
		"linea_id":      in.LineaID,
		"km":            in.Km,
		"tipo":          in.Tipo,
		"descripcion":   in.Descripcion,
		"ocurrencia_ts": ts,
		"geom_wkt":      geo.PointWKT(loc.Lon, loc.Lat),
	}, &out)
	if err != nil {
		return nil, err
	}

	// The line is fetched for the confirmation view; the create has
	// already succeeded, so a fetch failure only leaves it nil.
	linea, err := c.GetLinea(ctx, out.LineaID)
	if err != nil {
		linea = nil
	}
	return &CreateFallaResult{Falla: &out, Location: loc, Linea: linea}, nil
}

func (c *Client) GetLinea(ctx context.Context, id string) (*models.Linea, error) {
	var out models.Linea
	if err := c.do(ctx, http.MethodGet, "/api/lineas/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateFallaInput is a partial update; nil fields are untouched.
type UpdateFallaInput struct {
	LineaID      *string    `json:"linea_id,omitempty"`
	Km           *float64   `json:"km,omitempty"`
	Tipo         *string    `json:"tipo,omitempty"`
	Descripcion  *string    `json:"descripcion,omitempty"`
	OcurrenciaTS *time.Time `json:"ocurrencia_ts,omitempty"`
}

// UpdateFalla applies the partial update, then re-resolves and rewrites
// the stored point when both the line and the kilometer were supplied.
// A resolution failure after a successful field update leaves the
// geometry as it was.
func (c *Client) UpdateFalla(ctx context.Context, id string, in UpdateFallaInput) (*models.Falla, error) {
	if in.Km != nil && *in.Km < 0 {
		return nil, errors.New("el kilómetro debe ser mayor o igual a cero")
	}

	var updated models.Falla
	if err := c.do(ctx, http.MethodPatch, "/api/fallas/"+id, in, &updated); err != nil {
		return nil, err
	}

	if in.LineaID == nil || in.Km == nil {
		return &updated, nil
	}

	loc, err := c.resolver.ComputeFaultLocation(ctx, updated.LineaID, updated.Km)
	if err != nil {
		var resErr *locator.ResolutionError
		if errors.As(err, &resErr) {
			return nil, resErr
		}
		return nil, c.intercept(err)
	}

	wkt := geo.PointWKT(loc.Lon, loc.Lat)
	err = c.do(ctx, http.MethodPost, "/api/rpc/update_falla_geom", map[string]any{
		"id":       id,
		"geom_wkt": wkt,
	}, nil)
	if err != nil {
		return nil, err
	}
	updated.Geom = wkt
	return &updated, nil
}

func (c *Client) DeleteFalla(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/fallas/"+id, nil, nil)
}

func (c *Client) DeleteReporte(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/reportes/"+id, nil, nil)
}

// SetFallaEstado moves the falla to the given estado. Callers typically
// pass models.Estado.Next() of the current value.
func (c *Client) SetFallaEstado(ctx context.Context, id string, estado models.Estado) (*models.Falla, error) {
	if !estado.Valid() {
		return nil, fmt.Errorf("estado desconocido: %s", estado)
	}
	var out models.Falla
	err := c.do(ctx, http.MethodPost, "/api/fallas/"+id+"/estado", map[string]string{
		"estado": string(estado),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListLineas(ctx context.Context) ([]models.Linea, error) {
	var out []models.Linea
	if err := c.do(ctx, http.MethodGet, "/api/lineas", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetFalla(ctx context.Context, id string) (*models.Falla, error) {
	var out models.Falla
	if err := c.do(ctx, http.MethodGet, "/api/fallas/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ImportKMZ streams the archive to the import endpoint and returns the
// server's summary.
func (c *Client) ImportKMZ(ctx context.Context, filename string, kmz io.Reader) (*importer.Summary, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("error building form: %w", err)
	}
	if _, err := io.Copy(part, kmz); err != nil {
		return nil, fmt.Errorf("error reading archive: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("error closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/functions/v1/import-kmz", &body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.intercept(apiError(resp.StatusCode, raw))
	}

	var summary importer.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("error decoding summary: %w", err)
	}
	return &summary, nil
}

// do runs one JSON request/response round trip against the API.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error encoding request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.intercept(apiError(resp.StatusCode, raw))
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}
	return nil
}

// intercept checks err against the expired-session signatures and runs
// the sign-out callback on a match. The error is returned either way.
func (c *Client) intercept(err error) error {
	if err != nil && auth.IsAuthError(err) && c.signOut != nil {
		c.signOut()
	}
	return err
}

func apiError(status int, raw []byte) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Error != "" {
			return errors.New(payload.Error)
		}
		if payload.Message != "" {
			return errors.New(payload.Message)
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return errors.New(text)
	}
	return fmt.Errorf("HTTP %d", status)
}
