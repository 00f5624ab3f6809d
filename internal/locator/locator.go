// Package locator resolves a (line, km) pair to a geographic point by
// calling the compute-fault-location endpoint. The endpoint's response
// shape is not contractually fixed, so decoding runs through an ordered
// chain of accepted wire shapes.
package locator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultMessage = "El kilómetro ingresado está fuera del rango de la línea seleccionada"

// ResolutionError carries the user-facing message for a failed
// resolution. It blocks the enclosing create/update and is never
// retried automatically, and it is not routed through the auth-error
// interceptor.
type ResolutionError struct {
	Message string
}

func (e *ResolutionError) Error() string {
	return e.Message
}

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Client struct {
	endpoint string
	apiKey   string
	token    string
	http     *http.Client
}

// NewClient builds a resolver against the given endpoint URL. apiKey is
// sent on every request; it doubles as the bearer fallback when no
// session token has been set.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SetToken attaches the current session's access token.
func (c *Client) SetToken(token string) {
	c.token = token
}

// ComputeFaultLocation asks the endpoint to project km onto the line's
// path. Callers validate lineaID and km before invoking.
func (c *Client) ComputeFaultLocation(ctx context.Context, lineaID string, km float64) (Location, error) {
	body, err := json.Marshal(map[string]any{
		"lineaId": lineaID,
		"km":      km,
	})
	if err != nil {
		return Location{}, fmt.Errorf("error encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Location{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	bearer := c.token
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Location{}, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Location{}, &ResolutionError{Message: errorMessage(resp, raw)}
	}

	loc, ok := Decode(raw)
	if !ok {
		return Location{}, &ResolutionError{Message: defaultMessage}
	}
	return loc, nil
}

// errorMessage extracts the endpoint's reported error text, falling
// back to the raw body or the HTTP status.
func errorMessage(resp *http.Response, raw []byte) string {
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &payload); err == nil {
			if payload.Error != "" {
				return payload.Error
			}
			if payload.Message != "" {
				return payload.Message
			}
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode)
}
