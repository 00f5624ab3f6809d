// Package urlstate encodes the shareable map view snapshot carried in
// the "state" query parameter: filters, viewport and an optional
// focused line or fault. Blobs are base64url without padding; older
// links carry Spanish field aliases.
package urlstate

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

type Vista struct {
	Center [2]float64 `json:"center"`
	Zoom   float64    `json:"zoom"`
}

type Filtros struct {
	Estado        string `json:"estado,omitempty"`
	Clasificacion string `json:"clasificacion,omitempty"`
	Busqueda      string `json:"busqueda,omitempty"`
}

type State struct {
	Filtros *Filtros `json:"filtros,omitempty"`
	Vista   *Vista   `json:"vista,omitempty"`
	FaultID string   `json:"faultId,omitempty"`
	LineID  string   `json:"lineId,omitempty"`

	// Legacy aliases kept for old share links.
	FallaID string `json:"fallaId,omitempty"`
	LineaID string `json:"lineaId,omitempty"`
}

// Fault returns the focused fault id, preferring the current field
// name over the legacy alias.
func (s *State) Fault() string {
	if s.FaultID != "" {
		return s.FaultID
	}
	return s.FallaID
}

// Line returns the focused line id, preferring the current field name
// over the legacy alias.
func (s *State) Line() string {
	if s.LineID != "" {
		return s.LineID
	}
	return s.LineaID
}

// Encode serializes a state blob for a share link.
func Encode(s *State) string {
	raw, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses a state blob. Malformed base64 or JSON decodes to nil;
// a bad share link must never break the page that receives it.
func Decode(param string) *State {
	if param == "" {
		return nil
	}

	normalized := strings.NewReplacer("-", "+", "_", "/").Replace(param)
	if pad := len(normalized) % 4; pad != 0 {
		normalized += strings.Repeat("=", 4-pad)
	}

	raw, err := base64.StdEncoding.DecodeString(normalized)
	if err != nil {
		return nil
	}

	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}
