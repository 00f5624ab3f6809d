package catalog

import (
	"encoding/json"
	"os"
)

// Overrides is the local annotation layer: per-clave partial entries
// kept in a JSON file on this machine only. A missing or corrupt file
// reads as no overrides; this data is lost if the file is removed and
// is never treated as a source of truth.
type Overrides map[string]map[string]any

// LoadOverrides reads the override file. All failure modes degrade to
// an empty map.
func LoadOverrides(path string) Overrides {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}
	}
	var ov Overrides
	if err := json.Unmarshal(raw, &ov); err != nil || ov == nil {
		return Overrides{}
	}
	return ov
}

// Save writes the override file.
func (ov Overrides) Save(path string) error {
	raw, err := json.MarshalIndent(ov, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// Set records a partial override for a clave, replacing any previous
// annotation for the same fields.
func (ov Overrides) Set(clave string, fields map[string]any) {
	cur := ov[clave]
	if cur == nil {
		cur = map[string]any{}
	}
	for k, v := range fields {
		cur[k] = v
	}
	ov[clave] = cur
}

// Apply shallow-merges the override for the entry's clave onto a copy
// of the entry. The base table is never mutated.
func (ov Overrides) Apply(e *Entry) *Entry {
	if e == nil {
		return nil
	}
	fields, ok := ov[e.ClaveEnlace]
	if !ok || len(fields) == 0 {
		return e
	}

	base, err := json.Marshal(e)
	if err != nil {
		return e
	}
	var m map[string]any
	if err := json.Unmarshal(base, &m); err != nil {
		return e
	}
	for k, v := range fields {
		m[k] = v
	}
	merged, err := json.Marshal(m)
	if err != nil {
		return e
	}
	out := *e
	if err := json.Unmarshal(merged, &out); err != nil {
		return e
	}
	return &out
}
