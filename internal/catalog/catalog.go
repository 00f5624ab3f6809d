// Package catalog holds the static technical reference table for
// subtransmission lines (fuente CENACE) plus a client-local override
// layer. Overrides are annotations kept in a local JSON file: they are
// merged onto base entries at read time, never sent anywhere, and are
// not authoritative data.
package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// Entry is one row of the technical catalog, keyed by the composite
// clave de enlace.
type Entry struct {
	ClaveEnlace    string  `json:"claveEnlace"`
	Numero         string  `json:"numero"`
	Descripcion    string  `json:"descripcion"`
	Area           string  `json:"area"`
	Tension        string  `json:"tension"`
	Kms            float64 `json:"kms"`
	NC             int     `json:"nc"`
	Conductor      string  `json:"conductor"`
	TipoEstructura string  `json:"tipoEstructura"`
	NumEstructuras int     `json:"numEstructuras"`
	Anio           int     `json:"anio"`
	Comp           string  `json:"comp"`
	CveSap         string  `json:"cveSap"`
	Brecha         float64 `json:"brecha"`
	ConfCond       string  `json:"confCond"`
	Pob            string  `json:"pob"`
	Ent            string  `json:"ent"`
}

var (
	numeroRe = regexp.MustCompile(`(\d{5})`)
	nonKeyRe = regexp.MustCompile(`[^A-Z0-9-]`)
	spacesRe = regexp.MustCompile(`\s+`)
)

func norm(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = spacesRe.ReplaceAllString(s, " ")
	return nonKeyRe.ReplaceAllString(s, "")
}

// ExtractNumero pulls the first 5-digit CENACE number out of a line
// number, name or clave, or returns "" when none is present.
func ExtractNumero(v string) string {
	m := numeroRe.FindString(v)
	return m
}

// Find fuzzy-matches a line number or clave against the catalog:
// exact normalized number match first, then exact clave match, then
// substring containment of the number within a clave. The first match
// in table order wins; no match returns nil.
func Find(numeroOrClave string) *Entry {
	if numeroOrClave == "" {
		return nil
	}

	if n := ExtractNumero(numeroOrClave); n != "" {
		nNorm := norm(n)
		for i := range Entries {
			if norm(Entries[i].Numero) == nNorm {
				return &Entries[i]
			}
		}
	}

	k := norm(numeroOrClave)
	for i := range Entries {
		if norm(Entries[i].ClaveEnlace) == k {
			return &Entries[i]
		}
	}

	if n := ExtractNumero(numeroOrClave); n != "" {
		nNorm := norm(n)
		for i := range Entries {
			if strings.Contains(norm(Entries[i].ClaveEnlace), nNorm) {
				return &Entries[i]
			}
		}
	}

	return nil
}

// FormatLines renders an entry as the labeled block used in the
// plain-text report.
func (e *Entry) FormatLines() []string {
	return []string{
		fmt.Sprintf("CLAVE ENLACE: %s", e.ClaveEnlace),
		fmt.Sprintf("DESCRIPCIÓN: %s", e.Descripcion),
		fmt.Sprintf("ÁREA: %s", e.Area),
		fmt.Sprintf("TENSIÓN: %s", e.Tension),
		fmt.Sprintf("KMS: %g", e.Kms),
		fmt.Sprintf("NC: %d", e.NC),
		fmt.Sprintf("CONDUCTOR: %s", e.Conductor),
		fmt.Sprintf("TIP. ESTRUC: %s", e.TipoEstructura),
		fmt.Sprintf("# EST: %d", e.NumEstructuras),
		fmt.Sprintf("AÑO: %d", e.Anio),
		fmt.Sprintf("COMP: %s", e.Comp),
		fmt.Sprintf("CVE SAP: %s", e.CveSap),
		fmt.Sprintf("BRECHA: %g", e.Brecha),
		fmt.Sprintf("CONF COND: %s", e.ConfCond),
		fmt.Sprintf("POB: %s", e.Pob),
		fmt.Sprintf("ENT: %s", e.Ent),
	}
}

// FormatInline renders the short one-line summary used in listings.
func (e *Entry) FormatInline() string {
	return fmt.Sprintf("%s · %s · %g km · Conductor %s · %s · SAP %s",
		e.ClaveEnlace, e.Tension, e.Kms, e.Conductor, e.ConfCond, e.CveSap)
}

// Grid returns the label/value pairs rendered as the two-column
// technical characteristics table on the PDF report.
func (e *Entry) Grid() [][2]string {
	return [][2]string{
		{"Clave enlace", e.ClaveEnlace},
		{"Descripción", e.Descripcion},
		{"Área", e.Area},
		{"Tensión", e.Tension},
		{"Kms", fmt.Sprintf("%g", e.Kms)},
		{"NC", fmt.Sprintf("%d", e.NC)},
		{"Conductor", e.Conductor},
		{"Tip. Estruc", e.TipoEstructura},
		{"# Est", fmt.Sprintf("%d", e.NumEstructuras)},
		{"Año", fmt.Sprintf("%d", e.Anio)},
		{"Comp", e.Comp},
		{"Cve SAP", e.CveSap},
		{"Brecha", fmt.Sprintf("%g", e.Brecha)},
		{"Conf. cond", e.ConfCond},
		{"Pob", e.Pob},
		{"Ent", e.Ent},
	}
}
