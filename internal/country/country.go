// File: internal/country/country.go
package country

import (
	"strings"

	"github.com/gosimple/slug"
)

// AllCountries is the upload target visible to every client.
const AllCountries = "ALL"

// Country is one ECOWAS member state. Code is the lower-case route segment.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var members = []Country{
	{Code: "bj", Name: "Benin"},
	{Code: "bf", Name: "Burkina Faso"},
	{Code: "cv", Name: "Cabo Verde"},
	{Code: "ci", Name: "Côte d'Ivoire"},
	{Code: "gm", Name: "The Gambia"},
	{Code: "gh", Name: "Ghana"},
	{Code: "gn", Name: "Guinea"},
	{Code: "gw", Name: "Guinea-Bissau"},
	{Code: "lr", Name: "Liberia"},
	{Code: "ml", Name: "Mali"},
	{Code: "ne", Name: "Niger"},
	{Code: "ng", Name: "Nigeria"},
	{Code: "sn", Name: "Senegal"},
	{Code: "sl", Name: "Sierra Leone"},
	{Code: "tg", Name: "Togo"},
}

// aliases found in source datasets, keyed by slug.
var aliases = map[string]string{
	"cape-verde":        "cv",
	"cote-divoire":      "ci",
	"cote-d-ivoire":     "ci",
	"ivory-coast":       "ci",
	"gambia":            "gm",
	"the-gambia":        "gm",
	"guinea-bissau":     "gw",
	"guinee":            "gn",
	"guinea-conakry":    "gn",
	"burkina":           "bf",
	"republic-of-benin": "bj",
}

var (
	byCode = make(map[string]Country, len(members))
	bySlug = make(map[string]Country, len(members)+len(aliases))
)

func init() {
	for _, c := range members {
		byCode[c.Code] = c
		bySlug[slug.Make(c.Name)] = c
	}
	for alias, code := range aliases {
		bySlug[alias] = byCode[code]
	}
}

// Lookup resolves a country code or name, case-insensitively.
func Lookup(s string) (Country, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Country{}, false
	}
	if c, ok := byCode[strings.ToLower(s)]; ok {
		return c, true
	}
	c, ok := bySlug[slug.Make(s)]
	return c, ok
}

// Valid reports whether code is a member state code.
func Valid(code string) bool {
	_, ok := byCode[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

// Normalize returns the canonical lower-case code, or "" when s is not a member.
func Normalize(s string) string {
	c, ok := Lookup(s)
	if !ok {
		return ""
	}
	return c.Code
}

// Same reports whether a and b name the same member state.
// Unknown values compare case-insensitively as raw strings.
func Same(a, b string) bool {
	ca, okA := Lookup(a)
	cb, okB := Lookup(b)
	if okA && okB {
		return ca.Code == cb.Code
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// All returns the member states in registry order.
func All() []Country {
	out := make([]Country, len(members))
	copy(out, members)
	return out
}

// Codes returns the member state codes in registry order.
func Codes() []string {
	out := make([]string, 0, len(members))
	for _, c := range members {
		out = append(out, c.Code)
	}
	return out
}
