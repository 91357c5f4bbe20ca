// Package theme loads and validates poster color themes.
//
// A theme is a flat mapping from a role name (water, road_motorway, text,
// ...) to a hex color, plus an optional display name and description. Themes
// are stored as JSON or TOML files; the built-in set is embedded in the
// binary and a user directory can add or override entries.
//
// A theme that cannot be found is not an error: [Store.Load] substitutes
// [Fallback] and reports that it did so. A theme file that exists but lacks
// a required role is an input error.
package theme

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	perrors "github.com/kronpano/city-map-poster/pkg/errors"
)

// Role names a colored element of the poster.
type Role string

// Theme roles. Every theme must define all of them.
const (
	RoleBackground      Role = "bg"
	RoleText            Role = "text"
	RoleGradient        Role = "gradient_color"
	RoleWater           Role = "water"
	RoleParks           Role = "parks"
	RoleRailway         Role = "railway"
	RoleRoadMotorway    Role = "road_motorway"
	RoleRoadPrimary     Role = "road_primary"
	RoleRoadSecondary   Role = "road_secondary"
	RoleRoadTertiary    Role = "road_tertiary"
	RoleRoadResidential Role = "road_residential"
	RoleRoadDefault     Role = "road_default"
)

// RequiredRoles lists every role a theme file must define, in display order.
var RequiredRoles = []Role{
	RoleBackground, RoleText, RoleGradient, RoleWater, RoleParks, RoleRailway,
	RoleRoadMotorway, RoleRoadPrimary, RoleRoadSecondary, RoleRoadTertiary,
	RoleRoadResidential, RoleRoadDefault,
}

// SubwayColor is the fixed accent used for subway and light rail lines.
// It is not part of any theme.
const SubwayColor = "#FF00FF"

// Theme is a validated role to color mapping.
type Theme struct {
	// ID is the file basename the theme was loaded from ("noir").
	ID          string
	Name        string
	Description string
	Colors      map[Role]string
}

// Color returns the color for role. Validated themes always have one.
func (t Theme) Color(r Role) string {
	return t.Colors[r]
}

// RGBA returns the parsed color for role, or opaque black if it is invalid.
func (t Theme) RGBA(r Role) color.NRGBA {
	c, err := ParseHex(t.Colors[r])
	if err != nil {
		return color.NRGBA{A: 0xff}
	}
	return c
}

// DisplayName returns Name, falling back to ID.
func (t Theme) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// Validate checks that every required role is present and parses as a color.
// All problems are reported together.
func (t Theme) Validate() error {
	var missing, invalid []string
	for _, r := range RequiredRoles {
		v, ok := t.Colors[r]
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, string(r))
			continue
		}
		if _, err := ParseHex(v); err != nil {
			invalid = append(invalid, fmt.Sprintf("%s=%q", r, v))
		}
	}
	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing roles: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid colors: "+strings.Join(invalid, ", "))
	}
	return perrors.New(perrors.ErrCodeInvalidTheme, "theme %q: %s", t.DisplayName(), strings.Join(parts, "; "))
}

// Format is a theme file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Parse decodes and validates a theme file. id is the file basename.
func Parse(id string, data []byte, format Format) (Theme, error) {
	raw := map[string]any{}
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return Theme{}, perrors.Wrap(perrors.ErrCodeInvalidTheme, err, "decode theme %q", id)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return Theme{}, perrors.Wrap(perrors.ErrCodeInvalidTheme, err, "decode theme %q", id)
		}
	default:
		return Theme{}, perrors.New(perrors.ErrCodeUnsupported, "unsupported theme format %q", format)
	}

	t := Theme{ID: id, Colors: make(map[Role]string, len(RequiredRoles))}
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch k {
		case "name":
			t.Name = s
		case "description":
			t.Description = s
		default:
			t.Colors[Role(k)] = strings.TrimSpace(s)
		}
	}
	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// MarshalJSON encodes the theme in the flat file layout.
func (t Theme) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(t.Colors)+2)
	if t.Name != "" {
		flat["name"] = t.Name
	}
	if t.Description != "" {
		flat["description"] = t.Description
	}
	for r, c := range t.Colors {
		flat[string(r)] = c
	}
	return json.Marshal(flat)
}

// FallbackID is the identifier of the built-in fallback theme.
const FallbackID = "feature_based"

// Fallback returns the theme used when the requested one does not exist.
func Fallback() Theme {
	return Theme{
		ID:   FallbackID,
		Name: "Feature-Based Shading",
		Colors: map[Role]string{
			RoleBackground:      "#FFFFFF",
			RoleText:            "#000000",
			RoleGradient:        "#FFFFFF",
			RoleWater:           "#C0C0C0",
			RoleParks:           "#F0F0F0",
			RoleRailway:         "#DEE200",
			RoleRoadMotorway:    "#0A0A0A",
			RoleRoadPrimary:     "#1A1A1A",
			RoleRoadSecondary:   "#2A2A2A",
			RoleRoadTertiary:    "#3A3A3A",
			RoleRoadResidential: "#4A4A4A",
			RoleRoadDefault:     "#3A3A3A",
		},
	}
}

// ParseHex parses "#RGB", "#RRGGBB" or "#RRGGBBAA".
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]}) + "ff"
	case 6:
		h += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// SortedRoles returns the roles defined by t in a stable order: required
// roles first, then any extras alphabetically.
func (t Theme) SortedRoles() []Role {
	seen := make(map[Role]bool, len(RequiredRoles))
	out := make([]Role, 0, len(t.Colors))
	for _, r := range RequiredRoles {
		if _, ok := t.Colors[r]; ok {
			out = append(out, r)
			seen[r] = true
		}
	}
	var extra []string
	for r := range t.Colors {
		if !seen[r] {
			extra = append(extra, string(r))
		}
	}
	sort.Strings(extra)
	for _, r := range extra {
		out = append(out, Role(r))
	}
	return out
}
