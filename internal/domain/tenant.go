package domain

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPrimaryColor   = "#1e3a8a"
	DefaultSecondaryColor = "#f59e0b"
)

// Contact is the public contact block of an office.
type Contact struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Website string `json:"website,omitempty"`
}

type Tenant struct {
	ID             uuid.UUID `json:"id"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	PrimaryColor   string    `json:"primary_color"`
	SecondaryColor string    `json:"secondary_color"`
	LogoPath       string    `json:"logo_path,omitempty"`
	Contact        Contact   `json:"contact"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Theme is the color set an office page is rendered with.
type Theme struct {
	Primary     string `json:"primary"`
	Secondary   string `json:"secondary"`
	OnPrimary   string `json:"on_primary"`
	OnSecondary string `json:"on_secondary"`
}

// Theme derives the rendering colors from the tenant's color pair. Text on
// top of a color is black when the color is light and white otherwise.
func (t *Tenant) Theme() Theme {
	primary := normalizeHex(t.PrimaryColor, DefaultPrimaryColor)
	secondary := normalizeHex(t.SecondaryColor, DefaultSecondaryColor)

	return Theme{
		Primary:     primary,
		Secondary:   secondary,
		OnPrimary:   contrastText(primary),
		OnSecondary: contrastText(secondary),
	}
}

// ValidHexColor reports whether s is a "#rgb" or "#rrggbb" color.
func ValidHexColor(s string) bool {
	_, ok := parseHex(s)
	return ok
}

func normalizeHex(s, fallback string) string {
	rgb, ok := parseHex(s)
	if !ok {
		return fallback
	}
	const digits = "0123456789abcdef"
	out := []byte{'#'}
	for _, c := range rgb {
		out = append(out, digits[c>>4], digits[c&0x0f])
	}
	return string(out)
}

func parseHex(s string) ([3]uint8, bool) {
	var rgb [3]uint8
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return rgb, false
	}
	s = s[1:]
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return rgb, false
	}
	for i := range 3 {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return rgb, false
		}
		rgb[i] = uint8(v)
	}
	return rgb, true
}

// contrastText picks black or white text using sRGB relative luminance.
func contrastText(hex string) string {
	rgb, _ := parseHex(hex)
	lin := func(c uint8) float64 {
		v := float64(c) / 255
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	l := 0.2126*lin(rgb[0]) + 0.7152*lin(rgb[1]) + 0.0722*lin(rgb[2])
	if l > 0.5 {
		return "#000000"
	}
	return "#ffffff"
}

type TenantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	Update(ctx context.Context, t *Tenant) error
	List(ctx context.Context) ([]*Tenant, error)
}
