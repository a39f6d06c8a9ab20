package render

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrTheme marks a missing or malformed theme file
var ErrTheme = errors.New("theme asset error")

// Color is an RGBA color read from "#RRGGBB" or "#RRGGBBAA"
type Color color.RGBA

// RGBA implements color.Color
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA(c).RGBA()
}

// UnmarshalYAML parses a hex color string
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseHex(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseHex parses "#RRGGBB" or "#RRGGBBAA"
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func rgb(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

// Theme holds the card palette and fixed texts
type Theme struct {
	Background Color `yaml:"background"`
	Card       Color `yaml:"card"`
	Chip       Color `yaml:"chip"`
	Border     Color `yaml:"border"`
	Accent     Color `yaml:"accent"`
	Text       Color `yaml:"text"`
	Muted      Color `yaml:"muted"`
	Hot        Color `yaml:"hot"`
	Separator  Color `yaml:"separator"`

	Title       string `yaml:"title"`
	FooterTitle string `yaml:"footer_title"`
	FooterNote  string `yaml:"footer_note"`
	Placeholder string `yaml:"placeholder"`
}

// DefaultTheme returns the dark Stat Trick palette
func DefaultTheme() Theme {
	return Theme{
		Background: rgb(11, 15, 20),
		Card:       rgb(16, 24, 36),
		Chip:       rgb(18, 28, 42),
		Border:     rgb(35, 52, 72),
		Accent:     rgb(59, 214, 198),
		Text:       rgb(234, 242, 255),
		Muted:      rgb(156, 170, 190),
		Hot:        rgb(255, 107, 107),
		Separator:  rgb(40, 55, 75),

		Title:       "NHL Schedule Pressure",
		FooterTitle: "Fatigue Watch",
		FooterNote:  "Slower legs late | Transition gaps | Late penalties",
		Placeholder: "--",
	}
}

// LoadTheme reads a YAML theme file over the defaults.
// An empty path returns DefaultTheme.
func LoadTheme(path string) (Theme, error) {
	theme := DefaultTheme()
	if path == "" {
		return theme, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return theme, fmt.Errorf("%w: failed to read theme: %w", ErrTheme, err)
	}
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return theme, fmt.Errorf("%w: failed to parse theme %s: %w", ErrTheme, path, err)
	}
	return theme, nil
}
