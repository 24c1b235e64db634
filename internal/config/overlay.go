package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/track-overlay/internal/annotate"
	"github.com/banshee-data/track-overlay/internal/overlay"
	"github.com/banshee-data/track-overlay/internal/tracking"
)

// DefaultConfigPath is the path to the canonical overlay defaults file.
const DefaultConfigPath = "config/overlay.defaults.json"

// OverlayConfig holds drawing and run settings. Nil fields fall back to the
// built-in defaults through the Get* accessors, so partial files are valid.
type OverlayConfig struct {
	// Drawing
	StrokeWidth   *int     `json:"stroke_width,omitempty"`
	LabelOffset   *int     `json:"label_offset,omitempty"`
	LabelPrefix   *string  `json:"label_prefix,omitempty"`
	FontScale     *float64 `json:"font_scale,omitempty"`
	TextThickness *int     `json:"text_thickness,omitempty"`

	// Color enumeration: "ascending" or "first-seen"
	IDOrder *string `json:"id_order,omitempty"`

	// Output codec, four characters
	FourCC *string `json:"fourcc,omitempty"`

	StrictFrameIndex *bool `json:"strict_frame_index,omitempty"`
	MOTOneBased      *bool `json:"mot_one_based,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyOverlayConfig returns a config with every field unset.
func EmptyOverlayConfig() *OverlayConfig {
	return &OverlayConfig{}
}

// DefaultOverlayConfig returns a config with every field set to its default.
func DefaultOverlayConfig() *OverlayConfig {
	c := EmptyOverlayConfig()
	style := overlay.DefaultStyle()
	c.StrokeWidth = ptrInt(style.StrokeWidth)
	c.LabelOffset = ptrInt(style.LabelOffset)
	c.LabelPrefix = ptrString(style.LabelPrefix)
	c.FontScale = ptrFloat64(style.FontScale)
	c.TextThickness = ptrInt(style.TextThickness)
	c.IDOrder = ptrString(string(tracking.OrderAscending))
	c.FourCC = ptrString("mp4v")
	c.StrictFrameIndex = ptrBool(true)
	c.MOTOneBased = ptrBool(true)
	return c
}

// LoadOverlayConfig loads an OverlayConfig from a JSON file. The file must
// have a .json extension and be at most 1MB.
func LoadOverlayConfig(path string) (*OverlayConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyOverlayConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching upwards from the
// working directory. Panics if the file cannot be loaded; intended for tests.
func MustLoadDefaultConfig() *OverlayConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadOverlayConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *OverlayConfig) Validate() error {
	if c.StrokeWidth != nil && *c.StrokeWidth <= 0 {
		return fmt.Errorf("stroke_width must be positive, got %d", *c.StrokeWidth)
	}
	if c.FontScale != nil && *c.FontScale <= 0 {
		return fmt.Errorf("font_scale must be positive, got %f", *c.FontScale)
	}
	if c.TextThickness != nil && *c.TextThickness <= 0 {
		return fmt.Errorf("text_thickness must be positive, got %d", *c.TextThickness)
	}
	if c.IDOrder != nil {
		if _, err := tracking.ParseIDOrder(*c.IDOrder); err != nil {
			return err
		}
	}
	if c.FourCC != nil && len(*c.FourCC) != 4 {
		return fmt.Errorf("fourcc must be four characters, got %q", *c.FourCC)
	}
	return nil
}

// GetStrokeWidth returns stroke_width or the default.
func (c *OverlayConfig) GetStrokeWidth() int {
	if c.StrokeWidth == nil {
		return overlay.DefaultStyle().StrokeWidth
	}
	return *c.StrokeWidth
}

// GetLabelOffset returns label_offset or the default.
func (c *OverlayConfig) GetLabelOffset() int {
	if c.LabelOffset == nil {
		return overlay.DefaultStyle().LabelOffset
	}
	return *c.LabelOffset
}

// GetLabelPrefix returns label_prefix or the default.
func (c *OverlayConfig) GetLabelPrefix() string {
	if c.LabelPrefix == nil {
		return overlay.DefaultStyle().LabelPrefix
	}
	return *c.LabelPrefix
}

// GetFontScale returns font_scale or the default.
func (c *OverlayConfig) GetFontScale() float64 {
	if c.FontScale == nil {
		return overlay.DefaultStyle().FontScale
	}
	return *c.FontScale
}

// GetTextThickness returns text_thickness or the default.
func (c *OverlayConfig) GetTextThickness() int {
	if c.TextThickness == nil {
		return overlay.DefaultStyle().TextThickness
	}
	return *c.TextThickness
}

// GetIDOrder returns id_order or ascending. Values are checked by Validate.
func (c *OverlayConfig) GetIDOrder() tracking.IDOrder {
	if c.IDOrder == nil {
		return tracking.OrderAscending
	}
	order, err := tracking.ParseIDOrder(*c.IDOrder)
	if err != nil {
		return tracking.OrderAscending
	}
	return order
}

// GetFourCC returns fourcc or mp4v.
func (c *OverlayConfig) GetFourCC() string {
	if c.FourCC == nil || *c.FourCC == "" {
		return "mp4v"
	}
	return *c.FourCC
}

// GetStrictFrameIndex returns strict_frame_index or true.
func (c *OverlayConfig) GetStrictFrameIndex() bool {
	if c.StrictFrameIndex == nil {
		return true
	}
	return *c.StrictFrameIndex
}

// GetMOTOneBased returns mot_one_based or true.
func (c *OverlayConfig) GetMOTOneBased() bool {
	if c.MOTOneBased == nil {
		return true
	}
	return *c.MOTOneBased
}

// Style returns the drawing parameters.
func (c *OverlayConfig) Style() overlay.Style {
	return overlay.Style{
		StrokeWidth:   c.GetStrokeWidth(),
		LabelOffset:   c.GetLabelOffset(),
		LabelPrefix:   c.GetLabelPrefix(),
		FontScale:     c.GetFontScale(),
		TextThickness: c.GetTextThickness(),
	}
}

// PipelineConfig returns the settings for an annotate.Pipeline.
func (c *OverlayConfig) PipelineConfig() annotate.Config {
	return annotate.Config{
		Style:            c.Style(),
		IDOrder:          c.GetIDOrder(),
		StrictFrameIndex: c.GetStrictFrameIndex(),
	}
}

// LoadOptions returns the options for tracking.LoadResults.
func (c *OverlayConfig) LoadOptions() tracking.LoadOptions {
	return tracking.LoadOptions{MOTOneBased: c.GetMOTOneBased()}
}
