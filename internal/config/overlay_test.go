package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/track-overlay/internal/overlay"
	"github.com/banshee-data/track-overlay/internal/tracking"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestDefaultOverlayConfig(t *testing.T) {
	cfg := DefaultOverlayConfig()

	if cfg.StrokeWidth == nil || *cfg.StrokeWidth != 3 {
		t.Errorf("Expected StrokeWidth 3, got %v", cfg.StrokeWidth)
	}
	if cfg.LabelPrefix == nil || *cfg.LabelPrefix != "id_" {
		t.Errorf("Expected LabelPrefix id_, got %v", cfg.LabelPrefix)
	}
	if cfg.IDOrder == nil || *cfg.IDOrder != "ascending" {
		t.Errorf("Expected IDOrder ascending, got %v", cfg.IDOrder)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if got := cfg.Style(); got != overlay.DefaultStyle() {
		t.Errorf("Style() = %+v, want %+v", got, overlay.DefaultStyle())
	}
}

func TestEmptyConfigGetters(t *testing.T) {
	cfg := EmptyOverlayConfig()

	if cfg.GetStrokeWidth() != 3 {
		t.Errorf("GetStrokeWidth() = %d, want 3", cfg.GetStrokeWidth())
	}
	if cfg.GetLabelOffset() != 30 {
		t.Errorf("GetLabelOffset() = %d, want 30", cfg.GetLabelOffset())
	}
	if cfg.GetFontScale() != 1 {
		t.Errorf("GetFontScale() = %f, want 1", cfg.GetFontScale())
	}
	if cfg.GetTextThickness() != 3 {
		t.Errorf("GetTextThickness() = %d, want 3", cfg.GetTextThickness())
	}
	if cfg.GetIDOrder() != tracking.OrderAscending {
		t.Errorf("GetIDOrder() = %q, want ascending", cfg.GetIDOrder())
	}
	if cfg.GetFourCC() != "mp4v" {
		t.Errorf("GetFourCC() = %q, want mp4v", cfg.GetFourCC())
	}
	if !cfg.GetStrictFrameIndex() {
		t.Error("GetStrictFrameIndex() = false, want true")
	}
	if !cfg.GetMOTOneBased() {
		t.Error("GetMOTOneBased() = false, want true")
	}
}

func TestLoadOverlayConfig(t *testing.T) {
	path := writeConfig(t, "overlay.json", `{
  "stroke_width": 2,
  "label_prefix": "T",
  "id_order": "first-seen",
  "fourcc": "XVID",
  "strict_frame_index": false,
  "mot_one_based": false
}`)

	cfg, err := LoadOverlayConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetStrokeWidth() != 2 {
		t.Errorf("GetStrokeWidth() = %d, want 2", cfg.GetStrokeWidth())
	}
	// Unset fields keep their defaults.
	if cfg.GetLabelOffset() != 30 {
		t.Errorf("GetLabelOffset() = %d, want 30", cfg.GetLabelOffset())
	}
	if cfg.GetLabelPrefix() != "T" {
		t.Errorf("GetLabelPrefix() = %q, want T", cfg.GetLabelPrefix())
	}

	pc := cfg.PipelineConfig()
	if pc.IDOrder != tracking.OrderFirstSeen {
		t.Errorf("PipelineConfig().IDOrder = %q, want first-seen", pc.IDOrder)
	}
	if pc.StrictFrameIndex {
		t.Error("PipelineConfig().StrictFrameIndex = true, want false")
	}
	if pc.Style.StrokeWidth != 2 {
		t.Errorf("PipelineConfig().Style.StrokeWidth = %d, want 2", pc.Style.StrokeWidth)
	}
	if cfg.GetFourCC() != "XVID" {
		t.Errorf("GetFourCC() = %q, want XVID", cfg.GetFourCC())
	}
	if cfg.LoadOptions().MOTOneBased {
		t.Error("LoadOptions().MOTOneBased = true, want false")
	}
}

func TestLoadOverlayConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "overlay.yaml", `{}`, ".json extension"},
		{"bad json", "bad.json", `{`, "failed to parse"},
		{"zero stroke", "s.json", `{"stroke_width": 0}`, "stroke_width"},
		{"negative scale", "f.json", `{"font_scale": -1}`, "font_scale"},
		{"zero text thickness", "x.json", `{"text_thickness": 0}`, "text_thickness"},
		{"unknown order", "o.json", `{"id_order": "random"}`, "unknown id order"},
		{"long fourcc", "c.json", `{"fourcc": "h264x"}`, "fourcc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadOverlayConfig(writeConfig(t, tt.file, tt.body))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadOverlayConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOverlayConfigTooLarge(t *testing.T) {
	body := `{"label_prefix": "` + strings.Repeat("a", 1024*1024) + `"}`
	if _, err := LoadOverlayConfig(writeConfig(t, "big.json", body)); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected size error, got %v", err)
	}
}

func TestDefaultsFileMatchesBuiltins(t *testing.T) {
	fromFile := MustLoadDefaultConfig()
	builtin := DefaultOverlayConfig()

	if fromFile.Style() != builtin.Style() {
		t.Errorf("file style %+v differs from built-in %+v", fromFile.Style(), builtin.Style())
	}
	if fromFile.GetIDOrder() != builtin.GetIDOrder() {
		t.Errorf("file id_order %q differs from built-in %q", fromFile.GetIDOrder(), builtin.GetIDOrder())
	}
	if fromFile.GetFourCC() != builtin.GetFourCC() {
		t.Errorf("file fourcc %q differs from built-in %q", fromFile.GetFourCC(), builtin.GetFourCC())
	}
	if fromFile.GetStrictFrameIndex() != builtin.GetStrictFrameIndex() || fromFile.GetMOTOneBased() != builtin.GetMOTOneBased() {
		t.Error("file flags differ from built-in defaults")
	}
}
