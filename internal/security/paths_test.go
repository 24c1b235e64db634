package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateOutputPath(t *testing.T) {
	root := t.TempDir()
	video := filepath.Join(root, "clip.mp4")
	if err := os.WriteFile(video, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	frames := filepath.Join(root, "frames")
	if err := os.MkdirAll(frames, 0755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "link.mp4")
	if err := os.Symlink(video, link); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		input   string
		output  string
		wantErr bool
	}{
		{"separate files", video, filepath.Join(root, "out.mp4"), false},
		{"sibling directory", frames, filepath.Join(root, "frames_out"), false},
		{"same file", video, video, true},
		{"same file via dot segments", video, filepath.Join(root, "x", "..", "clip.mp4"), true},
		{"symlink to input", video, link, true},
		{"inside input directory", frames, filepath.Join(frames, "out"), true},
		{"parent of input", frames, root, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input, tt.output)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q, %q) error = %v, wantErr %v", tt.input, tt.output, err, tt.wantErr)
			}
		})
	}
}

func TestCanonicalPathMissing(t *testing.T) {
	root := t.TempDir()
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatal(err)
	}
	got, err := CanonicalPath(filepath.Join(root, "a", "b.mp4"))
	if err != nil {
		t.Fatalf("CanonicalPath() error = %v", err)
	}
	if want := filepath.Join(resolvedRoot, "a", "b.mp4"); got != want {
		t.Errorf("CanonicalPath() = %q, want %q", got, want)
	}
}

func TestIsWithin(t *testing.T) {
	sep := string(filepath.Separator)
	if !IsWithin(sep+filepath.Join("a", "b"), sep+"a") {
		t.Error("expected /a/b within /a")
	}
	if IsWithin(sep+"ab", sep+"a") {
		t.Error("/ab is not within /a")
	}
}
