package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name string
		file string
		size int64
		want error
	}{
		{"plain", "photo.png", 1024, nil},
		{"underscore and hyphen", "my_photo-2.jpg", 1024, nil},
		{"no extension", "photo", 1, nil},
		{"exactly 5MiB", "big.png", MaxImageSize, nil},
		{"hangul", "사진.png", 10, ErrInvalidFileName},
		{"space", "my photo.jpg", 10, ErrInvalidFileName},
		{"empty stem", ".png", 10, ErrInvalidFileName},
		{"6MiB", "big.png", 6 * 1024 * 1024, ErrFileTooLarge},
		{"path is ignored", "/tmp/some dir/photo.png", 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateImage(tt.file, tt.size)
			if !errors.Is(got, tt.want) {
				t.Errorf("ValidateImage(%q, %d): got %v, want %v", tt.file, tt.size, got, tt.want)
			}
		})
	}
}

func TestImageStem(t *testing.T) {
	if got := ImageStem("a.b.c"); got != "a" {
		t.Errorf("ImageStem(a.b.c) = %q, want a", got)
	}
}

func TestReadImage(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, size int) string {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, make([]byte, size), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	name, data, err := ReadImage(write("cat.png", 16))
	if err != nil || name != "cat.png" || len(data) != 16 {
		t.Fatalf("got %q, %d bytes, %v", name, len(data), err)
	}
	if _, _, err := ReadImage(write("exact.png", MaxImageSize)); err != nil {
		t.Fatalf("exactly MaxImageSize: %v", err)
	}
	if _, _, err := ReadImage(write("big.png", MaxImageSize+1)); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("oversized: got %v", err)
	}
	if _, _, err := ReadImage(filepath.Join(dir, "my photo.png")); !errors.Is(err, ErrInvalidFileName) {
		t.Fatalf("bad name must fail before opening: got %v", err)
	}
	if _, _, err := ReadImage(filepath.Join(dir, "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing: got %v", err)
	}
	sub := filepath.Join(dir, "folder")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadImage(sub); err == nil {
		t.Fatalf("directory should be rejected")
	}
}
