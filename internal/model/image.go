package model

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxImageSize is the largest image the server accepts (5 MiB).
const MaxImageSize = 5 * 1024 * 1024

var (
	// ErrInvalidFileName means the base name uses characters outside [A-Za-z0-9_-].
	ErrInvalidFileName = errors.New("invalid image file name")
	// ErrFileTooLarge means the file is bigger than MaxImageSize.
	ErrFileTooLarge = errors.New("image file too large")
)

var imageNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ImageStem returns the file's base name up to the first dot.
// "photo.final.png" -> "photo".
func ImageStem(name string) string {
	base := filepath.Base(name)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}

// ValidateImage checks a candidate upload before anything is read or sent.
func ValidateImage(name string, size int64) error {
	if !imageNameRe.MatchString(ImageStem(name)) {
		return ErrInvalidFileName
	}
	if size > MaxImageSize {
		return ErrFileTooLarge
	}
	return nil
}

// ReadImage validates path and loads it. At most MaxImageSize+1 bytes are
// read, so a file that grows after the size check is still rejected.
func ReadImage(path string) (name string, data []byte, err error) {
	if err := ValidateImage(path, 0); err != nil {
		return "", nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", nil, err
	}
	if fi.IsDir() {
		return "", nil, fmt.Errorf("%s is a directory", path)
	}
	if err := ValidateImage(fi.Name(), fi.Size()); err != nil {
		return "", nil, err
	}
	data, err = io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return "", nil, err
	}
	if len(data) > MaxImageSize {
		return "", nil, ErrFileTooLarge
	}
	return fi.Name(), data, nil
}
