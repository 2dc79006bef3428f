// Package ocr defines the text-recognition collaborator contract. Real
// recognition happens outside this module; the engine only promises raw
// recognized text plus a content-derived hash of the source image, stable for
// byte-identical images.
package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// Result is the output of recognizing one screenshot.
type Result struct {
	Text      string
	ImageHash string
}

// Engine recognizes text in a screenshot image file.
type Engine interface {
	ExtractText(ctx context.Context, imagePath string) (*Result, error)
}

// HashImage returns the hex SHA-256 of raw image bytes. Byte-identical images
// always produce the same hash; a single flipped bit produces a different one.
func HashImage(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SidecarEngine reads recognized text from a .txt sidecar written next to
// each screenshot by the on-device recognizer, and hashes the image bytes
// itself. This keeps actual OCR outside the module while exercising the full
// import path.
type SidecarEngine struct{}

// NewSidecarEngine creates a sidecar-file engine.
func NewSidecarEngine() *SidecarEngine {
	return &SidecarEngine{}
}

// ExtractText hashes the image at imagePath and returns the contents of its
// sidecar text file. A missing sidecar is an error; the pipeline logs it and
// moves on to the next screenshot.
func (e *SidecarEngine) ExtractText(ctx context.Context, imagePath string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read screenshot %s: %w", imagePath, err)
	}

	text, err := os.ReadFile(SidecarPath(imagePath))
	if err != nil {
		return nil, fmt.Errorf("no recognized text for %s: %w", imagePath, err)
	}

	return &Result{
		Text:      string(text),
		ImageHash: HashImage(imageData),
	}, nil
}

// SidecarPath returns the recognized-text path for an image:
// "shot.png" -> "shot.txt".
func SidecarPath(imagePath string) string {
	if idx := strings.LastIndex(imagePath, "."); idx > strings.LastIndex(imagePath, "/") {
		return imagePath[:idx] + ".txt"
	}
	return imagePath + ".txt"
}
