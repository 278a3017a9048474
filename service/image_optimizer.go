package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log"
	"os"

	"github.com/disintegration/imaging"
)

const (
	logoQuality = 85
	// max dimension
	logoMaxSize = 480
)

// OptimizeImage converts a logo to JPEG, shrinking it to fit the quote header
// imageData: raw image bytes (PNG, JPEG)
// Returns optimized JPEG image bytes
func OptimizeImage(imageData []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	log.Printf("📸 Image decoded: format=%s, bounds=%v", format, img.Bounds())

	maxDim, quality := logoMaxSize, logoQuality
	var resized image.Image = img
	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		// Fit keeps the aspect ratio
		resized = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		log.Printf("🔄 Resizing image: %dx%d -> %dx%d", bounds.Dx(), bounds.Dy(), resized.Bounds().Dx(), resized.Bounds().Dy())
	}

	// JPEG has no alpha; flatten transparent logos onto white
	flat := imaging.New(resized.Bounds().Dx(), resized.Bounds().Dy(), image.White)
	flat = imaging.Overlay(flat, resized, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}

	log.Printf("✓ Image optimized: quality=%d, output_size=%d bytes", quality, buf.Len())
	return buf.Bytes(), nil
}

// LogoDataURI loads the studio logo, shrinks it and returns it as a data: URI so
// rendered quotes never depend on a second request
func LogoDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read logo: %w", err)
	}
	optimized, err := OptimizeImage(data)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(optimized), nil
}
