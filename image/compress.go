package image

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"menu-translation-service/models"
)

const (
	maxImageHeight = 1200
	jpegQuality    = 85
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Validate checks an upload's size and sniffed content type before it goes
// anywhere near the vision API. Returns the detected MIME type.
func Validate(data []byte, maxSizeMB int) (string, error) {
	if len(data) == 0 {
		return "", models.NewValidationError("empty image file")
	}
	if maxSizeMB > 0 && len(data) > maxSizeMB*1024*1024 {
		return "", models.NewValidationError("image exceeds maximum size of %d MB", maxSizeMB)
	}

	mimeType := http.DetectContentType(data)
	if !allowedTypes[mimeType] {
		return "", models.NewValidationError("unsupported image format %s (JPEG, PNG or WebP required)", mimeType)
	}
	return mimeType, nil
}

// CompressImage normalizes EXIF orientation and scales the image down to
// maxImageHeight, re-encoding as JPEG. Images already within limits are
// re-encoded only when a rotation was needed, otherwise returned as-is.
// The reencoded flag tells the caller whether the returned bytes are a
// fresh JPEG or the original upload.
func CompressImage(data []byte) ([]byte, bool, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode image: %w", err)
	}

	orientation := exifOrientation(data)
	rotated := applyOrientation(img, orientation)

	bounds := rotated.Bounds()
	height := bounds.Dy()

	if height <= maxImageHeight {
		if orientation <= 1 {
			return data, false, nil
		}
		return encodeJPEG(rotated)
	}

	width := bounds.Dx() * maxImageHeight / height
	scaled := image.NewRGBA(image.Rect(0, 0, width, maxImageHeight))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), rotated, bounds, draw.Over, nil)

	return encodeJPEG(scaled)
}

func encodeJPEG(img image.Image) ([]byte, bool, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, false, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), true, nil
}

// exifOrientation reads the EXIF orientation tag, defaulting to 1 (upright)
// for images without EXIF data.
func exifOrientation(data []byte) int {
	meta, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := meta.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation rotates the image so phone photos come out upright.
// Mirrored orientations (2, 4, 5, 7) are rare from camera apps and are
// treated as their rotated counterparts.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 3, 4:
		return rotate180(img)
	case 5, 6:
		return rotate90(img)
	case 7, 8:
		return rotate270(img)
	default:
		return img
	}
}

func rotate90(img image.Image) image.Image {
	bounds := img.Bounds()
	rotated := image.NewRGBA(image.Rect(0, 0, bounds.Dy(), bounds.Dx()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rotated.Set(bounds.Max.Y-1-y, x-bounds.Min.X, img.At(x, y))
		}
	}
	return rotated
}

func rotate180(img image.Image) image.Image {
	bounds := img.Bounds()
	rotated := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rotated.Set(bounds.Max.X-1-x, bounds.Max.Y-1-y, img.At(x, y))
		}
	}
	return rotated
}

func rotate270(img image.Image) image.Image {
	bounds := img.Bounds()
	rotated := image.NewRGBA(image.Rect(0, 0, bounds.Dy(), bounds.Dx()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rotated.Set(y-bounds.Min.Y, bounds.Max.X-1-x, img.At(x, y))
		}
	}
	return rotated
}
