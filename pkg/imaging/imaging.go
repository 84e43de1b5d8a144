package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"ProjectOCR/internal/entity"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

var (
	ErrDecodeFailed = errors.New("image decode failed")
	ErrTooLarge     = errors.New("image exceeds the maximum size")
)

// probePayload is a 1x1 transparent PNG used only to verify connectivity to
// the extraction backend when no real payload can be produced.
const probePayload = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8/5+hHgAHggJ/PchI7wAAAABJRU5ErkJggg=="

type INormalizer interface {
	Normalize(imageData []byte, maxDimension int) (entity.NormalizedImage, error)
	ProbePayload() entity.NormalizedImage
}

type normalizer struct {
	maxFileSize int64
	quality     int
	log         *logrus.Logger
}

func New(log *logrus.Logger) INormalizer {
	return &normalizer{
		maxFileSize: 4 * 1024 * 1024,
		quality:     85,
		log:         log,
	}
}

// Normalize resizes the image so the longer edge is at most maxDimension
// (never upscaling) and re-encodes it as JPEG. The returned payload is what
// goes to the recognition and extraction collaborators.
func (n *normalizer) Normalize(imageData []byte, maxDimension int) (entity.NormalizedImage, error) {
	if int64(len(imageData)) > n.maxFileSize {
		return entity.NormalizedImage{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(imageData))
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return entity.NormalizedImage{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()

	newWidth, newHeight := targetDimensions(origWidth, origHeight, maxDimension)

	if newWidth != origWidth || newHeight != origHeight {
		scaled := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
		img = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: n.quality}); err != nil {
		return entity.NormalizedImage{}, fmt.Errorf("jpeg encode failed: %w", err)
	}

	n.log.WithFields(logrus.Fields{
		"original_width":  origWidth,
		"original_height": origHeight,
		"width":           newWidth,
		"height":          newHeight,
		"encoded_bytes":   buf.Len(),
	}).Debug("Image normalized for OCR")

	return entity.NormalizedImage{
		MIMEType:       "image/jpeg",
		Base64Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
		OriginalWidth:  origWidth,
		OriginalHeight: origHeight,
		Width:          newWidth,
		Height:         newHeight,
	}, nil
}

// ProbePayload returns a minimal placeholder image marked degraded. It exists
// for connectivity checks only and must never replace a real document image
// in a production result.
func (n *normalizer) ProbePayload() entity.NormalizedImage {
	n.log.Warn("Using degraded probe payload instead of a document image")

	return entity.NormalizedImage{
		MIMEType:       "image/png",
		Base64Data:     probePayload,
		OriginalWidth:  1,
		OriginalHeight: 1,
		Width:          1,
		Height:         1,
		Degraded:       true,
	}
}

// targetDimensions keeps the aspect ratio while bounding the longer edge to
// maxDimension. Images already within the bound keep their size.
func targetDimensions(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}

	ratio := float64(width) / float64(height)
	if width > height {
		return maxDimension, int(float64(maxDimension)/ratio + 0.5)
	}
	return int(float64(maxDimension)*ratio + 0.5), maxDimension
}
