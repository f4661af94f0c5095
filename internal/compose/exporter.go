package compose

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// RasterExporter serializes a composed bitmap into the downloadable raster.
// The browser original needs two implementations because a cross-origin
// watermark can taint the canvas; server-side there is no taint, but the
// capability split is kept so the base-only fallback stays independently
// testable and Compose can degrade instead of failing.
type RasterExporter interface {
	Export(img image.Image) ([]byte, error)
}

// PNGExporter serializes to PNG, the advertised artifact format.
type PNGExporter struct{}

// Export encodes img as PNG.
func (PNGExporter) Export(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("compose: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
