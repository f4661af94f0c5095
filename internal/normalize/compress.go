package normalize

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	// PNG decoding for image.Decode.
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	// WebP decoding for image.Decode.
	_ "golang.org/x/image/webp"

	"stairviz/internal/domain"
	"stairviz/pkg/datauri"
)

// compress decodes the upload, scales it into the configured bounds without
// ever upscaling, and re-encodes it as JPEG at the configured quality.
func (n *Normalizer) compress(filename string, data []byte) (domain.SourceAsset, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.SourceAsset{}, fmt.Errorf("decode %s: %w", filename, err)
	}

	scaled := n.scaleToFit(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: n.quality}); err != nil {
		return domain.SourceAsset{}, fmt.Errorf("encode %s (%s): %w", filename, format, err)
	}

	out := buf.Bytes()
	return domain.SourceAsset{
		Name:       replaceExt(filename, ".jpg"),
		MIMEType:   "image/jpeg",
		Data:       out,
		Bytes:      int64(len(out)),
		PreviewURI: datauri.Encode("image/jpeg", out),
		Compressed: true,
		CreatedAt:  time.Now(),
	}, nil
}

// scaleToFit returns src scaled to fit within the max bounds, preserving
// aspect ratio. Images already inside the bounds are returned untouched.
func (n *Normalizer) scaleToFit(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= n.maxWidth && h <= n.maxHeight {
		return src
	}

	ratio := min(float64(n.maxWidth)/float64(w), float64(n.maxHeight)/float64(h))
	tw := max(1, int(float64(w)*ratio))
	th := max(1, int(float64(h)*ratio))

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

// sniffMIME guesses the MIME type from the payload's magic bytes. Used only
// on the last-resort path where the browser supplied no usable type.
func sniffMIME(data []byte) string {
	switch {
	case len(data) >= 3 && data[0] == 0xff && data[1] == 0xd8 && data[2] == 0xff:
		return "image/jpeg"
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}):
		return "image/png"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	}
	return "application/octet-stream"
}
