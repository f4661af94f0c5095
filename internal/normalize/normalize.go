// Package normalize turns an arbitrary uploaded file into a submittable
// image. The common case is an in-process re-encode that caps resolution and
// quality; HEIC/HEIF files fall back to a remote conversion service; anything
// else that fails to re-encode is accepted as-is rather than rejected.
package normalize

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stairviz/internal/domain"
	"stairviz/pkg/datauri"
)

// HEICConverter converts a HEIC/HEIF payload remotely and returns the result
// as an image data URI.
type HEICConverter interface {
	Convert(ctx context.Context, filename string, data []byte) (string, error)
}

// Options configures a Normalizer.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
	Converter HEICConverter
	Logger    *zerolog.Logger
}

// Normalizer implements the ordered ingestion fallback chain.
type Normalizer struct {
	maxWidth  int
	maxHeight int
	quality   int
	converter HEICConverter
	logger    zerolog.Logger
}

// New constructs a Normalizer with sane defaults.
func New(opts Options) *Normalizer {
	n := &Normalizer{
		maxWidth:  opts.MaxWidth,
		maxHeight: opts.MaxHeight,
		quality:   opts.Quality,
		converter: opts.Converter,
	}
	if n.maxWidth <= 0 {
		n.maxWidth = 1920
	}
	if n.maxHeight <= 0 {
		n.maxHeight = 1920
	}
	if n.quality <= 0 || n.quality > 100 {
		n.quality = 82
	}
	if opts.Logger != nil {
		n.logger = *opts.Logger
	} else {
		n.logger = zerolog.Nop()
	}
	return n
}

// Normalize runs the fallback chain on the uploaded file:
//
//  1. re-encode/downscale in process (JPEG/PNG/WebP);
//  2. for .heic/.heif names, remote conversion;
//  3. accept the original bytes unchanged.
//
// Only a total failure of step 2 is surfaced to the visitor; steps 1 and 3
// recover silently.
func (n *Normalizer) Normalize(ctx context.Context, filename, mimeType string, data []byte) (domain.SourceAsset, error) {
	if len(data) == 0 {
		return domain.SourceAsset{}, fmt.Errorf("normalize: empty upload: %w", domain.ErrUnsupportedImage)
	}

	if asset, err := n.compress(filename, data); err == nil {
		return asset, nil
	} else {
		n.logger.Debug().Err(err).Str("file", filename).Msg("in-process compression failed")
	}

	if isHEICName(filename) {
		return n.convertHEIC(ctx, filename, data)
	}

	// Last resort: submit the original, uncompressed file.
	if mimeType == "" {
		mimeType = sniffMIME(data)
	}
	return domain.SourceAsset{
		Name:       filename,
		MIMEType:   mimeType,
		Data:       data,
		Bytes:      int64(len(data)),
		PreviewURI: datauri.Encode(mimeType, data),
		CreatedAt:  time.Now(),
	}, nil
}

func (n *Normalizer) convertHEIC(ctx context.Context, filename string, data []byte) (domain.SourceAsset, error) {
	if n.converter == nil {
		return domain.SourceAsset{}, fmt.Errorf("normalize: no HEIC converter configured, please upload a JPG or PNG: %w", domain.ErrUnsupportedImage)
	}
	uri, err := n.converter.Convert(ctx, filename, data)
	if err != nil {
		n.logger.Warn().Err(err).Str("file", filename).Msg("remote HEIC conversion failed")
		return domain.SourceAsset{}, fmt.Errorf("normalize: could not convert %s, please upload a JPG or PNG: %w", filepath.Ext(filename), domain.ErrUnsupportedImage)
	}
	mimeType, raw, err := datauri.Decode(uri)
	if err != nil {
		return domain.SourceAsset{}, fmt.Errorf("normalize: converter returned an unreadable image, please upload a JPG or PNG: %w", domain.ErrUnsupportedImage)
	}
	return domain.SourceAsset{
		Name:       replaceExt(filename, ".jpg"),
		MIMEType:   mimeType,
		Data:       raw,
		Bytes:      int64(len(raw)),
		PreviewURI: uri,
		Compressed: true,
		CreatedAt:  time.Now(),
	}, nil
}

func isHEICName(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".heic", ".heif":
		return true
	}
	return false
}

func replaceExt(filename, ext string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ext
}
