// Package compose draws the generated render onto a canvas, overlays up to
// two logo watermarks and serializes the result into the downloadable PNG
// artifact. Watermark failures degrade, they never block the export.
package compose

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	// Decoders for base and watermark images.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"stairviz/internal/domain"
	"stairviz/pkg/datauri"
)

// Corner anchors a watermark.
type Corner int

const (
	BottomLeft Corner = iota
	BottomRight
)

// Watermark is one logo overlay. The product watermark is fixed bottom-left;
// the tenant watermark sits bottom-right.
type Watermark struct {
	URI    string
	Corner Corner
}

// Options configures a Compositor.
type Options struct {
	Loader   Loader
	Exporter RasterExporter
	// WidthPct sizes a watermark relative to canvas width.
	WidthPct float64
	// MinWidth keeps watermarks legible on small renders.
	MinWidth int
	Opacity  float64
	Padding  int
	Logger   *zerolog.Logger
}

// Compositor builds download artifacts from generation results.
type Compositor struct {
	loader   Loader
	exporter RasterExporter
	widthPct float64
	minWidth int
	opacity  float64
	padding  int
	logger   zerolog.Logger
	now      func() time.Time
}

// New constructs a Compositor with sane defaults.
func New(opts Options) *Compositor {
	c := &Compositor{
		loader:   opts.Loader,
		exporter: opts.Exporter,
		widthPct: opts.WidthPct,
		minWidth: opts.MinWidth,
		opacity:  opts.Opacity,
		padding:  opts.Padding,
		now:      time.Now,
	}
	if c.loader == nil {
		c.loader = NewHTTPLoader(nil)
	}
	if c.exporter == nil {
		c.exporter = PNGExporter{}
	}
	if c.widthPct <= 0 || c.widthPct >= 1 {
		c.widthPct = 0.18
	}
	if c.minWidth <= 0 {
		c.minWidth = 96
	}
	if c.opacity <= 0 || c.opacity > 1 {
		c.opacity = 0.55
	}
	if c.padding < 0 {
		c.padding = 16
	}
	if opts.Logger != nil {
		c.logger = *opts.Logger
	} else {
		c.logger = zerolog.Nop()
	}
	return c
}

// Compose renders the artifact: base image at native resolution at (0,0),
// then each reachable watermark in order. If serializing the composite
// fails, a freshly loaded base-only canvas is serialized instead; if even
// that fails, domain.ErrExportUnavailable tells the caller to point the
// visitor at the untouched preview.
func (c *Compositor) Compose(ctx context.Context, resultURI string, marks []Watermark) (domain.DownloadArtifact, error) {
	base, err := c.loader.Load(ctx, resultURI)
	if err != nil {
		return domain.DownloadArtifact{}, fmt.Errorf("compose: load result image: %w: %w", domain.ErrExportUnavailable, err)
	}

	canvas := image.NewRGBA(base.Bounds().Sub(base.Bounds().Min))
	draw.Draw(canvas, canvas.Bounds(), base, base.Bounds().Min, draw.Src)

	for i, mark := range c.loadAll(ctx, marks) {
		if mark == nil {
			continue
		}
		c.drawWatermark(canvas, mark, marks[i].Corner)
	}

	raw, err := c.exporter.Export(canvas)
	if err == nil {
		return c.artifact(raw, false), nil
	}
	c.logger.Warn().Err(err).Msg("composite export failed, retrying base-only")

	// Degraded path: rebuild from a freshly loaded copy without overlays.
	fresh, loadErr := c.loader.Load(ctx, resultURI)
	if loadErr != nil {
		return domain.DownloadArtifact{}, fmt.Errorf("compose: base-only reload: %w: %w", domain.ErrExportUnavailable, loadErr)
	}
	plain := image.NewRGBA(fresh.Bounds().Sub(fresh.Bounds().Min))
	draw.Draw(plain, plain.Bounds(), fresh, fresh.Bounds().Min, draw.Src)
	raw, err = c.exporter.Export(plain)
	if err != nil {
		return domain.DownloadArtifact{}, fmt.Errorf("compose: base-only export: %w: %w", domain.ErrExportUnavailable, err)
	}
	return c.artifact(raw, true), nil
}

// loadAll fetches the watermark images concurrently. A failed load yields a
// nil slot; draw order stays the fixed slice order regardless.
func (c *Compositor) loadAll(ctx context.Context, marks []Watermark) []image.Image {
	images := make([]image.Image, len(marks))
	g, gctx := errgroup.WithContext(ctx)
	for i, mark := range marks {
		if mark.URI == "" {
			continue
		}
		i, mark := i, mark
		g.Go(func() error {
			img, err := c.loader.Load(gctx, mark.URI)
			if err != nil {
				c.logger.Warn().Err(err).Str("watermark", mark.URI).Msg("watermark skipped")
				return nil
			}
			images[i] = img
			return nil
		})
	}
	_ = g.Wait()
	return images
}

func (c *Compositor) drawWatermark(canvas *image.RGBA, mark image.Image, corner Corner) {
	cw := canvas.Bounds().Dx()
	ch := canvas.Bounds().Dy()

	targetW := int(float64(cw) * c.widthPct)
	if targetW < c.minWidth {
		targetW = c.minWidth
	}
	if targetW > cw {
		targetW = cw
	}
	mb := mark.Bounds()
	targetH := int(float64(targetW) * float64(mb.Dy()) / float64(mb.Dx()))
	if targetH < 1 {
		targetH = 1
	}

	scaled := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), mark, mb, xdraw.Over, nil)

	var origin image.Point
	switch corner {
	case BottomLeft:
		origin = image.Pt(c.padding, ch-targetH-c.padding)
	case BottomRight:
		origin = image.Pt(cw-targetW-c.padding, ch-targetH-c.padding)
	}
	if origin.Y < 0 {
		origin.Y = 0
	}
	if origin.X < 0 {
		origin.X = 0
	}

	alpha := image.NewUniform(color.Alpha{A: uint8(c.opacity * 255)})
	rect := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(targetW, targetH))}
	draw.DrawMask(canvas, rect, scaled, image.Point{}, alpha, image.Point{}, draw.Over)
}

func (c *Compositor) artifact(raw []byte, baseOnly bool) domain.DownloadArtifact {
	return domain.DownloadArtifact{
		Filename: fmt.Sprintf("stairviz-%d.png", c.now().UnixMilli()),
		MIMEType: "image/png",
		Data:     raw,
		DataURI:  datauri.Encode("image/png", raw),
		BaseOnly: baseOnly,
	}
}
