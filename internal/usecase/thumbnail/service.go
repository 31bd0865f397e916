// Package thumbnail derives fixed-width JPEG previews from stored
// raster assets as an offline, restartable batch.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	// Raster decoders. Non-raster assets (video, svg, ico) land in the
	// failure log.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/lumakr/luma/internal/domain"
	"github.com/lumakr/luma/internal/metrics"
)

// rasterFormats lists the format hints the batch attempts to decode.
var rasterFormats = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
	"bmp":  true,
}

// Config controls thumbnail derivation.
type Config struct {
	Width   int // target width, aspect ratio preserved
	Quality int // JPEG quality
	Workers int
}

// Result reports one batch run.
type Result struct {
	Derived int
	Skipped int
	Failed  int
}

// Service derives thumbnails for every stored asset.
type Service struct {
	blobs BlobStore
	fails FailureLog
	cfg   Config
	log   *zap.Logger
}

// New creates a thumbnail service.
func New(blobs BlobStore, fails FailureLog, cfg Config, log *zap.Logger) *Service {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Quality <= 0 {
		cfg.Quality = 80
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Service{blobs: blobs, fails: fails, cfg: cfg, log: log}
}

// Run processes every stored asset with a bounded worker pool. Assets
// are independent: a failure is recorded durably and the batch moves
// on. Re-running re-derives and overwrites existing thumbnails.
func (s *Service) Run(ctx context.Context) (Result, error) {
	handles, err := s.blobs.ListHandles(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list assets: %w", err)
	}

	outcomes := make([]outcome, len(handles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, handle := range handles {
		g.Go(func() error {
			outcomes[i] = s.processOne(gctx, handle)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var result Result
	for _, o := range outcomes {
		switch o {
		case outcomeDerived:
			result.Derived++
		case outcomeSkipped:
			result.Skipped++
		default:
			result.Failed++
		}
	}
	return result, nil
}

type outcome int

const (
	outcomeFailed outcome = iota
	outcomeDerived
	outcomeSkipped
)

func (s *Service) processOne(ctx context.Context, handle domain.Handle) outcome {
	data, hint, err := s.blobs.Get(ctx, handle)
	if err != nil {
		s.recordFailure(ctx, handle, fmt.Sprintf("read asset: %v", err))
		return outcomeFailed
	}

	if !rasterFormats[hint] {
		s.recordFailure(ctx, handle, fmt.Sprintf("unsupported format %q", hint))
		return outcomeSkipped
	}

	thumb, err := s.derive(data)
	if err != nil {
		s.recordFailure(ctx, handle, fmt.Sprintf("decode %s: %v", hint, err))
		return outcomeFailed
	}

	if err := s.blobs.PutThumbnail(ctx, handle, thumb); err != nil {
		s.recordFailure(ctx, handle, fmt.Sprintf("store thumbnail: %v", err))
		return outcomeFailed
	}

	_ = s.fails.Clear(ctx, handle)
	metrics.ThumbnailTotal.WithLabelValues("ok").Inc()
	return outcomeDerived
}

func (s *Service) recordFailure(ctx context.Context, handle domain.Handle, reason string) {
	metrics.ThumbnailTotal.WithLabelValues("failed").Inc()
	s.log.Warn("thumbnail derivation failed",
		zap.String("handle", string(handle)),
		zap.String("reason", reason))
	if err := s.fails.Record(ctx, handle, reason); err != nil {
		s.log.Error("failure log write failed",
			zap.String("handle", string(handle)), zap.Error(err))
	}
}

// derive decodes, scales to the target width preserving aspect ratio,
// and re-encodes as JPEG. Images already at or below the target width
// are re-encoded without scaling.
func (s *Service) derive(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	if bounds.Dx() > s.cfg.Width {
		height := bounds.Dy() * s.cfg.Width / bounds.Dx()
		if height < 1 {
			height = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, s.cfg.Width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: s.cfg.Quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
