// Command ustreamerd wires the pixel-format model, resolution-scaling
// policy, hardware JPEG encoder adapter, and NV12 compositor into a
// runnable daemon: a synthetic frame source feeds an N-worker encode pool,
// whose output is logged, while an HTTP control surface exposes the
// overlay/blocking singletons for live mutation. Real V4L2/RTSP capture and
// the outer transport that ships compressed frames to viewers are external
// collaborators this command does not implement.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garagehq/ustreamer-mpp/internal/blocking"
	"github.com/garagehq/ustreamer-mpp/internal/capture"
	"github.com/garagehq/ustreamer-mpp/internal/config"
	"github.com/garagehq/ustreamer-mpp/internal/httpapi"
	"github.com/garagehq/ustreamer-mpp/internal/mpp"
	"github.com/garagehq/ustreamer-mpp/internal/overlay"
	"github.com/garagehq/ustreamer-mpp/internal/pixfmt"
	"github.com/garagehq/ustreamer-mpp/internal/pool"
	"github.com/garagehq/ustreamer-mpp/internal/rawcache"
	"github.com/garagehq/ustreamer-mpp/internal/softjpeg"
)

const (
	shutdownTimeout = 5 * time.Second
	sourceWidth     = 1920
	sourceHeight    = 1080
	sourceFPS       = 30.0
)

func main() {
	encoderFlag := flag.String("encoder", "", "Encoder backend: mpp-jpeg or cpu-jpeg (default mpp-jpeg)")
	scaleFlag := flag.String("encode-scale", "", "Target resolution: native, 1080p, 2k, or 4k (default native)")
	qualityFlag := flag.Int("quality", 80, "JPEG quality 1..99")
	workersFlag := flag.Int("workers", 1, "Number of parallel encoder workers")
	listenFlag := flag.String("listen", ":8080", "HTTP control surface listen address")
	fontBoldFlag := flag.String("font-bold", "", "Path to a bold TrueType font for overlay/blocking text")
	fontMonoFlag := flag.String("font-mono", "", "Path to a monospace TrueType font for overlay/blocking text")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debugFlag {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg, err := buildConfig(*encoderFlag, *scaleFlag, *qualityFlag, *workersFlag, *listenFlag, *fontBoldFlag, *fontMonoFlag)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("ustreamerd exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("ustreamerd stopped cleanly")
}

func buildConfig(encoderFlag, scaleFlag string, quality, workers int, listen, fontBold, fontMono string) (config.Config, error) {
	encoder, err := config.ParseEncoder(encoderFlag)
	if err != nil {
		return config.Config{}, err
	}
	scale, err := config.ParseScale(scaleFlag)
	if err != nil {
		return config.Config{}, err
	}
	c := config.Config{
		Encoder:     encoder,
		EncodeScale: scale,
		Quality:     quality,
		Workers:     workers,
		Listen:      listen,
		FontBold:    fontBold,
		FontMono:    fontMono,
	}
	if err := c.Validate(); err != nil {
		return config.Config{}, err
	}
	return c, nil
}

// run constructs every shared singleton, starts the encoder pool and HTTP
// control surface, drives the synthetic frame source until ctx is
// cancelled (by a signal or by the HTTP server failing), and shuts
// everything down in reverse order.
func run(parent context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	overlayStore := overlay.NewStore()
	blockingStore := blocking.NewStore()
	rawCache := rawcache.New()
	fonts := overlay.NewFontSet(cfg.FontBold, cfg.FontMono, logger)

	encoders := make([]pool.Encoder, 0, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		name := fmt.Sprintf("%s-%d", cfg.Encoder, i)
		switch cfg.Encoder {
		case config.EncoderCPUJPEG:
			encoders = append(encoders, softjpeg.New(name, cfg.Quality, cfg.EncodeScale, logger))
		default:
			encoders = append(encoders, mpp.New(mpp.Config{
				Name:     name,
				Quality:  cfg.Quality,
				Policy:   cfg.EncodeScale,
				Overlay:  overlayStore,
				Blocking: blockingStore,
				RawCache: rawCache,
				Fonts:    fonts,
				Logger:   logger,
			}))
		}
	}

	out := make(chan *pixfmt.Frame, 4)
	p := pool.New(encoders, out, logger)

	server := httpapi.New(overlayStore, blockingStore, rawCache, logger)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	httpSrv := &http.Server{Addr: cfg.Listen, Handler: mux}

	httpErrCh := make(chan error, 1)
	go func() {
		logger.Info("http control surface listening", "addr", cfg.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			httpErrCh <- err
			return
		}
		httpErrCh <- nil
	}()

	drainDone := make(chan struct{})
	go drainOutput(out, logger, drainDone)

	source := capture.NewSyntheticSource(sourceWidth, sourceHeight, sourceFPS)
	defer source.Close()

	produceDone := make(chan struct{})
	go func() {
		defer close(produceDone)
		produce(ctx, source, p, logger)
	}()

	var runErr error
	select {
	case err := <-httpErrCh:
		if err != nil {
			logger.Error("http server failed", "error", err)
			runErr = err
		}
		cancel()
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	_ = httpSrv.Shutdown(shutdownCtx)
	<-produceDone
	if err := p.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	close(out)
	<-drainDone
	return runErr
}

// produce pulls frames from source at its own pace and submits each to the
// pool, stopping when ctx is cancelled.
func produce(ctx context.Context, source *capture.SyntheticSource, p *pool.Pool, logger *slog.Logger) {
	for {
		frame, err := source.Next(ctx)
		if err != nil {
			return
		}
		if err := p.Submit(frame); err != nil {
			logger.Debug("submit rejected", "error", err)
			return
		}
	}
}

// drainOutput logs every encoded frame's size; a real deployment would hand
// these to the outer transport (WebSocket/WHEP/MJPEG-over-HTTP), which is
// out of scope here.
func drainOutput(out <-chan *pixfmt.Frame, logger *slog.Logger, done chan<- struct{}) {
	defer close(done)
	for frame := range out {
		logger.Debug("frame encoded", "trace_id", frame.TraceID, "bytes", frame.UsedBytes, "width", frame.Width, "height", frame.Height)
	}
}
