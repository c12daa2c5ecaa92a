package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"openwatch/internal/archive"
	"openwatch/internal/config"
	"openwatch/internal/fields"
	"openwatch/internal/logging"
	"openwatch/internal/metrics"
	"openwatch/internal/monitors"
	"openwatch/internal/query"
	"openwatch/internal/render"
	"openwatch/internal/session"
	"openwatch/internal/transport"
	"openwatch/internal/types"
)

// Build information (set by build script)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "openwatch: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, closeLog, err := logging.New(logging.Options{
		Level:    cfg.LogLevel,
		FilePath: cfg.LogFile,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closeLog()

	log.Info("openwatch starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	streamMetrics := metrics.NewStreamMetrics(registry)

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			log.Info("metrics server listening", "addr", cfg.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metricsServer.Shutdown(shutdownCtx)
		}()
	}

	sess, err := session.New(session.Config{
		URL:      cfg.ServerURL,
		APIKey:   cfg.APIKey,
		Insecure: cfg.Insecure,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if err := sess.Login(ctx); err != nil {
		return err
	}
	defer func() {
		logoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sess.Logout(logoutCtx); err != nil {
			log.Warn("logout failed", "error", err)
		}
	}()

	var arc *archive.SQLiteArchive
	if cfg.ArchivePath != "" {
		arc, err = archive.NewSQLiteArchive(cfg.ArchivePath)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer arc.Close()
	}

	q := buildQuery(cfg)
	opts := []transport.Option{transport.WithLogger(log), transport.WithMetrics(streamMetrics)}

	resolver, err := fields.NewResolver(sess, opts...)
	if err != nil {
		return fmt.Errorf("failed to create field resolver: %w", err)
	}

	factory, err := buildFactory(cfg, resolver)
	if err != nil {
		return err
	}
	if arc != nil {
		factory = archivingFactory(factory, arc, cfg.Monitor, log)
	}

	var stream *query.FormattedStream
	if cfg.Live {
		stream, err = q.FetchLive(ctx, sess, factory, opts...)
	} else {
		stream, err = q.FetchBatch(ctx, sess, factory, opts...)
	}
	if err != nil {
		return err
	}
	defer stream.Close()

	return drain(ctx, stream, log)
}

// buildQuery constructs the monitor query selected by the config and
// applies its shared fetch parameters.
func buildQuery(cfg *types.Config) *query.Query {
	var q *query.Query
	switch cfg.Monitor {
	case "connections":
		q = monitors.NewConnectionQuery(cfg.Target).Query
	case "routes":
		q = monitors.NewRoutingQuery(cfg.Target).Query
	case "users":
		q = monitors.NewUserQuery(cfg.Target).Query
	case "sslvpn":
		q = monitors.NewSSLVPNQuery(cfg.Target).Query
	case "vpn-sa":
		q = monitors.NewVPNSAQuery(cfg.Target).Query
	case "alerts":
		q = monitors.NewActiveAlertQuery(cfg.Target).Query
	case "blocklist":
		q = monitors.NewBlocklistQuery(cfg.Target).Query
	default:
		q = monitors.NewLogQuery().Query
	}

	if !cfg.Live && cfg.Since > 0 {
		q.TimeRange().Last(cfg.Since)
	}
	if cfg.FetchSize > 0 {
		q.SetFetchSize(cfg.FetchSize)
	}
	q.SetBackwards(cfg.Backwards)
	if cfg.Timezone != "" {
		if tf, ok := q.Format().(*query.TextFormat); ok {
			tf.Timezone(cfg.Timezone)
		}
	}
	return q
}

func buildFactory(cfg *types.Config, resolver *fields.Resolver) (query.FormatterFactory, error) {
	switch cfg.Output {
	case "table":
		return render.TableFactory(resolver), nil
	case "csv":
		return render.CSVFactory(resolver), nil
	case "raw":
		return render.RawFactory(), nil
	}
	return nil, fmt.Errorf("unknown output format %q", cfg.Output)
}

// archivingFactory wraps a formatter factory so every batch is written
// to the archive before it is rendered. Archive failures are logged
// and do not interrupt the fetch.
func archivingFactory(inner query.FormatterFactory, arc *archive.SQLiteArchive, monitor string, log *slog.Logger) query.FormatterFactory {
	return func(ctx context.Context, q *query.Query) (query.Formatter, error) {
		formatter, err := inner(ctx, q)
		if err != nil {
			return nil, err
		}
		return &archivingFormatter{inner: formatter, arc: arc, monitor: monitor, log: log}, nil
	}
}

type archivingFormatter struct {
	inner   query.Formatter
	arc     *archive.SQLiteArchive
	monitor string
	log     *slog.Logger
}

func (f *archivingFormatter) Format(batch types.Batch) any {
	if err := f.arc.WriteBatch(f.monitor, batch); err != nil {
		f.log.Warn("failed to archive batch", "monitor", f.monitor, "error", err)
	}
	return f.inner.Format(batch)
}

// drain prints formatted output until the fetch ends or the context
// is cancelled.
func drain(ctx context.Context, stream *query.FormattedStream, log *slog.Logger) error {
	encoder := json.NewEncoder(os.Stdout)
	for {
		out, err := stream.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				log.Info("fetch interrupted")
				return nil
			}
			return err
		}
		switch v := out.(type) {
		case string:
			fmt.Print(v)
		case types.Batch:
			for _, rec := range v {
				if err := encoder.Encode(rec); err != nil {
					return fmt.Errorf("failed to encode record: %w", err)
				}
			}
		default:
			if err := encoder.Encode(v); err != nil {
				return fmt.Errorf("failed to encode output: %w", err)
			}
		}
	}
}
