// File path: cmd/partsdb/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/inolabs/partsdb/internal/common"
	"github.com/inolabs/partsdb/internal/compiler"
	"github.com/inolabs/partsdb/internal/config"
	"github.com/inolabs/partsdb/internal/server"
	"github.com/inolabs/partsdb/internal/watch"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug("partsdb: .env file not loaded", "error", err)
	} else {
		logger.Info("partsdb: environment loaded from .env")
	}

	manifest := flag.String("config", "", "path to the library manifest (default library.yaml if present)")
	csvDir := flag.String("csv-dir", "", "directory containing the category CSV files")
	database := flag.String("db", "", "path of the SQLite database to write")
	descriptor := flag.String("dbl", "", "path of the .kicad_dbl descriptor to write")
	symbols := flag.String("symbols", "", "symbol library file or directory for reference checking")
	footprints := flag.String("footprints", "", "footprint library directory for reference checking")
	checkRefs := flag.Bool("check-refs", false, "warn about symbol/footprint references that do not resolve")
	watchMode := flag.Bool("watch", false, "stay running and rebuild when a CSV changes")
	serveAddr := flag.String("serve", "", "also serve a read-only library preview on this address (e.g. localhost:8099)")
	logLevel := flag.String("log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	flag.Parse()

	if *logLevel != "" {
		common.SetLevel(*logLevel)
	}

	if len(flag.Args()) > 0 {
		logger.Error("partsdb: unknown arguments", "args", flag.Args())
		fmt.Fprintln(os.Stderr, "unknown arguments:", flag.Args())
		os.Exit(1)
	}

	cfg, err := config.Load(*manifest)
	if err != nil {
		logger.Error("partsdb: config load failed", "error", err)
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	cfg = cfg.Merge(config.Config{
		CSVDir:          *csvDir,
		Database:        *database,
		Descriptor:      *descriptor,
		Symbols:         *symbols,
		Footprints:      *footprints,
		CheckReferences: *checkRefs,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("partsdb: compiling library",
		"csv_dir", cfg.CSVDir, "database", cfg.Database, "descriptor", cfg.Descriptor)
	if err := initialBuild(ctx, cfg, *watchMode); err != nil {
		logger.Error("partsdb: build failed", "error", err)
		fmt.Fprintln(os.Stderr, "build error:", err)
		os.Exit(1)
	}

	if !*watchMode && *serveAddr == "" {
		return
	}

	errc := make(chan error, 2)
	if *serveAddr != "" {
		srv := &http.Server{Addr: *serveAddr, Handler: server.New(cfg.Database)}
		go func() {
			logger.Info("partsdb: preview server listening", "addr", *serveAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
		go func() {
			<-ctx.Done()
			_ = srv.Close()
		}()
	}
	if *watchMode {
		go func() {
			errc <- watch.Run(ctx, cfg)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("partsdb: shutting down")
	case err := <-errc:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("partsdb: stopped", "error", err)
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}
}

// initialBuild compiles the library once. In watch mode a failure is logged
// instead of being fatal: the watcher stays up so the user can fix the CSV
// and save again.
func initialBuild(ctx context.Context, cfg config.Config, watchMode bool) error {
	logger := common.Logger()
	result, err := compiler.Compile(ctx, cfg)
	if err != nil {
		if !watchMode {
			return err
		}
		logger.Error("partsdb: initial build failed; waiting for changes", "error", err)
		return nil
	}
	logger.Info("partsdb: library compiled", "tables", result.Tables, "parts", result.Parts)
	return nil
}
