// File: cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"syscall"

	"ecowas_fisheries_backend/internal/config"
	"ecowas_fisheries_backend/internal/indicator"

	"go.uber.org/zap"
)

const usage = `usage: server [command] [flags]

commands:
  (none)            start the HTTP server
  seed-indicators   load an indicator dataset (-file, -replace)
  promote-admin     grant the admin role to a profile (-email)
  reindex-uploads   push every upload to the search index (-batch-size)
`

func main() {
	if len(os.Args) < 2 {
		startServer()
		return
	}

	var err error
	switch os.Args[1] {
	case "seed-indicators":
		err = seedIndicators(os.Args[2:])
	case "promote-admin":
		err = promoteAdmin(os.Args[2:])
	case "reindex-uploads":
		err = reindexUploads(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("FATAL: %s failed: %v", os.Args[1], err)
	}
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}

// withCommands loads configuration, wires the services and runs fn.
func withCommands(fn func(ctx context.Context, cmds *commands) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cmds, cleanup, err := initializeCommands(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return fn(ctx, cmds)
}

func seedIndicators(args []string) error {
	fs := flag.NewFlagSet("seed-indicators", flag.ExitOnError)
	file := fs.String("file", "", "Path to an indicator JSON dataset (defaults to the bundled dataset)")
	replace := fs.Bool("replace", false, "Delete existing indicator records before loading")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data := indicator.BundledDataset()
	if *file != "" {
		raw, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("read dataset: %w", err)
		}
		data = raw
	}

	return withCommands(func(ctx context.Context, cmds *commands) error {
		result, err := cmds.Indicators.Seed(ctx, "cli", data, *replace)
		if err != nil {
			return err
		}
		cmds.Logger.Info("Indicator dataset loaded",
			zap.Int("records", result.Loaded),
			zap.Bool("replace", result.Replace),
			zap.String("source", sourceName(*file)),
		)
		return nil
	})
}

func sourceName(file string) string {
	if file == "" {
		return "bundled"
	}
	return file
}

func promoteAdmin(args []string) error {
	fs := flag.NewFlagSet("promote-admin", flag.ExitOnError)
	email := fs.String("email", "", "Email of the profile to promote")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("-email is required")
	}

	return withCommands(func(ctx context.Context, cmds *commands) error {
		profile, err := cmds.Users.PromoteToAdmin(ctx, *email)
		if err != nil {
			return err
		}
		cmds.Logger.Info("Profile promoted to admin", zap.String("email", profile.Email), zap.String("id", profile.ID.String()))
		return nil
	})
}

func reindexUploads(args []string) error {
	fs := flag.NewFlagSet("reindex-uploads", flag.ExitOnError)
	batchSize := fs.Int("batch-size", 100, "Batch size for indexing uploads")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *batchSize <= 0 {
		return fmt.Errorf("-batch-size must be positive")
	}

	return withCommands(func(ctx context.Context, cmds *commands) error {
		if cmds.Search == nil {
			return fmt.Errorf("ELASTICSEARCH_URL must be set to reindex uploads")
		}
		indexed, failed, err := cmds.Uploads.Reindex(ctx, *batchSize)
		if err != nil {
			return err
		}
		cmds.Logger.Info("Upload reindex finished", zap.Int("indexed", indexed), zap.Int("failed", failed))
		if failed > 0 {
			return fmt.Errorf("%d uploads failed to index", failed)
		}
		return nil
	})
}
