package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Irineu96Silva/projeto-turion/internal/app"
)

func main() {
	cmd := &cli.Command{
		Name:  "turion",
		Usage: "Per-tenant trust and signed-request gateway for the inference engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: ":8080",
				Usage: "HTTP listen address",
			},
			&cli.StringFlag{
				Name:  "db-path",
				Value: "./turion.sqlite",
				Usage: "SQLite file path",
			},
			&cli.StringFlag{
				Name:     "master-key",
				Sources:  cli.EnvVars("TURION_MASTER_KEY"),
				Usage:    "64-hex-character AES-256 master key for secret encryption",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "engine-url",
				Sources: cli.EnvVars("TURION_ENGINE_URL"),
				Value:   "http://localhost:9000/v1/infer",
				Usage:   "External inference engine endpoint",
			},
			&cli.IntFlag{
				Name:    "engine-timeout-ms",
				Sources: cli.EnvVars("TURION_ENGINE_TIMEOUT_MS"),
				Value:   10000,
				Usage:   "Inner timeout for engine calls in milliseconds",
			},
			&cli.StringFlag{
				Name:    "bootstrap-tenant",
				Sources: cli.EnvVars("TURION_BOOTSTRAP_TENANT"),
				Usage:   "Optional tenant slug to upsert at startup",
			},
			&cli.StringFlag{
				Name:    "bootstrap-plan",
				Value:   "free",
				Sources: cli.EnvVars("TURION_BOOTSTRAP_PLAN"),
				Usage:   "Plan for the bootstrap tenant",
			},
			&cli.StringFlag{
				Name:    "bootstrap-api-key",
				Sources: cli.EnvVars("TURION_BOOTSTRAP_API_KEY"),
				Usage:   "Optional API key to upsert for the bootstrap tenant",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := app.Config{
				Addr:            c.String("addr"),
				DBPath:          c.String("db-path"),
				MasterKeyHex:    c.String("master-key"),
				EngineURL:       c.String("engine-url"),
				EngineTimeout:   time.Duration(c.Int("engine-timeout-ms")) * time.Millisecond,
				BootstrapTenant: c.String("bootstrap-tenant"),
				BootstrapPlan:   c.String("bootstrap-plan"),
				BootstrapAPIKey: c.String("bootstrap-api-key"),
			}

			server, closer, err := app.NewServer(ctx, cfg)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			defer func() {
				if closeErr := closer.Close(); closeErr != nil {
					log.Printf("close resources: %v", closeErr)
				}
			}()

			errCh := make(chan error, 1)
			go func() {
				log.Printf("listening on %s", cfg.Addr)
				errCh <- server.ListenAndServe()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			case sig := <-sigCh:
				log.Printf("received signal %s", sig)
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
