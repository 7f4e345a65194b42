package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kelsos/blend-actions/internal/actions"
	"github.com/kelsos/blend-actions/internal/backup"
	"github.com/kelsos/blend-actions/internal/client"
	"github.com/kelsos/blend-actions/internal/config"
	"github.com/kelsos/blend-actions/internal/importer"
	"github.com/kelsos/blend-actions/internal/logger"
	"github.com/kelsos/blend-actions/internal/models"
	"github.com/kelsos/blend-actions/internal/server"
	"github.com/kelsos/blend-actions/internal/storage"
	"github.com/kelsos/blend-actions/internal/tui"
)

func newResolver(cfg *config.Config, store storage.Store) *actions.Resolver {
	return actions.NewResolver(store,
		actions.WithPolicy(cfg.OverflowPolicy),
		actions.WithConcurrency(cfg.Concurrency),
		actions.WithLogger(logger.Get()),
	)
}

// readRequest builds the request from positional addresses or a JSON request file ("-" for stdin)
func readRequest(args []string, requestFile string) (models.ActionsRequest, error) {
	if requestFile == "" {
		return models.ActionsRequest{Addresses: args}, nil
	}
	if len(args) > 0 {
		return models.ActionsRequest{}, fmt.Errorf("addresses and --request are mutually exclusive")
	}

	var data []byte
	var err error
	if requestFile == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(requestFile)
	}
	if err != nil {
		return models.ActionsRequest{}, fmt.Errorf("failed to read request: %w", err)
	}

	return models.ParseActionsRequest(data)
}

func writeResult(w io.Writer, format string, result models.ActionsByAddress) error {
	switch format {
	case "table":
		_, err := fmt.Fprint(w, tui.RenderTable(result))
		return err
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	default:
		return fmt.Errorf("unknown output format %q (want json or table)", format)
	}
}

func newResolveCmd(cfg *config.Config) *cobra.Command {
	var requestFile, format string

	cmd := &cobra.Command{
		Use:   "resolve [addresses...]",
		Short: "Resolve the actions of addresses from the local index",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(args, requestFile)
			if err != nil {
				return err
			}

			store, err := storage.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			defer cancel()

			result, err := newResolver(cfg, store).Resolve(ctx, req)
			if err != nil {
				return err
			}

			return writeResult(cmd.OutOrStdout(), format, result)
		},
	}

	cmd.Flags().StringVarP(&requestFile, "request", "r", "", `JSON request file with an "addresses" array, - for stdin`)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or table")
	return cmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the actions endpoint over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(server.Config{
				Port:           cfg.Port,
				Log:            logger.Get(),
				Resolver:       newResolver(cfg, store),
				RequestTimeout: cfg.RequestTimeout,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVarP(&cfg.Port, "port", "p", cfg.Port, "Port to listen on")
	return cmd
}

func newQueryCmd(cfg *config.Config) *cobra.Command {
	var requestFile, format string
	var wait bool

	cmd := &cobra.Command{
		Use:   "query [addresses...]",
		Short: "Resolve the actions of addresses through a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(args, requestFile)
			if err != nil {
				return err
			}

			apiClient := client.NewAPIClient(cfg)
			if wait && !apiClient.WaitForAPIReady(cmd.Context()) {
				return fmt.Errorf("server at %s is not ready", cfg.ServerURL)
			}

			result, err := apiClient.ResolveActions(cmd.Context(), req.Addresses)
			if err != nil {
				return err
			}

			return writeResult(cmd.OutOrStdout(), format, result)
		},
	}

	cmd.Flags().StringVarP(&cfg.ServerURL, "server", "s", cfg.ServerURL, "Server URL (default: http://localhost:<port>)")
	cmd.Flags().StringVarP(&requestFile, "request", "r", "", `JSON request file with an "addresses" array, - for stdin`)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or table")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait for the server to answer pings first")
	cmd.Flags().IntVarP(&cfg.APIReadyTimeout, "api-ready-timeout", "t", cfg.APIReadyTimeout, "Maximum attempts to check API readiness")
	return cmd
}

func newImportCmd(cfg *config.Config) *cobra.Command {
	var incremental bool

	cmd := &cobra.Command{
		Use:   "import <records.json>",
		Short: "Import a collateral/borrow records dump into the local index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dump, err := importer.LoadFile(args[0])
			if err != nil {
				return err
			}

			store, err := storage.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			var result importer.Result
			if incremental {
				result, err = importer.ApplyIncremental(cmd.Context(), store, dump, cfg.DataDir)
			} else {
				result, err = importer.Apply(cmd.Context(), store, dump)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d collateral and %d borrow records (%d skipped)\n",
				result.Collaterals, result.Borrows, result.Skipped)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&incremental, "incremental", "i", false, "Only import records above the saved ledger checkpoints")
	return cmd
}

func newBrowseCmd(cfg *config.Config) *cobra.Command {
	var requestFile string

	cmd := &cobra.Command{
		Use:   "browse [addresses...]",
		Short: "Browse the actions of addresses interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(args, requestFile)
			if err != nil {
				return err
			}

			// the terminal belongs to the TUI from here on
			if err := logger.InitFileOnly(); err != nil {
				return err
			}
			defer logger.Close()

			store, err := storage.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			resolver := newResolver(cfg, store)
			return tui.Run(func() (models.ActionsByAddress, error) {
				ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
				defer cancel()
				return resolver.Resolve(ctx, req)
			})
		},
	}

	cmd.Flags().StringVarP(&requestFile, "request", "r", "", `JSON request file with an "addresses" array, - for stdin`)
	return cmd
}

func newBackupCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create a backup of the index database",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			backupFile, err := backup.CreateBackup(cmd.Context(), store, cfg.DataDir, cfg.BackupDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), backupFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfg.BackupDir, "backup-dir", "", cfg.BackupDir, "Directory where the backup will be stored")
	return cmd
}
