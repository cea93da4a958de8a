package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trailtech/dbcstudio/internal/api"
	"github.com/trailtech/dbcstudio/internal/config"
	"github.com/trailtech/dbcstudio/internal/mock"
	"github.com/trailtech/dbcstudio/internal/report"
	"github.com/trailtech/dbcstudio/internal/tui"
	"github.com/trailtech/dbcstudio/internal/types"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dbcstudio",
	Short: "DBC Studio - CAN database editor",
	Long: `DBC Studio is an interactive editor for CAN DBC databases.

It talks to a DBC editing server: browse messages and signals, edit
nodes, and save or reload the underlying file, all from the terminal.

Examples:
  dbcstudio                              # Connect using the settings file
  dbcstudio --server http://host:5000    # Connect to a specific server
  dbcstudio report -o out.html           # Export an HTML report
  dbcstudio mock --seed vehicle.json     # Run a local development server`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		return tui.Run(flagServer)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the database as a standalone HTML report",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		serverURL := flagServer
		if serverURL == "" {
			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}
			serverURL = settings.ServerURL
		}

		client := api.NewClient(serverURL)
		db, err := client.FetchDatabase(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch database: %w", err)
		}

		html := report.Render(db)
		if reportOutput == "-" {
			fmt.Print(html)
			return nil
		}
		if err := os.WriteFile(reportOutput, []byte(html), config.FilePermissions); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", reportOutput)
		return nil
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a local development server with an in-memory database",
	Long: `Run a local DBC editing server backed by an in-memory database.

The server implements the same JSON contract as the real backend, so the
editor can be pointed at it for development and demos. An optional seed
file (the JSON shape returned by GET /api/database) provides initial
content.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var seed *types.Database
		if mockSeedFile != "" {
			data, err := os.ReadFile(mockSeedFile)
			if err != nil {
				return fmt.Errorf("failed to read seed file: %w", err)
			}
			seed = &types.Database{}
			if err := json.Unmarshal(data, seed); err != nil {
				return fmt.Errorf("failed to parse seed file: %w", err)
			}
		}

		srv := mock.NewServer(seed)
		if err := srv.Start(mockAddr); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		fmt.Printf("Mock DBC server listening on %s\n", mockAddr)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		return srv.Stop()
	},
}

var (
	flagServer   string
	reportOutput string
	mockAddr     string
	mockSeedFile string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "Server base URL (overrides settings)")

	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "dbc-report.html", "Output file path ('-' for stdout)")

	mockCmd.Flags().StringVarP(&mockAddr, "addr", "a", ":5000", "Listen address")
	mockCmd.Flags().StringVar(&mockSeedFile, "seed", "", "JSON seed file for initial content")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(mockCmd)
}
