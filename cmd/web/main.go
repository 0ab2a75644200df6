package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/de-tools/patch-atlas/pkg/server"
	"github.com/de-tools/patch-atlas/pkg/services/locale"
	"github.com/de-tools/patch-atlas/pkg/services/report"
	"github.com/de-tools/patch-atlas/pkg/store/sqlite"
	"github.com/de-tools/patch-atlas/pkg/store/sqlite/history"
	"github.com/de-tools/patch-atlas/pkg/wsus"
	"github.com/de-tools/patch-atlas/pkg/wsus/apiremoting"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Serve WSUS installation reports over HTTP",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "patch-atlas.yaml",
		"Path to the server config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	settings, err := server.LoadSettings(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load server settings: %w", err)
	}

	drivers := wsus.NewRegistry(map[string]wsus.DriverFactory{
		apiremoting.DriverName: apiremoting.NewDialer,
	})
	dial, err := drivers.Create(settings.Driver, wsus.DriverOptions{
		Timeout:            settings.CallTimeout,
		InsecureSkipVerify: settings.Insecure,
	})
	if err != nil {
		return err
	}
	extractor := report.NewExtractor(dial, locale.Resolve(settings.Locale))

	var runs history.Store
	if settings.HistoryDB != "" {
		db, err := sqlite.NewDB(sqlite.Settings{DbPath: settings.HistoryDB})
		if err != nil {
			return fmt.Errorf("failed to open history db: %w", err)
		}
		defer db.Close()

		runs, err = history.NewStore(db)
		if err != nil {
			return fmt.Errorf("failed to create history store: %w", err)
		}
	}

	addr := net.JoinHostPort(settings.Host, strconv.Itoa(settings.Port))
	logger.Info().Msgf("starting server on %s", addr)

	api := server.NewWebAPI(logger, server.Config{
		Addr:            addr,
		ShutdownTimeout: settings.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Extractor: extractor,
			History:   runs,
		},
	})

	return api.Start()
}
