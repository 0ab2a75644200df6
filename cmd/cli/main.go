package main

import (
	"fmt"
	"os"

	"github.com/de-tools/patch-atlas/pkg/runtime/terminal"
	"github.com/de-tools/patch-atlas/pkg/store/sqlite"
	"github.com/de-tools/patch-atlas/pkg/store/sqlite/history"
	"github.com/de-tools/patch-atlas/pkg/wsus"
	"github.com/de-tools/patch-atlas/pkg/wsus/apiremoting"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Drivers: wsus.NewRegistry(map[string]wsus.DriverFactory{
			apiremoting.DriverName: apiremoting.NewDialer,
		}),
		OpenHistory: openHistory,
		Output:      os.Stdout,
		ErrOutput:   os.Stderr,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openHistory(path string) (history.Store, func() error, error) {
	db, err := sqlite.NewDB(sqlite.Settings{DbPath: path})
	if err != nil {
		return nil, nil, err
	}

	store, err := history.NewStore(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db.Close, nil
}
