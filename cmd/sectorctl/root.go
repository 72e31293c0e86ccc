package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
	"github.com/ThomasAyr/carte-scolaire/internal/db"
)

type sourceFlags struct {
	csvPath     string
	dsn         string
	departments []string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.csvPath, "csv", "", "path to the cleaned catchment CSV")
	cmd.Flags().StringVar(&f.dsn, "db", "", "read rows from postgres instead (DSN, default env DATABASE_URL)")
	cmd.Flags().StringSliceVar(&f.departments, "department", nil, "restrict database loads to these departments")
}

// load reads the table from --csv, or from postgres when --db (or
// DATABASE_URL) is set and --csv is not.
func (f *sourceFlags) load(ctx context.Context, log *zap.Logger) (*catchment.Table, error) {
	if f.csvPath != "" {
		rows, err := catchment.LoadCSV(f.csvPath)
		if err != nil {
			return nil, err
		}
		return catchment.NewTable(rows), nil
	}
	dsn := f.dsn
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return nil, fmt.Errorf("one of --csv or --db is required")
	}
	gdb, err := db.Connect(dsn, log)
	if err != nil {
		return nil, err
	}
	return catchment.NewStore(gdb).Load(ctx, f.departments)
}

func rootCommand(log *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "sectorctl",
		Short:         "Catchment data operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		importCommand(log),
		resolveCommand(log),
		checkCommand(log),
	)
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
