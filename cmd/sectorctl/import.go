package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
	"github.com/ThomasAyr/carte-scolaire/internal/db"
)

func importCommand(log *zap.Logger) *cobra.Command {
	var (
		csvPath   string
		dsn       string
		namespace string
		dryRun    bool
		confirm   bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the stored catchment rows with a CSV export",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if dsn == "" {
				dsn = os.Getenv("DATABASE_URL")
			}
			ns := catchment.DefaultNamespace
			if namespace != "" {
				parsed, err := uuid.Parse(namespace)
				if err != nil {
					return fmt.Errorf("--namespace: %w", err)
				}
				ns = parsed
			}

			rows, err := catchment.LoadCSV(csvPath)
			if err != nil {
				return err
			}
			table := catchment.NewTable(rows)
			log.Info("parsed catchment csv",
				zap.Int("rows", table.Len()),
				zap.Int("localities", len(table.Localities())),
				zap.Int("establishments", len(table.Establishments())))

			if dryRun {
				return nil
			}
			if dsn == "" {
				return fmt.Errorf("--db not provided and DATABASE_URL not set")
			}
			if !confirm {
				return fmt.Errorf("refusing to replace %s without --confirm", catchment.CatchmentRecord{}.TableName())
			}

			gdb, err := db.Connect(dsn, log)
			if err != nil {
				return err
			}
			if err := db.EnsureSchema(ctx, gdb, catchment.Schema); err != nil {
				return fmt.Errorf("ensure schema: %w", err)
			}
			if err := catchment.NewStore(gdb).AutoMigrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			conn, err := pgx.Connect(ctx, dsn)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			n, err := catchment.Import(ctx, conn, ns, rows)
			if err != nil {
				return err
			}
			log.Info("catchment rows imported", zap.Int64("rows", n), zap.String("namespace", ns.String()))
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "path to the cleaned catchment CSV (required)")
	cmd.Flags().StringVar(&dsn, "db", "", "Postgres DSN (default: env DATABASE_URL)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "UUID namespace for row ids (stable forever)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and validate only; no DB writes")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "required to perform the destructive replace")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}
