package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
)

type checkReport struct {
	Rows           int                 `json:"rows"`
	Localities     int                 `json:"localities"`
	Establishments int                 `json:"establishments"`
	Overlaps       []catchment.Overlap `json:"overlaps"`
}

func checkCommand(log *zap.Logger) *cobra.Command {
	var (
		src    sourceFlags
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report row counts and overlapping catchment rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := src.load(cmd.Context(), log)
			if err != nil {
				return err
			}
			report := checkReport{
				Rows:           table.Len(),
				Localities:     len(table.Localities()),
				Establishments: len(table.Establishments()),
				Overlaps:       table.Overlaps(),
			}
			if report.Overlaps == nil {
				report.Overlaps = []catchment.Overlap{}
			}
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if strict && len(report.Overlaps) > 0 {
				return fmt.Errorf("%d overlapping rule pairs", len(report.Overlaps))
			}
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when overlaps are found")
	return cmd
}
