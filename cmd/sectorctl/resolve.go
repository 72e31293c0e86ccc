package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ThomasAyr/carte-scolaire/internal/provider"
	_ "github.com/ThomasAyr/carte-scolaire/internal/provider/annuaire"
	_ "github.com/ThomasAyr/carte-scolaire/internal/provider/annuairecsv"
	"github.com/ThomasAyr/carte-scolaire/internal/sectorisation"
)

type lookupOutput struct {
	EstablishmentID string                   `json:"establishment_id"`
	Records         []provider.Establishment `json:"records,omitempty"`
	Error           string                   `json:"error,omitempty"`
}

type resolveOutput struct {
	sectorisation.Resolution
	Lookups []lookupOutput `json:"lookups,omitempty"`
}

func resolveCommand(log *zap.Logger) *cobra.Command {
	var (
		src      sourceFlags
		locality string
		street   string
		number   int
		enrich   bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve one address against the catchment rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			table, err := src.load(ctx, log)
			if err != nil {
				return err
			}

			q := sectorisation.Query{Locality: locality}
			if cmd.Flags().Changed("street") {
				q.Street = &street
			}
			if cmd.Flags().Changed("number") {
				q.Number = &number
			}
			res, err := sectorisation.NewResolver(table).Resolve(q)
			if err != nil {
				return err
			}

			out := resolveOutput{Resolution: res}
			if enrich && len(res.Matches) > 0 {
				cfg := provider.LoadFromEnv()
				if err := cfg.Validate(); err != nil {
					return err
				}
				dir, err := provider.NewDirectory(cfg)
				if err != nil {
					return err
				}
				for _, r := range sectorisation.NewEnricher(dir, log).Enrich(ctx, res.Matches).Results {
					lo := lookupOutput{EstablishmentID: r.EstablishmentID, Records: r.Records}
					if r.Err != nil {
						lo.Error = r.Err.Error()
					}
					out.Lookups = append(out.Lookups, lo)
				}
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&locality, "locality", "", `locality key, e.g. "SETE (HERAULT)" (required)`)
	cmd.Flags().StringVar(&street, "street", "", "street label")
	cmd.Flags().IntVar(&number, "number", 0, "civic number")
	cmd.Flags().BoolVar(&enrich, "enrich", false, "look the matches up in the configured directory")
	_ = cmd.MarkFlagRequired("locality")
	return cmd
}
