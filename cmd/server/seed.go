package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actuallystonmai/catalog-recommender/seeds"
)

var (
	seedCount    int
	seedValue    int64
	seedOutput   string
	seedPostgres bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate the demo catalog into a JSON file or the database",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", defaultSeedCount, "number of products")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 42, "random seed")
	seedCmd.Flags().StringVarP(&seedOutput, "out", "o", "data/products.json", "output JSON file")
	seedCmd.Flags().BoolVar(&seedPostgres, "postgres", false, "replace the products table instead of writing a file")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	products := seeds.Generate(seedCount, seedValue)

	if !seedPostgres {
		if err := seeds.WriteJSON(seedOutput, products); err != nil {
			return err
		}
		logger.Info().Int("products", len(products)).Str("path", seedOutput).Msg("catalog written")
		return nil
	}

	pool, err := connectPostgres(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := migrateUp(cmd.Context(), pool, migrationsDir, logger); err != nil {
		return err
	}
	if err := seeds.Setup(cmd.Context(), pool, products, logger); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	return nil
}
