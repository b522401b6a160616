package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "catalog-recommender",
	Short: "Constraint-aware product recommendation service",
	Long: `Serves multilingual product recommendations that respect medical,
skin, ingredient and budget constraints, and provides tooling to seed and
migrate the catalog database.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
