package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
)

var recommendFile string

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Answer one recommendation request from a JSON file and print the response",
	Example: `  catalog-recommender recommend --file request.json
  echo '{"query":"serum for oily skin","language":"fr"}' | catalog-recommender recommend --file -`,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().StringVarP(&recommendFile, "file", "f", "-", "request JSON file, - for stdin")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	raw, err := readInput(recommendFile)
	if err != nil {
		return err
	}
	var req domain.RecommendationRequest
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &req); err != nil {
			return fmt.Errorf("parse request: %w", err)
		}
	}

	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	a, err := buildApp(cmd.Context(), cfg, logger, false)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.svc.Recommend(cmd.Context(), req)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(result.Response, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request file: %w", err)
	}
	return raw, nil
}
