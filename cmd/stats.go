package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached question counts and player ratings per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		questions, err := s.Questions().StatsByModel(ctx)
		if err != nil {
			return err
		}
		ratings, err := s.Ratings().StatsByModel(ctx)
		if err != nil {
			return err
		}

		if len(questions) == 0 && len(ratings) == 0 {
			fmt.Println("No questions cached yet.")
			return nil
		}

		fmt.Println("Cached Questions")
		fmt.Println(strings.Repeat("─", 48))
		fmt.Printf("%-28s  %-6s  %10s\n", "Model", "Lang", "Questions")
		fmt.Println(strings.Repeat("─", 48))
		var total int
		for _, q := range questions {
			fmt.Printf("%-28s  %-6s  %10d\n", truncate(q.Model, 28), q.Lang, q.Questions)
			total += q.Questions
		}
		fmt.Println(strings.Repeat("─", 48))
		fmt.Printf("%-28s  %-6s  %10d\n", "TOTAL", "", total)

		if len(ratings) > 0 {
			fmt.Println()
			fmt.Println("Player Ratings")
			fmt.Println(strings.Repeat("─", 64))
			fmt.Printf("%-28s  %8s  %10s  %12s\n", "Model", "Ratings", "Correct %", "Avg Quality")
			fmt.Println(strings.Repeat("─", 64))
			for _, r := range ratings {
				pct := 100 * float64(r.Correct) / float64(r.Ratings)
				quality := "-"
				if r.AvgQuality > 0 {
					quality = fmt.Sprintf("%.2f", r.AvgQuality)
				}
				fmt.Printf("%-28s  %8d  %9.1f%%  %12s\n", truncate(r.Model, 28), r.Ratings, pct, quality)
			}
		}
		return nil
	},
}
