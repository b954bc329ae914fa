package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/wikiquiz/internal/article"
	"github.com/abhisek/wikiquiz/internal/quizgen"
)

var validateCmd = &cobra.Command{
	Use:   "validate [FILE|-]",
	Short: "Run the quality filters on a candidate question",
	Long: "Reads a candidate as provider output JSON ({question, answers, correctIndex}, optionally\n" +
		"fenced or wrapped in {\"sets\": [...]}) and reports every filter it fails.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		lang, _ := cmd.Flags().GetString("lang")
		articlePath, _ := cmd.Flags().GetString("article")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		raw, err := readInput(args)
		if err != nil {
			return err
		}
		c, err := quizgen.ParseCandidate(raw)
		if err != nil {
			return fmt.Errorf("parse candidate: %w", err)
		}

		a := quizgen.Article{Title: title, Lang: lang}
		if articlePath != "" {
			doc, err := article.LoadFile(articlePath)
			if err != nil {
				return err
			}
			a.Text = doc.Text
		}

		failures := quizgen.NewQuestionValidator(cfg.Filters).Explain(c, a)
		if len(failures) == 0 {
			fmt.Println("accepted")
			return nil
		}
		for _, f := range failures {
			fmt.Printf("%-16s %s\n", f.Validator, f.Message)
		}
		return fmt.Errorf("candidate rejected by %d filter(s)", len(failures))
	},
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read candidate: %w", err)
	}
	return data, nil
}

func init() {
	validateCmd.Flags().StringP("title", "t", "", "Article title for the title-similarity filter")
	validateCmd.Flags().StringP("lang", "l", "cs", "Language whose meta-reference fragments apply")
	validateCmd.Flags().String("article", "", "Optional article file the candidate was generated from")
}
