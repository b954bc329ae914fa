package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/wikiquiz/internal/article"
	"github.com/abhisek/wikiquiz/internal/quizgen"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show the cached questions for an article file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		lang, _ := cmd.Flags().GetString("lang")
		limit, _ := cmd.Flags().GetInt("limit")

		doc, err := article.LoadFile(path)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if lang == "" {
			lang = cfg.Server.DefaultLang
		}

		s, err := openStore(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer s.Close()

		articleHash := quizgen.HashArticle(doc.Text)
		recs, err := s.Questions().Lookup(cmd.Context(), articleHash, lang, limit)
		if err != nil {
			return fmt.Errorf("lookup questions: %w", err)
		}
		total, err := s.Questions().Count(cmd.Context(), articleHash, lang)
		if err != nil {
			return fmt.Errorf("count questions: %w", err)
		}

		fmt.Printf("Article:   %s\n", doc.Title)
		fmt.Printf("Hash:      %s\n", articleHash)
		fmt.Printf("Language:  %s\n", lang)
		fmt.Printf("Cached:    %d (sufficient at %d)\n", total, cfg.Cache.SufficiencyThreshold)

		if len(recs) == 0 {
			return nil
		}

		fmt.Println(strings.Repeat("─", 72))
		for _, r := range recs {
			fmt.Printf("%s  %-10s  %s\n", truncate(r.QuestionHash, 12), truncate(r.Model, 10), r.Question)
			for i, a := range r.Answers {
				mark := " "
				if i == r.CorrectIndex {
					mark = "*"
				}
				fmt.Printf("    %s %s\n", mark, a)
			}
		}
		return nil
	},
}

func init() {
	cacheCmd.Flags().StringP("file", "f", "", "Article file (.txt, .md, .html, .pdf)")
	cacheCmd.Flags().StringP("lang", "l", "", "Language (defaults to server.default_lang)")
	cacheCmd.Flags().IntP("limit", "n", 0, "Maximum questions to list (0 lists all)")
	_ = cacheCmd.MarkFlagRequired("file")
}
