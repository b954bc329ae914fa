package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/wikiquiz/internal/article"
	"github.com/abhisek/wikiquiz/internal/quizgen"
)

type generatedQuestion struct {
	Question     string   `json:"question"`
	Answers      []string `json:"answers"`
	CorrectIndex int      `json:"correctIndex"`
	QuestionHash string   `json:"questionHash"`
	ArticleHash  string   `json:"articleHash"`
	Provider     string   `json:"provider"`
	Model        string   `json:"model,omitempty"`
	FromCache    bool     `json:"fromCache"`
	PoolSize     int      `json:"poolSize,omitempty"`
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Produce one question for an article file and print it as JSON",
	Long: "Loads the article (.txt, .md, .html or .pdf), runs the cache-or-generate flow\n" +
		"and prints the served question. With --no-cache a single uncached round is run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		title, _ := cmd.Flags().GetString("title")
		lang, _ := cmd.Flags().GetString("lang")
		noCache, _ := cmd.Flags().GetBool("no-cache")

		doc, err := article.LoadFile(path)
		if err != nil {
			return err
		}
		if title == "" {
			title = doc.Title
		}

		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if lang == "" {
			lang = d.cfg.Server.DefaultLang
		}
		a := quizgen.Article{Text: doc.Text, Title: title, Lang: lang}

		var out generatedQuestion
		if noCache {
			q, err := d.orchestrator.GenerateOnce(cmd.Context(), a)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}
			out = toGenerated(q)
		} else {
			res, err := d.orchestrator.Serve(cmd.Context(), a)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			out = toGenerated(res.Question)
			out.FromCache = res.FromCache
			out.PoolSize = res.PoolSize
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(out)
	},
}

func toGenerated(q *quizgen.AcceptedQuestion) generatedQuestion {
	return generatedQuestion{
		Question:     q.Question,
		Answers:      q.Answers,
		CorrectIndex: q.CorrectIndex,
		QuestionHash: q.QuestionHash,
		ArticleHash:  q.ArticleHash,
		Provider:     q.Provider,
		Model:        q.Model,
	}
}

func init() {
	generateCmd.Flags().StringP("file", "f", "", "Article file (.txt, .md, .html, .pdf)")
	generateCmd.Flags().StringP("title", "t", "", "Article title (defaults to the file name)")
	generateCmd.Flags().StringP("lang", "l", "", "Target language (defaults to server.default_lang)")
	generateCmd.Flags().Bool("no-cache", false, "Skip the cache and run one generation round")
	_ = generateCmd.MarkFlagRequired("file")
}
