package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <question-hash>...",
	Short: "Hide cached questions so they are no longer served",
	Args:  cobra.MinimumNArgs(1),
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

		for _, hash := range args {
			removed, err := s.Questions().Remove(cmd.Context(), hash)
			if err != nil {
				return err
			}
			if removed {
				fmt.Printf("removed %s\n", hash)
			} else {
				fmt.Printf("no visible question %s\n", hash)
			}
		}
		return nil
	},
}
