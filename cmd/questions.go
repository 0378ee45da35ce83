package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/ui/theme"
)

var questionsCmd = &cobra.Command{
	Use:   "questions [type]",
	Short: "List the question bank",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		bank, err := cfg.QuestionBank()
		if err != nil {
			return err
		}

		cats := question.Categories()
		if len(args) == 1 {
			c, ok := question.ParseCategory(args[0])
			if !ok {
				return fmt.Errorf("unknown interview type %q", args[0])
			}
			cats = []question.Category{c}
		}

		out := cmd.OutOrStdout()
		for i, c := range cats {
			qs, err := bank.Questions(c)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, theme.Title.Render(string(c)))
			for _, q := range qs {
				fmt.Fprintf(out, "%s %s\n", theme.Label.Render(fmt.Sprintf("%3d.", q.ID)), q.Text)
			}
		}
		return nil
	},
}
