package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/history"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/ui/components"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Review past assessments",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your assessments, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		typ, _ := cmd.Flags().GetString("type")

		var category question.Category
		if typ != "" {
			c, ok := question.ParseCategory(typ)
			if !ok {
				return fmt.Errorf("unknown interview type %q", typ)
			}
			category = c
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(cmd, a)

		entries, err := a.History().List(cmd.Context(), a.Config.User.ID, category, limit)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), components.HistoryTable(entries))
		return nil
	},
}

var historyViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one assessment with a per-question review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}
		withSamples, _ := cmd.Flags().GetBool("samples")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(cmd, a)

		svc := a.History()
		ctx := cmd.Context()
		d, err := svc.Detail(ctx, id)
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("assessment %d not found", id)
		}
		if err != nil {
			return err
		}

		samples := map[int]string{}
		if withSamples && svc.SamplesAvailable() {
			for _, it := range d.Items {
				text, err := svc.SampleAnswer(ctx, id, it.Index)
				if err != nil {
					a.Log.Warn("sample answer unavailable", zap.Int("question", it.Index), zap.Error(err))
					continue
				}
				samples[it.Index] = text
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), components.Detail(d, samples, cardWidth))
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show average and best scores per interview type",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(cmd, a)

		st, err := a.History().Stats(cmd.Context(), a.Config.User.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), components.Stats(st))
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntP("limit", "n", 20, "Number of assessments to show (0 = all)")
	historyListCmd.Flags().StringP("type", "t", "", "Filter by interview type (technical, behavioral, managerial)")
	historyViewCmd.Flags().BoolP("samples", "s", false, "Generate a sample answer for every question")

	historyCmd.AddCommand(historyListCmd, historyViewCmd, historyStatsCmd)
}
