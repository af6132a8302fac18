package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quiz-leaderboard-service/internal/config"
	"quiz-leaderboard-service/internal/domain"
)

// NewLeaderboardCmd prints the current ranking from the configured stores.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the current leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaderboard(cmd.Context(), *configPath, cmd.OutOrStdout())
		},
	}
}

func runLeaderboard(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	service, backends, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer backends.Close()

	lb, err := service.Leaderboard(ctx)
	if err != nil {
		return err
	}
	return printLeaderboard(out, lb)
}

func printLeaderboard(out io.Writer, lb domain.Leaderboard) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tNAME\tSCORE\tQUIZZES\tPROGRESS")
	for _, e := range lb.Entries {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%d/%d\t%d%%\n", e.Rank, e.Name, e.TotalScore, e.QuizzesPlayedCount, lb.QuizCount, e.ProgressPercent)
	}
	return w.Flush()
}
