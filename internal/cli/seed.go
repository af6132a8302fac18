package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"quiz-leaderboard-service/internal/config"
	"quiz-leaderboard-service/internal/domain"
	pgstore "quiz-leaderboard-service/internal/infra/postgres"
)

// NewSeedCmd loads a catalog file into Postgres, replacing the stored catalog.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a quiz catalog JSON file into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalog file (defaults to quiz.catalog_file)")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if file == "" {
		file = cfg.Quiz.CatalogFile
	}
	if file == "" {
		return fmt.Errorf("no catalog file given")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	quizzes, err := domain.DecodeCatalog(data)
	if err != nil {
		return err
	}
	valid := quizzes[:0]
	for _, quiz := range quizzes {
		if err := quiz.Validate(); err != nil {
			log.Printf("skipping %q: %v", quiz.Title, err)
			continue
		}
		valid = append(valid, quiz)
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pgstore.NewQuizLoader(pool).SaveQuizzes(ctx, valid); err != nil {
		return err
	}
	log.Printf("seeded %d quizzes from %s", len(valid), file)
	return nil
}
