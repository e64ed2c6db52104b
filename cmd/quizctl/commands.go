package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/fresher-training-api/internal/analytics"
	"github.com/noah-isme/fresher-training-api/internal/quiz"
)

// attemptRecord mirrors the attempt export of the admin API.
type attemptRecord struct {
	FresherID      uint      `json:"fresher_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Completed      bool      `json:"completed"`
	CreatedAt      time.Time `json:"created_at"`
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "quizctl",
		Short:         "Operate the fresher quiz question bank and attempt exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newBankCmd())
	root.AddCommand(newSampleCmd())
	root.AddCommand(newAggregateCmd())
	return root
}

func newBankCmd() *cobra.Command {
	bank := &cobra.Command{
		Use:   "bank",
		Short: "Inspect question bank files",
	}

	bank.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a YAML question bank loads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := quiz.LoadBankFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bank OK: %d questions\n", loaded.Size())
			return nil
		},
	})

	return bank
}

func newSampleCmd() *cobra.Command {
	var (
		bankPath string
		count    int
		seed     uint64
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw a quiz the way a new session would and print it as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			bank, err := quiz.LoadBank(bankPath)
			if err != nil {
				return err
			}

			var rng *rand.Rand
			if cmd.Flags().Changed("seed") {
				rng = rand.New(rand.NewPCG(seed, seed))
			}

			questions, err := bank.Draw(count, rng)
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), map[string]interface{}{"questions": questions})
		},
	}

	cmd.Flags().StringVar(&bankPath, "bank", "", "question bank YAML file (built-in questions when empty)")
	cmd.Flags().IntVar(&count, "count", 5, "number of questions to draw")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for a reproducible draw")
	return cmd
}

func newAggregateCmd() *cobra.Command {
	var perFresher bool

	cmd := &cobra.Command{
		Use:   "aggregate <attempts.json>",
		Short: "Summarise an exported list of quiz attempts as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attempts, err := readAttempts(args[0])
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			if perFresher {
				return encoder.Encode(analytics.AggregateByFresher(attempts))
			}
			return encoder.Encode(analytics.Aggregate(attempts))
		},
	}

	cmd.Flags().BoolVar(&perFresher, "per-fresher", false, "report one summary per fresher")
	return cmd
}

func readAttempts(path string) ([]analytics.Attempt, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attempts: %w", err)
	}

	var records []attemptRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse attempts: %w", err)
	}

	attempts := make([]analytics.Attempt, 0, len(records))
	for _, record := range records {
		attempts = append(attempts, analytics.Attempt{
			FresherID:      record.FresherID,
			Score:          record.Score,
			TotalQuestions: record.TotalQuestions,
			Completed:      record.Completed,
			Timestamp:      record.CreatedAt,
		})
	}
	return attempts, nil
}

func writeYAML(w io.Writer, value interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(value); err != nil {
		return err
	}
	return encoder.Close()
}
