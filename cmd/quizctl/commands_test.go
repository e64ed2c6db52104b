package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/fresher-training-api/internal/analytics"
	"github.com/noah-isme/fresher-training-api/internal/quiz"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBankValidate(t *testing.T) {
	path := writeFile(t, "bank.yaml", `questions:
  - id: 1
    text: "What does go vet do?"
    options: ["Static checks", "Formats code", "Runs tests"]
    correct_option: 0
`)

	out, err := execute(t, "bank", "validate", path)
	require.NoError(t, err)
	require.Equal(t, "bank OK: 1 questions\n", out)
}

func TestBankValidateRejectsBadCorrectOption(t *testing.T) {
	path := writeFile(t, "bank.yaml", `questions:
  - id: 1
    text: "Broken"
    options: ["a", "b"]
    correct_option: 5
`)

	_, err := execute(t, "bank", "validate", path)
	require.ErrorIs(t, err, quiz.ErrInvalidArgument)
}

func TestSampleIsReproducibleWithSeed(t *testing.T) {
	first, err := execute(t, "sample", "--count", "3", "--seed", "42")
	require.NoError(t, err)
	second, err := execute(t, "sample", "--count", "3", "--seed", "42")
	require.NoError(t, err)
	require.Equal(t, first, second)

	var decoded struct {
		Questions []quiz.Question `yaml:"questions"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(first), &decoded))
	require.Len(t, decoded.Questions, 3)

	_, err = execute(t, "sample", "--count", "99")
	require.ErrorIs(t, err, quiz.ErrNotEnoughQuestions)
}

func TestAggregateAttempts(t *testing.T) {
	path := writeFile(t, "attempts.json", `[
  {"fresher_id": 1, "score": 5, "total_questions": 5, "completed": true},
  {"fresher_id": 1, "score": 3, "total_questions": 5, "completed": true},
  {"fresher_id": 2, "score": 1, "total_questions": 5, "completed": false}
]`)

	out, err := execute(t, "aggregate", path)
	require.NoError(t, err)

	var stats analytics.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	require.Equal(t, 3, stats.TotalAttempts)
	require.Equal(t, 4.0, stats.AverageScore)
	require.InDelta(t, 66.666, stats.CompletionRate, 0.01)
	require.Equal(t, int64(1), stats.BucketCounts[analytics.Bucket90To100])

	out, err = execute(t, "aggregate", "--per-fresher", path)
	require.NoError(t, err)
	var grouped map[string]analytics.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &grouped))
	require.Len(t, grouped, 2)
	require.True(t, grouped["2"].Empty)
}

func TestAggregateRequiresFile(t *testing.T) {
	_, err := execute(t, "aggregate")
	require.Error(t, err)

	_, err = execute(t, "aggregate", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
