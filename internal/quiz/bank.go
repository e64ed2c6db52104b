package quiz

import (
	"fmt"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"
)

// Bank is the immutable pool of questions loaded at process start.
type Bank struct {
	questions []Question
}

type bankFile struct {
	Questions []Question `yaml:"questions"`
}

// NewBank validates the questions and wraps them in a bank.
func NewBank(questions []Question) (*Bank, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: question bank is empty", ErrInvalidArgument)
	}

	seen := make(map[int]struct{}, len(questions))
	stored := make([]Question, 0, len(questions))
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %d", ErrInvalidArgument, q.ID)
		}
		seen[q.ID] = struct{}{}
		stored = append(stored, q.clone())
	}

	return &Bank{questions: stored}, nil
}

// LoadBankFile reads a YAML question bank of the form `questions: [...]`.
func LoadBankFile(path string) (*Bank, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	var file bankFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}

	return NewBank(file.Questions)
}

// LoadBank returns the bank at path, or the built-in bank when path is empty.
func LoadBank(path string) (*Bank, error) {
	if path == "" {
		return NewBank(DefaultQuestions())
	}
	return LoadBankFile(path)
}

// Size returns the number of questions in the bank.
func (b *Bank) Size() int {
	return len(b.questions)
}

// Questions returns a copy of the pool.
func (b *Bank) Questions() []Question {
	out := make([]Question, len(b.questions))
	for i, q := range b.questions {
		out[i] = q.clone()
	}
	return out
}

// Draw selects count random questions from the bank.
func (b *Bank) Draw(count int, rng *rand.Rand) ([]Question, error) {
	return SelectRandomSubset(b.questions, count, rng)
}

// DefaultQuestions is the built-in React fundamentals pool used by the daily quiz.
func DefaultQuestions() []Question {
	return []Question{
		{
			ID:   1,
			Text: "What is the virtual DOM in React?",
			Options: []string{
				"A copy of the real DOM kept in memory",
				"A programming concept where UI is kept in memory and synced with the real DOM",
				"A faster version of the DOM",
				"All of the above",
			},
			CorrectOption: 1,
		},
		{
			ID:            2,
			Text:          "Which hook is used for side effects in React?",
			Options:       []string{"useState", "useEffect", "useContext", "useReducer"},
			CorrectOption: 1,
		},
		{
			ID:   3,
			Text: "What is JSX?",
			Options: []string{
				"A JavaScript library",
				"A syntax extension for JavaScript",
				"A type of component",
				"A React framework",
			},
			CorrectOption: 1,
		},
		{
			ID:            4,
			Text:          "How do you pass data from parent to child component?",
			Options:       []string{"State", "Props", "Context", "Redux"},
			CorrectOption: 1,
		},
		{
			ID:   5,
			Text: "What is the purpose of key prop in React lists?",
			Options: []string{
				"To style elements",
				"To identify elements uniquely for efficient re-rendering",
				"To handle events",
				"To manage state",
			},
			CorrectOption: 1,
		},
		{
			ID:            6,
			Text:          "Which method is called when a component is removed from the DOM?",
			Options:       []string{"componentDidMount", "componentWillUnmount", "componentDidUpdate", "render"},
			CorrectOption: 1,
		},
		{
			ID:   7,
			Text: "What is the difference between state and props?",
			Options: []string{
				"No difference",
				"State is mutable, props are immutable",
				"Props are mutable, state is immutable",
				"Both are mutable",
			},
			CorrectOption: 1,
		},
		{
			ID:   8,
			Text: "What is a higher-order component (HOC)?",
			Options: []string{
				"A component that renders other components",
				"A function that takes a component and returns a new component",
				"A component with higher priority",
				"A built-in React component",
			},
			CorrectOption: 1,
		},
	}
}
