package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	// ErrInvalidArgument is the class of every caller mistake reported by this package.
	ErrInvalidArgument = errors.New("quiz: invalid argument")
	// ErrNotEnoughQuestions indicates a subset larger than the pool was requested.
	ErrNotEnoughQuestions = fmt.Errorf("%w: requested more questions than the pool holds", ErrInvalidArgument)
	// ErrOptionOutOfRange indicates an answer outside the question's option list.
	ErrOptionOutOfRange = fmt.Errorf("%w: option index out of range", ErrInvalidArgument)
	// ErrAnswerRequired indicates advance was called before an option was selected.
	ErrAnswerRequired = fmt.Errorf("%w: an answer is required before advancing", ErrInvalidArgument)
	// ErrSessionCompleted indicates a mutation was attempted on a finished session.
	ErrSessionCompleted = fmt.Errorf("%w: session already completed", ErrInvalidArgument)
	// ErrEmptySession indicates a session was created without questions.
	ErrEmptySession = fmt.Errorf("%w: a session needs at least one question", ErrInvalidArgument)
)

// Question is a single multiple choice item of the bank.
type Question struct {
	ID            int      `json:"id" yaml:"id"`
	Text          string   `json:"text" yaml:"text"`
	Options       []string `json:"options" yaml:"options"`
	CorrectOption int      `json:"correct_option" yaml:"correct_option"`
}

// IsCorrect reports whether option is the correct answer.
func (q Question) IsCorrect(option int) bool {
	return option == q.CorrectOption
}

// Validate checks the question is internally consistent.
func (q Question) Validate() error {
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question %d needs at least two options", ErrInvalidArgument, q.ID)
	}
	if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
		return fmt.Errorf("%w: question %d correct option %d out of range", ErrInvalidArgument, q.ID, q.CorrectOption)
	}
	return nil
}

func (q Question) clone() Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}

// SelectRandomSubset returns count distinct questions drawn uniformly from pool.
// The pool itself is left untouched; a nil rng falls back to the global source.
func SelectRandomSubset(pool []Question, count int, rng *rand.Rand) ([]Question, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative question count %d", ErrInvalidArgument, count)
	}
	if count > len(pool) {
		return nil, fmt.Errorf("%w (requested %d, pool %d)", ErrNotEnoughQuestions, count, len(pool))
	}

	shuffled := make([]Question, len(pool))
	for i, q := range pool {
		shuffled[i] = q.clone()
	}

	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if rng != nil {
		rng.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}

	return shuffled[:count:count], nil
}
