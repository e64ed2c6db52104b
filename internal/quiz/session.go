package quiz

// DefaultDurationSeconds is the countdown a session starts with unless overridden.
const DefaultDurationSeconds = 300

// State is the lifecycle state of a session.
type State string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// CompletionReason records how a session reached the completed state.
type CompletionReason string

const (
	ReasonNone      CompletionReason = ""
	ReasonSubmitted CompletionReason = "submitted"
	ReasonTimeout   CompletionReason = "timeout"
	ReasonAbandoned CompletionReason = "abandoned"
)

// QuestionResult is the review line for a single question of a finished session.
type QuestionResult struct {
	Question  Question `json:"question"`
	Selected  *int     `json:"selected"`
	IsCorrect bool     `json:"is_correct"`
}

// Snapshot is a read-only copy of the session state for rendering.
type Snapshot struct {
	State                State            `json:"state"`
	Reason               CompletionReason `json:"reason,omitempty"`
	CurrentIndex         int              `json:"current_index"`
	TotalQuestions       int              `json:"total_questions"`
	TimeRemainingSeconds int              `json:"time_remaining_seconds"`
	Answers              map[int]int      `json:"answers"`
}

// Option customises a new session.
type Option func(*Session)

// WithDuration overrides the countdown in seconds. Non-positive values are ignored.
func WithDuration(seconds int) Option {
	return func(s *Session) {
		if seconds > 0 {
			s.duration = seconds
			s.remaining = seconds
		}
	}
}

// WithUnansweredAdvance lets Advance move past a question with no recorded answer.
func WithUnansweredAdvance() Option {
	return func(s *Session) {
		s.allowUnanswered = true
	}
}

// Session is the quiz state machine. It is not safe for concurrent use;
// owners serialise access to it.
type Session struct {
	questions       []Question
	answers         map[int]int
	currentIndex    int
	duration        int
	remaining       int
	state           State
	reason          CompletionReason
	allowUnanswered bool
}

// NewSession starts a session over the given questions.
func NewSession(questions []Question, opts ...Option) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrEmptySession
	}

	stored := make([]Question, len(questions))
	for i, q := range questions {
		stored[i] = q.clone()
	}

	s := &Session{
		questions: stored,
		answers:   make(map[int]int, len(questions)),
		duration:  DefaultDurationSeconds,
		remaining: DefaultDurationSeconds,
		state:     StateInProgress,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// SelectAnswer records option for the current question, replacing any earlier pick.
func (s *Session) SelectAnswer(option int) error {
	if s.state != StateInProgress {
		return ErrSessionCompleted
	}

	current := s.questions[s.currentIndex]
	if option < 0 || option >= len(current.Options) {
		return ErrOptionOutOfRange
	}

	s.answers[s.currentIndex] = option
	return nil
}

// Advance moves to the next question. It returns true when this call completed the session.
func (s *Session) Advance() (bool, error) {
	if s.state != StateInProgress {
		return false, ErrSessionCompleted
	}

	if _, answered := s.answers[s.currentIndex]; !answered && !s.allowUnanswered {
		return false, ErrAnswerRequired
	}

	if s.currentIndex == len(s.questions)-1 {
		s.currentIndex = len(s.questions)
		s.complete(ReasonSubmitted)
		return true, nil
	}

	s.currentIndex++
	return false, nil
}

// Tick consumes one second of the countdown. It returns true when the tick forced completion.
// Ticks on a completed session do nothing.
func (s *Session) Tick() bool {
	if s.state != StateInProgress {
		return false
	}

	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		s.complete(ReasonTimeout)
		return true
	}
	return false
}

// Abandon ends an in-progress session without submitting it.
func (s *Session) Abandon() error {
	if s.state != StateInProgress {
		return ErrSessionCompleted
	}
	s.complete(ReasonAbandoned)
	return nil
}

func (s *Session) complete(reason CompletionReason) {
	s.state = StateCompleted
	s.reason = reason
}

// Completed reports whether the session reached a terminal state.
func (s *Session) Completed() bool {
	return s.state == StateCompleted
}

// Reason returns how the session ended, or ReasonNone while in progress.
func (s *Session) Reason() CompletionReason {
	return s.reason
}

// TotalQuestions returns N.
func (s *Session) TotalQuestions() int {
	return len(s.questions)
}

// ElapsedSeconds returns how much of the countdown was consumed.
func (s *Session) ElapsedSeconds() int {
	return s.duration - s.remaining
}

// CurrentQuestion returns the question awaiting an answer; ok is false once completed.
func (s *Session) CurrentQuestion() (Question, bool) {
	if s.state != StateInProgress {
		return Question{}, false
	}
	return s.questions[s.currentIndex].clone(), true
}

// Score counts the recorded answers matching the correct option.
func (s *Session) Score() int {
	score := 0
	for idx, q := range s.questions {
		if selected, ok := s.answers[idx]; ok && q.IsCorrect(selected) {
			score++
		}
	}
	return score
}

// Results lists every question with the selection made and its correctness.
func (s *Session) Results() []QuestionResult {
	results := make([]QuestionResult, 0, len(s.questions))
	for idx, q := range s.questions {
		result := QuestionResult{Question: q.clone()}
		if selected, ok := s.answers[idx]; ok {
			value := selected
			result.Selected = &value
			result.IsCorrect = q.IsCorrect(selected)
		}
		results = append(results, result)
	}
	return results
}

// Answers returns a copy of the recorded answers keyed by question position.
func (s *Session) Answers() map[int]int {
	out := make(map[int]int, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Snapshot captures the state for presentation.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		State:                s.state,
		Reason:               s.reason,
		CurrentIndex:         s.currentIndex,
		TotalQuestions:       len(s.questions),
		TimeRemainingSeconds: s.remaining,
		Answers:              s.Answers(),
	}
}
