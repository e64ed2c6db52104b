package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/quiz"
	"github.com/noah-isme/fresher-training-api/internal/service"
	"github.com/noah-isme/fresher-training-api/internal/utils"
)

const (
	defaultAttemptLimit = 20
	maxAttemptLimit     = 100
)

// QuizHandler exposes the fresher quiz lifecycle and its live stream.
type QuizHandler struct {
	quizzes   service.QuizSessionService
	dashboard service.FresherDashboardService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewQuizHandler constructs a quiz handler.
func NewQuizHandler(quizzes service.QuizSessionService, dashboard service.FresherDashboardService, validate *validator.Validate, logger zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizzes:   quizzes,
		dashboard: dashboard,
		validator: validate,
		logger:    logger.With().Str("component", "quiz_handler").Logger(),
	}
}

// Register binds quiz routes under the fresher router group.
func (h *QuizHandler) Register(router fiber.Router) {
	group := router.Group("/quiz")
	group.Get("/attempts", h.attempts)
	group.Post("/sessions", h.start)
	group.Get("/sessions/current", h.current)
	group.Post("/sessions/answer", h.answer)
	group.Post("/sessions/advance", h.advance)
	group.Delete("/sessions/current", h.abandon)
	group.Get("/sessions/report", h.report)

	group.Use("/ws", h.upgrade)
	group.Get("/ws", websocket.New(h.stream))
}

func (h *QuizHandler) start(c *fiber.Ctx) error {
	fresherID, err := currentFresherID(c, h.dashboard)
	if err != nil {
		return sendIdentityError(c, h.logger, err)
	}

	var payload dto.QuizStartRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.quizError(c, err)
	}

	session, err := h.quizzes.Start(c.UserContext(), fresherID, payload.QuestionCount)
	if err != nil {
		return h.quizError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "quiz session started", session)
}

func (h *QuizHandler) current(c *fiber.Ctx) error {
	fresherID, err := currentFresherID(c, h.dashboard)
	if err != nil {
		return sendIdentityError(c, h.logger, err)
	}

	session, err := h.quizzes.Current(c.UserContext(), fresherID)
	if err != nil {
		return h.quizError(c, err)
	}
	return utils.SendSuccess(c, "quiz session retrieved", session)
}

func (h *QuizHandler) answer(c *fiber.Ctx) error {
	fresherID, err := currentFresherID(c, h.dashboard)
	if err != nil {
		return sendIdentityError(c, h.logger, err)
	}

	var payload dto.QuizAnswerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.quizError(c, err)
	}

	session, err := h.quizzes.SelectAnswer(c.UserContext(), fresherID, *payload.OptionIndex)
	if err != nil {
		return h.quizError(c, err)
	}
	return utils.SendSuccess(c, "answer recorded", session)
}

func (h *QuizHandler) advance(c *fiber.Ctx) error {
	fresherID, err := currentFresherID(c, h.dashboard)
	if err != nil {
		return sendIdentityError(c, h.logger, err)
	}

	session, err := h.quizzes.Advance(c.UserContext(), fresherID)
	if err != nil {
		return h.quizError(c, err)
	}

	message := "moved to next question"
	if session.State == string(quiz.StateCompleted) {
		message = "quiz submitted"
	}
	return utils.SendSuccess(c, message, session)
}

func (h *QuizHandler) abandon(c *fiber.Ctx) error {
	fresherID, err := currentFresherID(c, h.dashboard)
	if err != nil {
		return sendIdentityError(c, h.logger, err)
	}

	session, err := h.quizzes.Abandon(c.UserContext(), fresherID)
	if err != nil {
		return h.quizError(c, err)
	}
	return utils.SendSuccess(c, "quiz abandoned", session)
}

func (h *QuizHandler) report(c *fiber.Ctx) error {
	fresherID, err := currentFresherID(c, h.dashboard)
	if err != nil {
		return sendIdentityError(c, h.logger, err)
	}

	report, err := h.quizzes.Report(c.UserContext(), fresherID)
	if err != nil {
		return h.quizError(c, err)
	}
	return utils.SendSuccess(c, "quiz report", report)
}

func (h *QuizHandler) attempts(c *fiber.Ctx) error {
	fresherID, err := currentFresherID(c, h.dashboard)
	if err != nil {
		return sendIdentityError(c, h.logger, err)
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	if limit <= 0 {
		limit = defaultAttemptLimit
	} else if limit > maxAttemptLimit {
		limit = maxAttemptLimit
	}

	attempts, err := h.dashboard.ListAttempts(c.UserContext(), fresherID, limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("fresher_id", fresherID).Msg("failed to list quiz attempts")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list quiz attempts")
	}

	return utils.OK(c, attempts, "quiz attempts retrieved", fiber.Map{"count": len(attempts)})
}

func (h *QuizHandler) quizError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "validation failed", validationDetails(err))
	case errors.Is(err, service.ErrQuizSessionActive):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrQuizSessionNotFinished):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrQuizSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, quiz.ErrInvalidArgument):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("quiz operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "quiz operation failed")
	}
}
