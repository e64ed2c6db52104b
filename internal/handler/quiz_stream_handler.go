package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/noah-isme/fresher-training-api/internal/quiz"
)

// upgrade resolves the fresher before the websocket handshake so failures surface as HTTP errors.
func (h *QuizHandler) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	if _, err := currentFresherID(c, h.dashboard); err != nil {
		return sendIdentityError(c, h.logger, err)
	}
	return c.Next()
}

func (h *QuizHandler) stream(conn *websocket.Conn) {
	fresherID, _ := conn.Locals(fresherIDLocal).(uint)

	updates, cleanup, err := h.quizzes.Subscribe(fresherID)
	if err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
		return
	}
	defer cleanup()

	h.logger.Info().Uint("fresher_id", fresherID).Msg("quiz stream connected")
	defer h.logger.Info().Uint("fresher_id", fresherID).Msg("quiz stream disconnected")

	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-disconnected:
			return
		case snapshot, ok := <-updates:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "quiz finished"))
				return
			}
			if err := conn.WriteJSON(snapshot); err != nil {
				h.logger.Warn().Err(err).Uint("fresher_id", fresherID).Msg("failed to write quiz snapshot")
				return
			}
			if snapshot.State == string(quiz.StateCompleted) {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "quiz completed"))
				return
			}
		}
	}
}
