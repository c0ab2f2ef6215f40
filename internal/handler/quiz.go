package handler

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"cinema-bot/internal/pkg/lock"
	"cinema-bot/internal/quiz"
)

// QuizHandler handles the trivia game commands and buttons.
type QuizHandler struct {
	engine   *quiz.Engine
	kb       *quiz.KeyboardBuilder
	userLock *lock.UserLock
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(engine *quiz.Engine, userLock *lock.UserLock) *QuizHandler {
	return &QuizHandler{
		engine:   engine,
		kb:       quiz.NewKeyboardBuilder(),
		userLock: userLock,
	}
}

// HandleGame handles the /game command: starts a fresh game and sends
// question 1.
func (h *QuizHandler) HandleGame(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	h.userLock.Lock(sender.ID)
	defer h.userLock.Unlock(sender.ID)

	q, err := h.engine.Start(context.Background(), sender.ID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", sender.ID).Msg("Failed to start quiz")
		return c.Send("😕 Не удалось подготовить вопросы, попробуйте позже.")
	}

	log.Info().Int64("user_id", sender.ID).Msg("Quiz started")
	return c.Send(quiz.FormatQuestion(q), h.kb.BuildOptions(q))
}

// HandleNewGame handles the new_game button: starts a fresh game in a new
// message, leaving the previous summary in place.
func (h *QuizHandler) HandleNewGame(c tele.Context) error {
	if cb := c.Callback(); cb != nil {
		if err := c.Respond(&tele.CallbackResponse{}); err != nil {
			log.Debug().Err(err).Msg("Failed to acknowledge callback")
		}
	}
	return h.HandleGame(c)
}

// HandleAnswer handles a game_{movieId} button press.
func (h *QuizHandler) HandleAnswer(c tele.Context) error {
	cb := c.Callback()
	sender := c.Sender()
	if cb == nil || sender == nil {
		return nil
	}

	movieID, ok := quiz.DecodeAnswer(callbackData(cb))
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Некорректная кнопка"})
	}

	h.userLock.Lock(sender.ID)
	defer h.userLock.Unlock(sender.ID)

	verdict, err := h.engine.Judge(sender.ID, movieID)
	if err != nil {
		// Stale or duplicate press: reject without touching any session.
		return c.Respond(&tele.CallbackResponse{Text: "⏰ Вопрос устарел, начните новую игру"})
	}

	toast := "❌ Неверно"
	if verdict.Correct {
		toast = "✅ Верно!"
	}

	if err := c.Edit(quiz.FormatVerdict(verdict), h.kb.BuildNext(verdict.Finished)); err != nil {
		log.Debug().Err(err).Msg("Failed to edit question message")
	}
	return c.Respond(&tele.CallbackResponse{Text: toast})
}

// HandleNext handles the next_question button: shows the next question or
// the final summary.
func (h *QuizHandler) HandleNext(c tele.Context) error {
	cb := c.Callback()
	sender := c.Sender()
	if cb == nil || sender == nil {
		return nil
	}

	h.userLock.Lock(sender.ID)
	defer h.userLock.Unlock(sender.ID)

	q, summary, err := h.engine.Next(context.Background(), sender.ID)
	switch {
	case errors.Is(err, quiz.ErrNoSession):
		return c.Respond(&tele.CallbackResponse{Text: "⏰ Игра устарела, начните новую"})
	case errors.Is(err, quiz.ErrNotReady):
		if respondErr := c.Respond(&tele.CallbackResponse{}); respondErr != nil {
			log.Debug().Err(respondErr).Msg("Failed to acknowledge callback")
		}
		return c.Send("😕 Не удалось подготовить вопрос, попробуйте ещё раз.")
	case err != nil:
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to advance quiz")
		return c.Respond(&tele.CallbackResponse{Text: "😔 Произошла ошибка"})
	}

	if summary != nil {
		log.Info().
			Int64("user_id", sender.ID).
			Int("score", summary.Score).
			Int("total", summary.Total).
			Msg("Quiz finished")
		if err := c.Edit(quiz.FormatSummary(summary), h.kb.BuildNewGame()); err != nil {
			log.Debug().Err(err).Msg("Failed to edit summary message")
		}
		return c.Respond(&tele.CallbackResponse{})
	}

	if err := c.Edit(quiz.FormatQuestion(q), h.kb.BuildOptions(q)); err != nil {
		log.Debug().Err(err).Msg("Failed to edit question message")
	}
	return c.Respond(&tele.CallbackResponse{})
}
