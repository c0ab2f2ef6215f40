package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"cinema-bot/internal/repository"
)

// historyLimit caps how many rows /history and /stats display.
const historyLimit = 10

// HistoryHandler handles the search history and view statistics commands.
type HistoryHandler struct {
	history *repository.HistoryRepository
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history *repository.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// HandleHistory handles the /history command.
func (h *HistoryHandler) HandleHistory(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	records, err := h.history.RecentSearches(context.Background(), sender.ID, historyLimit)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to load search history")
		return c.Send("😔 Не удалось загрузить историю, попробуйте позже.")
	}
	if len(records) == 0 {
		return c.Send("У вас пока нет истории поиска.")
	}

	var b strings.Builder
	b.WriteString("📜 Ваша история поиска:\n\n")
	for _, rec := range records {
		fmt.Fprintf(&b, "• %s\n", rec.MovieTitle)
		fmt.Fprintf(&b, "  Поисковый запрос: %s\n", rec.Query)
		fmt.Fprintf(&b, "  Дата: %s\n\n", rec.CreatedAt.Format("02.01.2006 15:04"))
	}

	return c.Send(strings.TrimRight(b.String(), "\n"))
}

// HandleStats handles the /stats command.
func (h *HistoryHandler) HandleStats(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	stats, err := h.history.TopShown(context.Background(), sender.ID, historyLimit)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to load view stats")
		return c.Send("😔 Не удалось загрузить статистику, попробуйте позже.")
	}
	if len(stats) == 0 {
		return c.Send("У вас пока нет статистики просмотров.")
	}

	var b strings.Builder
	b.WriteString("📊 Ваша статистика просмотров:\n\n")
	for _, st := range stats {
		fmt.Fprintf(&b, "• %s\n", st.MovieTitle)
		fmt.Fprintf(&b, "  Показано раз: %d\n\n", st.TimesShown)
	}

	return c.Send(strings.TrimRight(b.String(), "\n"))
}
