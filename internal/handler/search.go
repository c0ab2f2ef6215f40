package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"cinema-bot/internal/kinopoisk"
	"cinema-bot/internal/model"
	"cinema-bot/internal/repository"
)

// DefaultResultTTL is how long a user's search result set survives unused.
const DefaultResultTTL = time.Hour

// resultSet holds one user's last search results for button navigation.
// It is superseded in full by the user's next search.
type resultSet struct {
	movies   []model.MovieInfo
	storedAt time.Time
}

// SearchHandler handles free-text movie search, result navigation and
// random picks.
type SearchHandler struct {
	catalog *kinopoisk.Client
	history *repository.HistoryRepository
	limit   int
	ttl     time.Duration

	mu      sync.Mutex
	results map[int64]*resultSet
}

// NewSearchHandler creates a new SearchHandler. limit caps how many matches
// a search resolves; ttl bounds how long an idle result set is kept.
func NewSearchHandler(catalog *kinopoisk.Client, history *repository.HistoryRepository, limit int, ttl time.Duration) *SearchHandler {
	if limit <= 0 {
		limit = 5
	}
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &SearchHandler{
		catalog: catalog,
		history: history,
		limit:   limit,
		ttl:     ttl,
		results: make(map[int64]*resultSet),
	}
}

// StartCleaner launches a background sweep removing idle result sets.
func (h *SearchHandler) StartCleaner(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			h.sweep(time.Now())
		}
	}()
}

// sweep drops result sets stored before now-ttl.
func (h *SearchHandler) sweep(now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, rs := range h.results {
		if now.Sub(rs.storedAt) >= h.ttl {
			delete(h.results, userID)
		}
	}
}

// HandleText handles a free-text message as a movie search query.
func (h *SearchHandler) HandleText(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	query := strings.TrimSpace(c.Text())
	if query == "" || strings.HasPrefix(query, "/") {
		return nil
	}

	ctx := context.Background()
	log.Info().Int64("user_id", sender.ID).Str("query", query).Msg("Searching for movie")

	status, err := c.Bot().Send(c.Recipient(), "🔍 Ищу информацию о фильме...")
	if err != nil {
		log.Debug().Err(err).Msg("Failed to send status message")
		status = nil
	}

	movies := h.catalog.Search(ctx, query, h.limit)
	if len(movies) == 0 {
		log.Info().Str("query", query).Msg("No movies found")
		if status != nil {
			_, err := c.Bot().Edit(status, "😕 К сожалению, я не нашёл фильмов по вашему запросу.")
			return err
		}
		return c.Send("😕 К сожалению, я не нашёл фильмов по вашему запросу.")
	}

	h.mu.Lock()
	h.results[sender.ID] = &resultSet{movies: movies, storedAt: time.Now()}
	h.mu.Unlock()

	first := movies[0]
	if err := h.history.AddSearch(ctx, sender.ID, query, first.MovieID, first.Title); err != nil {
		log.Warn().Err(err).Int64("user_id", sender.ID).Msg("Failed to record search")
	}
	h.recordView(ctx, sender.ID, &first)

	if status != nil {
		_ = c.Bot().Delete(status)
	}
	return h.sendCard(c, &first, navKeyboard(0, len(movies)))
}

// HandleMovieNav handles a movie_{index} button press, switching the card
// in place to another result of the user's last search.
func (h *SearchHandler) HandleMovieNav(c tele.Context) error {
	cb := c.Callback()
	sender := c.Sender()
	if cb == nil || sender == nil {
		return nil
	}

	index, ok := ParseMovieIndex(callbackData(cb))
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Некорректная кнопка"})
	}

	h.mu.Lock()
	rs := h.results[sender.ID]
	if rs != nil {
		rs.storedAt = time.Now()
	}
	h.mu.Unlock()

	if rs == nil || index >= len(rs.movies) {
		return c.Respond(&tele.CallbackResponse{Text: "Результаты устарели, повторите поиск"})
	}

	movie := rs.movies[index]
	h.recordView(context.Background(), sender.ID, &movie)

	if err := h.editCard(c, &movie, navKeyboard(index, len(rs.movies))); err != nil {
		log.Debug().Err(err).Msg("Failed to switch result card")
	}
	return c.Respond(&tele.CallbackResponse{})
}

// HandleRandom handles the /random command.
func (h *SearchHandler) HandleRandom(c tele.Context) error {
	return h.randomCard(c)
}

// HandleRandomCallback handles the random_movie button.
func (h *SearchHandler) HandleRandomCallback(c tele.Context) error {
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		log.Debug().Err(err).Msg("Failed to acknowledge callback")
	}
	return h.randomCard(c)
}

// randomCard sends a random top-250 movie card.
func (h *SearchHandler) randomCard(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx := context.Background()
	movie, ok := h.catalog.RandomPick(ctx)
	if !ok {
		return c.Send("😕 Не удалось подобрать фильм, попробуйте позже.")
	}

	h.recordView(ctx, sender.ID, &movie)
	return h.sendCard(c, &movie, randomKeyboard())
}

// recordView bumps the per-user view counter; a logging failure never
// breaks the user-facing reply.
func (h *SearchHandler) recordView(ctx context.Context, userID int64, m *model.MovieInfo) {
	if err := h.history.BumpShown(ctx, userID, m.MovieID, m.Title); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Str("movie_id", m.MovieID).Msg("Failed to record view")
	}
}

// sendCard sends a movie card, as a photo with caption when a poster exists.
func (h *SearchHandler) sendCard(c tele.Context, m *model.MovieInfo, markup *tele.ReplyMarkup) error {
	caption := formatCard(m)
	if m.PosterURL != "" {
		photo := &tele.Photo{File: tele.FromURL(m.PosterURL), Caption: caption}
		if markup != nil {
			return c.Send(photo, markup)
		}
		return c.Send(photo)
	}
	if markup != nil {
		return c.Send(caption, markup)
	}
	return c.Send(caption)
}

// editCard replaces the pressed message's card in place; when the edit is
// not possible (e.g. media/text mismatch) a fresh card is sent instead.
func (h *SearchHandler) editCard(c tele.Context, m *model.MovieInfo, markup *tele.ReplyMarkup) error {
	caption := formatCard(m)

	var err error
	if m.PosterURL != "" {
		photo := &tele.Photo{File: tele.FromURL(m.PosterURL), Caption: caption}
		if markup != nil {
			err = c.Edit(photo, markup)
		} else {
			err = c.Edit(photo)
		}
	} else {
		if markup != nil {
			err = c.Edit(caption, markup)
		} else {
			err = c.Edit(caption)
		}
	}
	if err != nil {
		log.Debug().Err(err).Msg("Edit failed, sending a new card")
		return h.sendCard(c, m, markup)
	}
	return nil
}

// formatCard renders a movie card as message text.
func formatCard(m *model.MovieInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🎬 %s\n\n", m.Title)
	if m.Overview != "" {
		fmt.Fprintf(&b, "📝 %s\n\n", m.Overview)
	}
	fmt.Fprintf(&b, "⭐ Рейтинг: %.1f/10\n", m.Rating)
	if m.ReleaseYear != "" {
		fmt.Fprintf(&b, "📅 Год выпуска: %s\n", m.ReleaseYear)
	}
	if m.FilmLength != "" {
		fmt.Fprintf(&b, "⏱ Длительность: %s\n", m.FilmLength)
	}
	b.WriteString("\n")
	if len(m.Genres) > 0 {
		fmt.Fprintf(&b, "🎭 Жанры: %s\n", strings.Join(m.Genres, ", "))
	}
	if len(m.Countries) > 0 {
		fmt.Fprintf(&b, "🌍 Страны: %s\n", strings.Join(m.Countries, ", "))
	}
	if len(m.ViewingLinks) > 0 {
		b.WriteString("\n🔗 Ссылки для просмотра:\n")
		for _, link := range m.ViewingLinks {
			fmt.Fprintf(&b, "• %s\n", link)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
