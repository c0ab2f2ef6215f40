// Package bot provides the Telegram bot initialization and handler
// registration.
package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"cinema-bot/internal/config"
	"cinema-bot/internal/handler"
	"cinema-bot/internal/kinopoisk"
	"cinema-bot/internal/pkg/lock"
	"cinema-bot/internal/quiz"
	"cinema-bot/internal/repository"
)

// cleanerInterval is how often the idle search-result sweep runs.
const cleanerInterval = 5 * time.Minute

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	startHandler   *handler.StartHandler
	searchHandler  *handler.SearchHandler
	quizHandler    *handler.QuizHandler
	historyHandler *handler.HistoryHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config   *config.Config
	Catalog  *kinopoisk.Client
	Engine   *quiz.Engine
	History  *repository.HistoryRepository
	UserLock *lock.UserLock
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot: teleBot,
		cfg: deps.Config,
	}

	b.startHandler = handler.NewStartHandler()
	b.searchHandler = handler.NewSearchHandler(
		deps.Catalog,
		deps.History,
		deps.Config.Search.ResultLimit,
		deps.Config.Search.CacheTTL,
	)
	b.quizHandler = handler.NewQuizHandler(deps.Engine, deps.UserLock)
	b.historyHandler = handler.NewHistoryHandler(deps.History)

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
	b.bot.Use(RecoveryMiddleware())
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.startHandler.HandleStart)
	b.bot.Handle("/help", b.startHandler.HandleHelp)

	b.bot.Handle("/random", b.searchHandler.HandleRandom)
	b.bot.Handle("/game", b.quizHandler.HandleGame)

	b.bot.Handle("/history", b.historyHandler.HandleHistory)
	b.bot.Handle("/stats", b.historyHandler.HandleStats)

	// Any other text is a search query
	b.bot.Handle(tele.OnText, b.searchHandler.HandleText)

	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleCallback routes button presses to the appropriate handler by
// payload prefix.
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	// Telebot v3 may add a \f prefix to callback data
	data := strings.TrimPrefix(callback.Data, "\f")
	log.Debug().Str("data", data).Msg("Callback received")

	switch {
	case strings.HasPrefix(data, handler.MoviePrefix):
		return b.searchHandler.HandleMovieNav(c)
	case strings.HasPrefix(data, quiz.AnswerPrefix):
		return b.quizHandler.HandleAnswer(c)
	case data == quiz.NextQuestionCallback:
		return b.quizHandler.HandleNext(c)
	case data == quiz.NewGameCallback:
		return b.quizHandler.HandleNewGame(c)
	case data == handler.RandomCallback:
		return b.searchHandler.HandleRandomCallback(c)
	}

	log.Debug().Str("data", data).Msg("Unknown callback payload")
	return c.Respond(&tele.CallbackResponse{})
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")

	b.searchHandler.StartCleaner(cleanerInterval)

	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
