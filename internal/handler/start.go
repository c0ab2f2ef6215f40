package handler

import (
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"cinema-bot/internal/quiz"
)

// StartHandler handles the /start and /help commands.
type StartHandler struct{}

// NewStartHandler creates a new StartHandler.
func NewStartHandler() *StartHandler {
	return &StartHandler{}
}

// HandleStart handles the /start command.
func (h *StartHandler) HandleStart(c tele.Context) error {
	if sender := c.Sender(); sender != nil {
		log.Info().Int64("user_id", sender.ID).Msg("User started the bot")
	}

	markup := &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{
			{
				{Text: "🎲 Случайный фильм", Data: RandomCallback},
			},
			{
				{Text: "🎮 Угадай фильм", Data: quiz.NewGameCallback},
			},
		},
	}

	return c.Send(
		"Привет! Я бот для поиска фильмов. 🎬\n\n"+
			"Просто напиши название фильма, и я найду информацию о нём!\n"+
			"Также доступны команды:\n"+
			"/help - показать справку\n"+
			"/random - случайный фильм\n"+
			"/game - игра «Угадай фильм»\n"+
			"/history - история поиска\n"+
			"/stats - статистика просмотров",
		markup,
	)
}

// HandleHelp handles the /help command.
func (h *StartHandler) HandleHelp(c tele.Context) error {
	return c.Send(
		"Я умею искать фильмы! 🎥\n\n" +
			"Просто напиши название фильма, и я найду информацию о нём.\n" +
			"Я покажу:\n" +
			"• Название и описание\n" +
			"• Рейтинг\n" +
			"• Постер\n" +
			"• Жанры и страны\n" +
			"• Длительность\n" +
			"• Ссылки для просмотра\n\n" +
			"Если нашлось несколько фильмов, листай их кнопками под карточкой.\n\n" +
			"Команды:\n" +
			"/start - начать работу\n" +
			"/help - показать это сообщение\n" +
			"/random - случайный фильм из топ-250\n" +
			"/game - угадай фильм по описанию (5 вопросов)\n" +
			"/history - история поиска\n" +
			"/stats - статистика просмотров",
	)
}
