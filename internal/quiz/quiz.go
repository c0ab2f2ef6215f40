package quiz

import (
	"context"
	"errors"
	"math/rand"
	"strings"

	"cinema-bot/internal/model"
)

const (
	// DefaultQuestions is the number of questions per game.
	DefaultQuestions = 5

	// DefaultOptions is the number of answer options per question.
	DefaultOptions = 4

	// titleMask replaces the movie's own title inside the clue.
	titleMask = "***"
)

// Errors returned by the engine.
var (
	// ErrNoSession means the user has no game in progress.
	ErrNoSession = errors.New("no game session")

	// ErrNoPending means a selection arrived with no question awaiting an
	// answer (stale or duplicate press).
	ErrNoPending = errors.New("no pending question")

	// ErrNotReady means the catalog could not supply enough movies with a
	// usable overview to build a question.
	ErrNotReady = errors.New("not enough movies for a question")
)

// Catalog is the part of the movie catalog the quiz needs.
type Catalog interface {
	SampleForGame(ctx context.Context, count int) ([]model.MovieInfo, bool)
}

// Option is one selectable answer.
type Option struct {
	MovieID string
	Title   string
}

// Question is an emitted trivia question: a clue (the correct movie's
// overview with its title masked) and a shuffled option list.
type Question struct {
	Ordinal int // 1-based
	Total   int
	Clue    string
	Options []Option
}

// Verdict is the outcome of judging one answer.
type Verdict struct {
	Correct  bool
	Answer   model.MovieInfo // the movie that was the correct answer
	Score    int
	Total    int
	Finished bool // all questions judged; the next advance shows the summary
}

// Summary is the final score report of a finished game.
type Summary struct {
	Score   int
	Total   int
	Percent int
	Message string
}

// Config holds engine configuration.
type Config struct {
	Questions int
	Options   int
}

// Engine drives the trivia state machine on top of a session store and the
// movie catalog.
type Engine struct {
	catalog   Catalog
	store     *Store
	questions int
	options   int
}

// NewEngine creates a new Engine.
func NewEngine(catalog Catalog, store *Store, cfg *Config) *Engine {
	questions := DefaultQuestions
	options := DefaultOptions

	if cfg != nil {
		if cfg.Questions > 0 {
			questions = cfg.Questions
		}
		if cfg.Options > 1 {
			options = cfg.Options
		}
	}

	return &Engine{
		catalog:   catalog,
		store:     store,
		questions: questions,
		options:   options,
	}
}

// Start begins a fresh game for the user, discarding any game in progress,
// and produces question 1.
func (e *Engine) Start(ctx context.Context, userID int64) (*Question, error) {
	sess := e.store.CreateOrReset(userID)
	return e.produce(ctx, sess)
}

// Next advances the game: it either produces the next question or, when all
// questions have been judged, returns the final summary and deletes the
// session. Exactly one of the two return values is non-nil on success.
func (e *Engine) Next(ctx context.Context, userID int64) (*Question, *Summary, error) {
	sess, ok := e.store.Get(userID)
	if !ok {
		return nil, nil, ErrNoSession
	}

	if sess.Total >= e.questions {
		summary := e.summarize(sess)
		e.store.Delete(userID)
		return nil, summary, nil
	}

	q, err := e.produce(ctx, sess)
	if err != nil {
		return nil, nil, err
	}
	return q, nil, nil
}

// Judge checks a selected movie id against the pending answer. The pending
// answer is cleared before anything else so a duplicate selection is
// rejected rather than double-scored. The next question is not produced
// here; that happens only on an explicit advance.
func (e *Engine) Judge(userID int64, movieID string) (*Verdict, error) {
	sess, ok := e.store.Get(userID)
	if !ok {
		return nil, ErrNoSession
	}
	if sess.Pending == nil {
		return nil, ErrNoPending
	}

	answer := *sess.Pending
	sess.Pending = nil
	sess.Distractors = nil

	correct := answer.MovieID == movieID
	sess.Total++
	if correct {
		sess.Score++
	}

	return &Verdict{
		Correct:  correct,
		Answer:   answer,
		Score:    sess.Score,
		Total:    sess.Total,
		Finished: sess.Total >= e.questions,
	}, nil
}

// produce builds the next question and stores the pending answer on the
// session. On sampling failure the session keeps no pending answer.
func (e *Engine) produce(ctx context.Context, sess *Session) (*Question, error) {
	movies, ok := e.catalog.SampleForGame(ctx, e.options)
	if !ok {
		sess.Pending = nil
		sess.Distractors = nil
		return nil, ErrNotReady
	}

	correctIdx := rand.Intn(len(movies))
	correct := movies[correctIdx]
	sess.Pending = &correct

	distractors := make([]model.MovieInfo, 0, len(movies)-1)
	for i, m := range movies {
		if i != correctIdx {
			distractors = append(distractors, m)
		}
	}
	sess.Distractors = distractors

	options := make([]Option, 0, len(movies))
	for _, m := range movies {
		options = append(options, Option{MovieID: m.MovieID, Title: m.Title})
	}
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return &Question{
		Ordinal: sess.Total + 1,
		Total:   e.questions,
		Clue:    maskTitle(correct.Overview, correct.Title),
		Options: options,
	}, nil
}

// summarize computes the final score report with a tiered message.
func (e *Engine) summarize(sess *Session) *Summary {
	percent := 0
	if sess.Total > 0 {
		percent = sess.Score * 100 / sess.Total
	}

	var message string
	switch {
	case percent == 100:
		message = "🏆 Потрясающе! Вы настоящий киноман!"
	case percent >= 80:
		message = "🎉 Отличный результат!"
	case percent >= 60:
		message = "👍 Неплохо, но есть куда расти."
	default:
		message = "📚 Стоит пересмотреть классику!"
	}

	return &Summary{
		Score:   sess.Score,
		Total:   sess.Total,
		Percent: percent,
		Message: message,
	}
}

// maskTitle hides every occurrence of the movie's title inside its overview,
// case-insensitively, so the clue does not trivially reveal the answer.
func maskTitle(overview, title string) string {
	if title == "" || overview == "" {
		return overview
	}

	lower := strings.ToLower(overview)
	needle := strings.ToLower(title)

	// Lowercasing can change byte lengths for some scripts; fall back to a
	// case-sensitive replace when indices would not line up.
	if len(lower) != len(overview) || len(needle) != len(title) {
		return strings.ReplaceAll(overview, title, titleMask)
	}

	var b strings.Builder
	for {
		i := strings.Index(lower, needle)
		if i < 0 {
			b.WriteString(overview)
			return b.String()
		}
		b.WriteString(overview[:i])
		b.WriteString(titleMask)
		overview = overview[i+len(needle):]
		lower = lower[i+len(needle):]
	}
}
