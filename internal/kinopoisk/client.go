// Package kinopoisk implements the client for the Kinopoisk Unofficial API.
// It provides keyword search, detail lookup and a cached top-250 listing
// used as the sampling pool for random picks and quiz questions.
//
// An upstream non-2xx response is collapsed to "no data" on every operation:
// callers see absence, never an error code. This mirrors the product decision
// that a failed search is indistinguishable from an empty one.
package kinopoisk

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"cinema-bot/internal/model"
)

const (
	// DefaultBaseURL is the production API host.
	DefaultBaseURL = "https://kinopoiskapiunofficial.tech"

	searchPath = "/api/v2.1/films/search-by-keyword"
	filmPath   = "/api/v2.2/films"
	topPath    = "/api/v2.2/films/top"

	// overviewLimit is the maximum overview length in characters before
	// the ellipsis marker is appended.
	overviewLimit = 150

	// topPages is the number of pages enumerating the top-250 listing.
	topPages = 13

	// topListTTL is how long a fetched top listing stays fresh.
	topListTTL = time.Hour

	// poolFactor caps game sampling at poolFactor×count qualifying
	// entries so consecutive games don't reuse the same small set.
	poolFactor = 3

	viewingLinkFormat = "https://www.kinopoisk.vip/film/%s/"
)

// Config holds client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Kinopoisk Unofficial API. It owns the process-wide
// top-250 snapshot shared by random picks and quiz sampling; a refresh race
// between two stale readers is tolerated (last write wins).
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client

	topMu      sync.Mutex
	topFilms   []model.TopFilm
	topFetched time.Time
}

// New creates a new Client with the given configuration.
func New(cfg *Config) *Client {
	baseURL := DefaultBaseURL
	timeout := 15 * time.Second

	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Search performs a keyword search and resolves up to limit matches via
// Detail. Matches whose detail lookup fails are dropped. A failed keyword
// search yields an empty slice.
func (c *Client) Search(ctx context.Context, query string, limit int) []model.MovieInfo {
	u := fmt.Sprintf("%s%s?keyword=%s", c.baseURL, searchPath, url.QueryEscape(query))

	var resp searchResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		log.Debug().Err(err).Str("query", query).Msg("Keyword search failed")
		return nil
	}

	// Only the first limit matches are considered; a match whose detail
	// lookup fails is dropped, not replaced by a later one.
	matches := resp.Films
	if len(matches) > limit {
		matches = matches[:limit]
	}

	movies := make([]model.MovieInfo, 0, len(matches))
	for _, f := range matches {
		info, ok := c.Detail(ctx, strconv.FormatInt(f.FilmID, 10))
		if ok {
			movies = append(movies, info)
		}
	}
	return movies
}

// Detail fetches one movie record by id. The second return value is false
// on any upstream failure.
func (c *Client) Detail(ctx context.Context, movieID string) (model.MovieInfo, bool) {
	u := fmt.Sprintf("%s%s/%s", c.baseURL, filmPath, movieID)

	var resp filmResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		log.Debug().Err(err).Str("movie_id", movieID).Msg("Detail lookup failed")
		return model.MovieInfo{}, false
	}

	title := resp.NameRu
	if title == "" {
		title = resp.NameEn
	}
	if title == "" {
		title = resp.NameOriginal
	}

	genres := make([]string, 0, len(resp.Genres))
	for _, g := range resp.Genres {
		genres = append(genres, g.Genre)
	}
	countries := make([]string, 0, len(resp.Countries))
	for _, co := range resp.Countries {
		countries = append(countries, co.Country)
	}

	return model.MovieInfo{
		Title:        title,
		Overview:     truncateOverview(resp.Description),
		Rating:       float64(resp.Rating),
		PosterURL:    resp.PosterURL,
		ReleaseYear:  string(resp.Year),
		MovieID:      movieID,
		ViewingLinks: []string{fmt.Sprintf(viewingLinkFormat, movieID)},
		Genres:       genres,
		Countries:    countries,
		FilmLength:   string(resp.FilmLength),
	}, true
}

// TopFilms returns the top-250 listing, serving the cached snapshot while it
// is fresher than an hour. A page that fails or comes back empty is skipped,
// so the listing may be partial; a pick from a smaller universe is still
// valid.
func (c *Client) TopFilms(ctx context.Context) []model.TopFilm {
	c.topMu.Lock()
	if len(c.topFilms) > 0 && time.Since(c.topFetched) < topListTTL {
		films := c.topFilms
		c.topMu.Unlock()
		return films
	}
	c.topMu.Unlock()

	films := c.fetchTop(ctx)
	if len(films) > 0 {
		c.topMu.Lock()
		c.topFilms = films
		c.topFetched = time.Now()
		c.topMu.Unlock()
	}
	return films
}

// fetchTop enumerates all pages of the top-250 listing.
func (c *Client) fetchTop(ctx context.Context) []model.TopFilm {
	films := make([]model.TopFilm, 0, 250)
	for page := 1; page <= topPages; page++ {
		u := fmt.Sprintf("%s%s?type=TOP_250_BEST_FILMS&page=%d", c.baseURL, topPath, page)

		var resp topResponse
		if err := c.getJSON(ctx, u, &resp); err != nil {
			log.Debug().Err(err).Int("page", page).Msg("Top listing page failed, skipping")
			continue
		}
		for _, f := range resp.Films {
			films = append(films, model.TopFilm{
				FilmID: f.FilmID,
				NameRu: f.NameRu,
				NameEn: f.NameEn,
			})
		}
	}
	log.Info().Int("count", len(films)).Msg("Top listing refreshed")
	return films
}

// RandomPick shuffles the top listing and resolves the first entry.
// Returns false if the listing is empty or the detail lookup fails.
func (c *Client) RandomPick(ctx context.Context) (model.MovieInfo, bool) {
	top := c.TopFilms(ctx)
	if len(top) == 0 {
		return model.MovieInfo{}, false
	}

	shuffled := make([]model.TopFilm, len(top))
	copy(shuffled, top)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return c.Detail(ctx, strconv.FormatInt(shuffled[0].FilmID, 10))
}

// SampleForGame draws exactly count movies with non-empty overviews from the
// top listing, uniformly without replacement. Resolution walks the shuffled
// listing and stops once poolFactor×count qualifying entries are collected.
// Returns false if fewer than count qualify.
func (c *Client) SampleForGame(ctx context.Context, count int) ([]model.MovieInfo, bool) {
	if count <= 0 {
		return nil, false
	}

	top := c.TopFilms(ctx)
	shuffled := make([]model.TopFilm, len(top))
	copy(shuffled, top)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	pool := make([]model.MovieInfo, 0, poolFactor*count)
	for _, f := range shuffled {
		info, ok := c.Detail(ctx, strconv.FormatInt(f.FilmID, 10))
		if !ok || info.Overview == "" {
			continue
		}
		pool = append(pool, info)
		if len(pool) >= poolFactor*count {
			break
		}
	}

	if len(pool) < count {
		return nil, false
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[:count], true
}

// getJSON performs an authenticated GET and decodes the response body.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// truncateOverview cuts an overview to the first overviewLimit characters,
// appending an ellipsis when truncation occurred. Empty input stays empty.
func truncateOverview(s string) string {
	r := []rune(s)
	if len(r) <= overviewLimit {
		return s
	}
	return string(r[:overviewLimit]) + "..."
}
