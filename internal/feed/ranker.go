package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/nano-midea/feed/internal/metrics"
	"github.com/anonto42/nano-midea/feed/internal/models"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Query is what the ranker asks of the post store: a tag filter, an ordering
// and a window. Recent queries resume strictly after (AfterCreatedAt, AfterID)
// when AfterID is set; offset modes use Skip.
type Query struct {
	Sort           SortMode
	Tag            string
	AfterID        primitive.ObjectID
	AfterCreatedAt time.Time
	Skip           int64
	Limit          int64
	Weights        ScoreWeights
}

// PostStore executes ranked feed queries.
type PostStore interface {
	QueryFeed(ctx context.Context, q Query) ([]models.Post, error)
}

// AuthorDirectory resolves post authors.
type AuthorDirectory interface {
	GetUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error)
}

// Options tune the ranker.
type Options struct {
	DefaultBatchSize int
	MaxBatchSize     int
	QueryTimeout     time.Duration
	Weights          ScoreWeights
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		DefaultBatchSize: 20,
		MaxBatchSize:     100,
		QueryTimeout:     5 * time.Second,
		Weights:          DefaultScoreWeights,
	}
}

// Request is one feed page request. A nil BatchSize uses the default; a zero
// ViewerID is an anonymous viewer.
type Request struct {
	Sort      SortMode
	Tag       string
	Cursor    string
	BatchSize *int
	ViewerID  uint
}

// Page is the feed response.
type Page struct {
	Posts      []models.FeedPost `json:"posts"`
	HasMore    bool              `json:"hasMore"`
	NextCursor *string           `json:"nextCursor"`
}

// Ranker assembles feed pages from a PostStore.
type Ranker struct {
	store   PostStore
	authors AuthorDirectory
	opts    Options
	logger  zerolog.Logger
}

// NewRanker creates a Ranker. Zero option fields take their defaults.
func NewRanker(store PostStore, authors AuthorDirectory, opts Options, logger zerolog.Logger) *Ranker {
	def := DefaultOptions()
	if opts.DefaultBatchSize <= 0 {
		opts.DefaultBatchSize = def.DefaultBatchSize
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = def.MaxBatchSize
	}
	if opts.DefaultBatchSize > opts.MaxBatchSize {
		opts.DefaultBatchSize = opts.MaxBatchSize
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = def.QueryTimeout
	}
	if opts.Weights == (ScoreWeights{}) {
		opts.Weights = def.Weights
	}
	return &Ranker{
		store:   store,
		authors: authors,
		opts:    opts,
		logger:  logger.With().Str("component", "feed_ranker").Logger(),
	}
}

// Feed returns one page of the feed. Invalid requests fail with
// ErrInvalidInput before the store is touched; store and author lookup
// failures fail with ErrStoreUnavailable and no partial page.
func (r *Ranker) Feed(ctx context.Context, req Request) (*Page, error) {
	start := time.Now()
	mode := ParseSortMode(string(req.Sort))

	page, err := r.feed(ctx, mode, req)
	switch {
	case err == nil:
		metrics.ObserveFeed(string(mode), metrics.OutcomeOK, start, len(page.Posts))
	case errors.Is(err, ErrInvalidInput):
		metrics.ObserveFeed(string(mode), metrics.OutcomeInvalid, start, 0)
	case errors.Is(err, context.Canceled):
		metrics.ObserveFeed(string(mode), metrics.OutcomeCanceled, start, 0)
	default:
		metrics.ObserveFeed(string(mode), metrics.OutcomeUnavailable, start, 0)
		r.logger.Warn().Err(err).Str("sort", string(mode)).Msg("feed query failed")
	}
	return page, err
}

func (r *Ranker) feed(ctx context.Context, mode SortMode, req Request) (*Page, error) {
	batch, err := r.batchSize(req.BatchSize)
	if err != nil {
		return nil, err
	}
	cursor, err := DecodeCursor(mode, req.Cursor)
	if err != nil {
		return nil, err
	}

	q := Query{
		Sort:           mode,
		Tag:            NormalizeTag(req.Tag),
		AfterID:        cursor.AfterID,
		AfterCreatedAt: cursor.AfterCreatedAt,
		Skip:           cursor.Offset,
		Limit:          int64(batch) + 1,
		Weights:        r.opts.Weights,
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.QueryTimeout)
	defer cancel()

	raw, err := r.store.QueryFeed(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	window := Paginate(raw, batch, cursor, PostKey)

	authors, err := r.lookupAuthors(ctx, window.Items)
	if err != nil {
		return nil, fmt.Errorf("%w: author lookup: %w", ErrStoreUnavailable, err)
	}

	page := &Page{
		Posts:   make([]models.FeedPost, 0, len(window.Items)),
		HasMore: window.HasMore,
	}
	for i := range window.Items {
		p := &window.Items[i]
		page.Posts = append(page.Posts, Project(p, authors[p.AuthorID], req.ViewerID))
	}
	if window.NextCursor != nil {
		token := window.NextCursor.Encode()
		page.NextCursor = &token
	}

	r.logger.Debug().
		Str("sort", string(mode)).
		Str("tag", q.Tag).
		Int("items", len(page.Posts)).
		Bool("has_more", page.HasMore).
		Msg("feed page built")
	return page, nil
}

func (r *Ranker) batchSize(requested *int) (int, error) {
	if requested == nil {
		return r.opts.DefaultBatchSize, nil
	}
	if *requested < 1 {
		return 0, fmt.Errorf("%w: batch must be a positive integer", ErrInvalidInput)
	}
	if *requested > r.opts.MaxBatchSize {
		return r.opts.MaxBatchSize, nil
	}
	return *requested, nil
}

func (r *Ranker) lookupAuthors(ctx context.Context, posts []models.Post) (map[uint]models.UserCompact, error) {
	result := make(map[uint]models.UserCompact)
	if len(posts) == 0 || r.authors == nil {
		return result, nil
	}

	seen := make(map[uint]bool)
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			ids = append(ids, p.AuthorID)
		}
	}

	users, err := r.authors.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		result[users[i].ID] = users[i].ToCompact()
	}
	return result, nil
}

// PostKey is the recent-order position of p.
func PostKey(p models.Post) (time.Time, primitive.ObjectID) {
	return p.CreatedAt, p.ID
}

// NormalizeTag returns tag in its stored form.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
