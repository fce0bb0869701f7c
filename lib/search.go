package lib

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	shared "uniforum/shared"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const MinSearchLength = 2
const SearchDebounce = 300 * time.Millisecond

type SearchRemote interface {
	Search(ctx context.Context, query string) (*shared.SearchResults, *shared.ApiError)
}

// Searcher queries the server and falls back to a fuzzy match over the
// cached posts when the server can't be reached.
type Searcher struct {
	client SearchRemote
	posts  *PostCache

	mu    sync.Mutex
	timer *time.Timer
	gen   int
}

func NewSearcher(client SearchRemote, posts *PostCache) *Searcher {
	return &Searcher{client: client, posts: posts}
}

func emptyResults() *shared.SearchResults {
	return &shared.SearchResults{
		People:    []*shared.Author{},
		Posts:     []*shared.Post{},
		Subforums: []*shared.SubForum{},
	}
}

// Search returns empty results for queries shorter than MinSearchLength.
// The returned error is set when the server failed and the results are the
// local fallback.
func (s *Searcher) Search(ctx context.Context, query string) (*shared.SearchResults, *shared.ApiError) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSearchLength {
		return emptyResults(), nil
	}

	res, apiErr := s.client.Search(ctx, query)
	if apiErr != nil {
		log.Printf("Error searching %q, falling back to cached posts: %v\n", query, apiErr)
		fallback := emptyResults()
		if s.posts != nil {
			fallback.Posts = FuzzyPosts(s.posts.Posts(), query)
		}
		return fallback, apiErr
	}

	if res == nil {
		return emptyResults(), nil
	}
	if res.People == nil {
		res.People = []*shared.Author{}
	}
	if res.Posts == nil {
		res.Posts = []*shared.Post{}
	}
	if res.Subforums == nil {
		res.Subforums = []*shared.SubForum{}
	}
	return res, nil
}

// Debounced runs the search once no newer call has arrived for
// SearchDebounce, then hands the results to fn. Superseded calls never
// reach fn.
func (s *Searcher) Debounced(ctx context.Context, query string, fn func(*shared.SearchResults, *shared.ApiError)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen

	s.timer = time.AfterFunc(SearchDebounce, func() {
		res, apiErr := s.Search(ctx, query)

		s.mu.Lock()
		current := gen == s.gen
		s.mu.Unlock()

		if current {
			fn(res, apiErr)
		}
	})
}

// FuzzyPosts ranks posts whose title or body fuzzily contains query.
func FuzzyPosts(posts []*shared.Post, query string) []*shared.Post {
	targets := make([]string, len(posts))
	for i, p := range posts {
		targets[i] = p.Title + " " + p.Body
	}

	ranks := fuzzy.RankFindFold(query, targets)
	sort.Sort(ranks)

	res := make([]*shared.Post, 0, len(ranks))
	for _, r := range ranks {
		res = append(res, posts[r.OriginalIndex])
	}
	return res
}
