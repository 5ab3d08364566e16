package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/fernandobatistacruz/cabe/internal/database/repository"
)

// Match is one search hit with its ranking score, higher is better.
type Match struct {
	Entry repository.Entry
	Score float64
}

// SearchService ranks entries against a free-text query over their
// descriptions: exact substring matches first, then close fuzzy matches by
// normalized Levenshtein similarity.
type SearchService struct {
	DB *sql.DB
}

const fuzzyThreshold = 0.55

// Search scans all entries under ctx; it stops promptly when ctx is
// cancelled, returning ctx.Err().
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]Match, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, validationErr("query", "required")
	}
	if limit <= 0 {
		limit = 50
	}

	transfers := false
	entries, err := repository.NewEntryRepo(s.DB).List(ctx, repository.EntryFilters{Transfer: &transfers})
	if err != nil {
		return nil, wrapPersistence("search entries", err)
	}

	var matches []Match
	for i, e := range entries {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		score := scoreMatch(query, strings.ToLower(e.Description))
		if score <= 0 {
			continue
		}
		matches = append(matches, Match{Entry: e, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func scoreMatch(query, description string) float64 {
	if description == "" {
		return 0
	}
	if strings.Contains(description, query) {
		// substring hits outrank any fuzzy hit; shorter descriptions rank higher
		return 1 + float64(len(query))/float64(len(description))
	}
	// fuzzy: best similarity between the query and any description token
	best := 0.0
	for _, token := range strings.Fields(description) {
		dist := levenshtein.ComputeDistance(query, token)
		maxlen := len(token)
		if len(query) > maxlen {
			maxlen = len(query)
		}
		if similarity := 1 - float64(dist)/float64(maxlen); similarity > best {
			best = similarity
		}
	}
	if best < fuzzyThreshold {
		return 0
	}
	return best
}

// Searcher serializes interactive searches: starting a new one cancels the
// in-flight predecessor, whose late result is discarded by the caller seeing
// context.Canceled.
type Searcher struct {
	Service *SearchService

	mu     sync.Mutex
	gen    int
	cancel context.CancelFunc
}

// Search supersedes any previous in-flight search and runs a new one.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]Match, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		if s.gen == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
	}()
	return s.Service.Search(ctx, query, limit)
}
