package catalog

import (
	"context"
	"math/rand/v2"
	"strings"
)

// Source supplies the category list. *Store is the production source.
type Source interface {
	Load(ctx context.Context) ([]Category, error)
}

// Engine answers catalog queries. Each query reads a fresh record list
// from its source and holds no state between calls.
type Engine struct {
	src  Source
	intn func(n int) int
}

// NewEngine creates a query engine over the given source.
func NewEngine(src Source) *Engine {
	return &Engine{src: src, intn: rand.IntN}
}

// WithRand returns a copy of the engine that picks random indexes with intn.
func (e *Engine) WithRand(intn func(n int) int) *Engine {
	cp := *e
	cp.intn = intn
	return &cp
}

func (e *Engine) records(ctx context.Context) ([]Record, error) {
	categories, err := e.src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Flatten(categories), nil
}

// ListCategories reports every category with the number of APIs it holds.
func (e *Engine) ListCategories(ctx context.Context) ([]CategorySummary, error) {
	categories, err := e.src.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategorySummary, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategorySummary{
			Name:     c.Name,
			Slug:     c.Slug,
			APICount: len(c.APIs),
		})
	}
	return out, nil
}

// ListAPIs filters records by category slug and auth requirement.
// An empty category disables the category filter. A nil authRequired
// disables the auth filter; true keeps APIs needing auth, false keeps
// no-auth APIs.
func (e *Engine) ListAPIs(ctx context.Context, category string, authRequired *bool) ([]Listing, error) {
	records, err := e.records(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Listing, 0)
	for _, r := range records {
		if category != "" && !strings.EqualFold(r.CategorySlug, category) {
			continue
		}
		if authRequired != nil && r.RequiresAuth() != *authRequired {
			continue
		}
		out = append(out, r.Listing())
	}
	return out, nil
}

// GetAPI returns the first record whose name matches, ignoring case.
func (e *Engine) GetAPI(ctx context.Context, name string) (Record, error) {
	records, err := e.records(ctx)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return Record{}, &NotFoundError{Name: name}
}

// SearchAPIs returns records whose name or description contains query,
// ignoring case. An empty query matches every record.
func (e *Engine) SearchAPIs(ctx context.Context, query string) ([]SearchHit, error) {
	records, err := e.records(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := make([]SearchHit, 0)
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), q) || strings.Contains(strings.ToLower(r.Description), q) {
			out = append(out, r.SearchHit())
		}
	}
	return out, nil
}

// RandomAPI picks one record uniformly at random, restricted to no-auth
// APIs when noAuthOnly is set.
func (e *Engine) RandomAPI(ctx context.Context, noAuthOnly bool) (Pick, error) {
	records, err := e.records(ctx)
	if err != nil {
		return Pick{}, err
	}
	pool := records
	if noAuthOnly {
		pool = make([]Record, 0, len(records))
		for _, r := range records {
			if !r.RequiresAuth() {
				pool = append(pool, r)
			}
		}
	}
	if len(pool) == 0 {
		return Pick{}, ErrEmptyPool
	}
	return pool[e.intn(len(pool))].Pick(), nil
}
