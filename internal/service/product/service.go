package product

import (
	"context"
	"fmt"

	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/query"
)

// Service serves the storefront catalog: the remote list run through the
// query pipeline.
type Service struct {
	gateway gamesGateway
}

type gamesGateway interface {
	List(ctx context.Context) ([]domain.Game, error)
	Get(ctx context.Context, id domain.GameID) (*domain.Game, error)
}

func New(gateway gamesGateway) *Service {
	return &Service{gateway: gateway}
}

// Listing is one page of the catalog view.
type Listing struct {
	Games      []domain.Game `json:"games"`
	Categories []string      `json:"categories"`
	Total      int           `json:"total"`
	Params     query.Params  `json:"params"`
}

// Browse fetches the catalog and applies filter, search and sort. Categories
// are computed from the unfiltered list.
func (s *Service) Browse(ctx context.Context, params query.Params) (*Listing, error) {
	games, err := s.gateway.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	if params.Category == "" {
		params.Category = query.AllCategories
	}
	if params.SortBy == "" {
		params.SortBy = query.SortFeatured
	}
	view := query.Apply(games, params)
	return &Listing{
		Games:      view,
		Categories: query.Categories(games),
		Total:      len(games),
		Params:     params,
	}, nil
}

// Featured returns the featured games in catalog order.
func (s *Service) Featured(ctx context.Context) ([]domain.Game, error) {
	games, err := s.gateway.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	out := make([]domain.Game, 0, len(games))
	for _, g := range games {
		if g.Featured {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id domain.GameID) (*domain.Game, error) {
	g, err := s.gateway.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", id, err)
	}
	return g, nil
}
