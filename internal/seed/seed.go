package seed

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log"
	"strings"

	"gopkg.in/yaml.v3"
	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/service/admin"
)

//go:embed games.yaml
var defaultFixtures []byte

type catalogAdmin interface {
	List(ctx context.Context) ([]domain.Game, error)
	Create(ctx context.Context, form admin.GameForm) (*domain.Game, error)
}

type fixtureFile struct {
	Games []admin.GameForm `yaml:"games"`
}

// Parse decodes a YAML fixture file.
func Parse(data []byte) ([]admin.GameForm, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return f.Games, nil
}

// Defaults returns the built-in demo games.
func Defaults() []admin.GameForm {
	games, err := Parse(defaultFixtures)
	if err != nil {
		panic(err)
	}
	return games
}

// Apply creates every fixture whose title is not already in the catalog
// (case-insensitive), so running it twice is harmless. It returns how many
// games were created.
func Apply(ctx context.Context, svc catalogAdmin, fixtures []admin.GameForm, logger *log.Logger) (int, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	existing, err := svc.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(existing))
	for _, g := range existing {
		seen[titleKey(g.Title)] = struct{}{}
	}

	created := 0
	for _, f := range fixtures {
		key := titleKey(f.Title)
		if _, ok := seen[key]; ok {
			logger.Printf("seed: skip existing title=%q", f.Title)
			continue
		}
		if _, err := svc.Create(ctx, f); err != nil {
			return created, fmt.Errorf("create %q: %w", f.Title, err)
		}
		seen[key] = struct{}{}
		created++
	}
	return created, nil
}

func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
