// Package admin implements catalog management: form validation, price
// derivation and the create, replace, edit and delete calls to the remote
// catalog.
package admin

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/validation"
)

// DefaultPlatform is used when the form leaves the platform empty.
const DefaultPlatform = "PC"

// Categories offered by the admin form.
var Categories = []string{
	"Acción",
	"Aventura",
	"RPG",
	"Estrategia",
	"Deportes",
	"Simulación",
	"Terror",
	"Carreras",
}

// Platforms offered by the admin form.
var Platforms = []string{
	"PC",
	"PlayStation",
	"Xbox",
	"Nintendo Switch",
	"Multi-plataforma",
}

type gamesGateway interface {
	List(ctx context.Context) ([]domain.Game, error)
	Get(ctx context.Context, id domain.GameID) (*domain.Game, error)
	Create(ctx context.Context, game domain.Game) (*domain.Game, error)
	Replace(ctx context.Context, id domain.GameID, game domain.Game) (*domain.Game, error)
	Patch(ctx context.Context, id domain.GameID, patch domain.GamePatch) (*domain.Game, error)
	Delete(ctx context.Context, id domain.GameID) error
}

type Service struct {
	gateway  gamesGateway
	validate *validator.Validate
	logger   *log.Logger
	now      func() time.Time
}

func New(gateway gamesGateway, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		gateway:  gateway,
		validate: validation.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// GameForm is the admin create/replace form. Price is the pre-discount
// price; the stored price is derived from it.
type GameForm struct {
	Title        string              `json:"title" yaml:"title" validate:"required,min=2"`
	Description  string              `json:"description" yaml:"description" validate:"required,min=10"`
	Price        *float64            `json:"price" yaml:"price" validate:"required,gt=0"`
	Discount     *float64            `json:"discount" yaml:"discount" validate:"omitempty,gte=0,lte=100"`
	Category     string              `json:"category" yaml:"category" validate:"required"`
	Platform     string              `json:"platform" yaml:"platform"`
	Rating       *float64            `json:"rating" yaml:"rating" validate:"omitempty,gte=0,lte=5"`
	Image        string              `json:"image" yaml:"image" validate:"required,image_url"`
	ReleaseDate  string              `json:"releaseDate" yaml:"releaseDate"`
	Developer    string              `json:"developer" yaml:"developer" validate:"required"`
	Publisher    string              `json:"publisher" yaml:"publisher" validate:"required"`
	Requirements domain.Requirements `json:"requirements" yaml:"requirements"`
	Features     []string            `json:"features" yaml:"features"`
}

// EditForm is the admin edit form. Only non-empty fields reach the patch.
type EditForm struct {
	Title        string              `json:"title" validate:"required"`
	Description  string              `json:"description" validate:"required"`
	Price        *float64            `json:"price" validate:"required,gt=0"`
	Discount     *float64            `json:"discount" validate:"omitempty,gte=0,lte=100"`
	Category     string              `json:"category" validate:"required"`
	Platform     string              `json:"platform"`
	Rating       *float64            `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Image        string              `json:"image" validate:"required"`
	ReleaseDate  string              `json:"releaseDate"`
	Publisher    string              `json:"publisher" validate:"required"`
	Requirements domain.Requirements `json:"requirements"`
	Features     []string            `json:"features"`
}

var formMessages = validation.Messages{
	"title.required":       "El título es requerido",
	"title.min":            "El título debe tener al menos 2 caracteres",
	"description.required": "La descripción es requerida",
	"description.min":      "La descripción debe tener al menos 10 caracteres",
	"price.required":       "El precio es requerido",
	"price":                "El precio debe ser un número mayor a 0",
	"discount":             "El descuento debe ser entre 0 y 100",
	"category":             "La categoría es requerida",
	"rating":               "La calificación debe ser entre 0 y 5",
	"image.required":       "La URL de la imagen es requerida",
	"image":                "Debe ser una URL válida de imagen (jpg, jpeg, png, webp, gif)",
	"developer":            "El desarrollador es requerido",
	"publisher":            "El publicador es requerido",
}

var editMessages = validation.Messages{
	"title":       "El título es requerido",
	"description": "La descripción es requerida",
	"price":       "El precio debe ser mayor a 0",
	"discount":    "El descuento debe ser entre 0 y 100",
	"category":    "La categoría es requerida",
	"rating":      "La calificación debe ser entre 0 y 5",
	"image":       "La imagen es requerida",
	"publisher":   "El publicador es requerido",
}

func (s *Service) List(ctx context.Context) ([]domain.Game, error) {
	games, err := s.gateway.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

// Create validates the form and posts the derived game. The remote service
// assigns the id.
func (s *Service) Create(ctx context.Context, form GameForm) (*domain.Game, error) {
	game, err := s.BuildGame(form)
	if err != nil {
		return nil, err
	}
	created, err := s.gateway.Create(ctx, game)
	if err != nil {
		s.logger.Printf("admin: create title=%q error=%v", game.Title, err)
		return nil, fmt.Errorf("create game: %w", err)
	}
	s.logger.Printf("admin: created id=%s title=%q", created.ID, created.Title)
	return created, nil
}

// Replace validates the form and overwrites the entry with id.
func (s *Service) Replace(ctx context.Context, id domain.GameID, form GameForm) (*domain.Game, error) {
	game, err := s.BuildGame(form)
	if err != nil {
		return nil, err
	}
	updated, err := s.gateway.Replace(ctx, id, game)
	if err != nil {
		s.logger.Printf("admin: replace id=%s error=%v", id, err)
		return nil, fmt.Errorf("replace game %s: %w", id, err)
	}
	return updated, nil
}

// Edit validates the edit form and sends a partial update with only the
// fields that carry a value.
func (s *Service) Edit(ctx context.Context, id domain.GameID, form EditForm) (*domain.Game, error) {
	patch, err := s.BuildPatch(form)
	if err != nil {
		return nil, err
	}
	updated, err := s.gateway.Patch(ctx, id, patch)
	if err != nil {
		s.logger.Printf("admin: edit id=%s error=%v", id, err)
		return nil, fmt.Errorf("edit game %s: %w", id, err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id domain.GameID) error {
	if err := s.gateway.Delete(ctx, id); err != nil {
		s.logger.Printf("admin: delete id=%s error=%v", id, err)
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	s.logger.Printf("admin: deleted id=%s", id)
	return nil
}

// BuildGame validates form and derives the entry to send: final price
// rounded to cents, one-element platform list, release date defaulting to
// today (UTC), features trimmed and de-duplicated.
func (s *Service) BuildGame(form GameForm) (domain.Game, error) {
	form.Title = strings.TrimSpace(form.Title)
	form.Description = strings.TrimSpace(form.Description)
	form.Image = strings.TrimSpace(form.Image)
	form.Developer = strings.TrimSpace(form.Developer)
	form.Publisher = strings.TrimSpace(form.Publisher)

	ve := &domain.ValidationError{}
	if err := validation.Collect(s.validate, form, formMessages, ve); err != nil {
		return domain.Game{}, err
	}
	if err := ve.OrNil(); err != nil {
		return domain.Game{}, err
	}

	discount := valueOr(form.Discount, 0)
	platform := strings.TrimSpace(form.Platform)
	if platform == "" {
		platform = DefaultPlatform
	}
	releaseDate := strings.TrimSpace(form.ReleaseDate)
	if releaseDate == "" {
		releaseDate = s.now().UTC().Format(time.DateOnly)
	}
	return domain.Game{
		Title:         form.Title,
		Description:   form.Description,
		Price:         FinalPrice(*form.Price, discount),
		OriginalPrice: *form.Price,
		Discount:      discount,
		Category:      form.Category,
		Platform:      []string{platform},
		Rating:        valueOr(form.Rating, 0),
		Image:         form.Image,
		ReleaseDate:   releaseDate,
		Publisher:     form.Publisher,
		Requirements:  trimRequirements(form.Requirements),
		Features:      cleanFeatures(form.Features),
		Featured:      false,
	}, nil
}

// BuildPatch validates form and keeps only the fields that carry a value.
func (s *Service) BuildPatch(form EditForm) (domain.GamePatch, error) {
	form.Title = strings.TrimSpace(form.Title)
	form.Description = strings.TrimSpace(form.Description)
	form.Image = strings.TrimSpace(form.Image)
	form.Publisher = strings.TrimSpace(form.Publisher)

	ve := &domain.ValidationError{}
	if err := validation.Collect(s.validate, form, editMessages, ve); err != nil {
		return domain.GamePatch{}, err
	}
	if err := ve.OrNil(); err != nil {
		return domain.GamePatch{}, err
	}

	var patch domain.GamePatch
	patch.Title = nonEmpty(form.Title)
	patch.Description = nonEmpty(form.Description)
	patch.Image = nonEmpty(form.Image)
	patch.Publisher = nonEmpty(form.Publisher)
	patch.Category = nonEmpty(form.Category)
	if p := strings.TrimSpace(form.Platform); p != "" {
		patch.Platform = []string{p}
	}

	original := *form.Price
	discount := valueOr(form.Discount, 0)
	final := FinalPrice(original, discount)
	patch.Price = &final
	patch.OriginalPrice = &original
	patch.Discount = &discount

	if form.Rating != nil {
		rating := *form.Rating
		patch.Rating = &rating
	}
	patch.ReleaseDate = nonEmpty(strings.TrimSpace(form.ReleaseDate))

	req := trimRequirements(form.Requirements)
	if req != (domain.Requirements{}) {
		patch.Requirements = &domain.RequirementsPatch{
			OS:        req.OS,
			Processor: req.Processor,
			Memory:    req.Memory,
			Graphics:  req.Graphics,
			Storage:   req.Storage,
		}
	}
	if features := cleanFeatures(form.Features); len(features) > 0 {
		patch.Features = features
	}
	return patch, nil
}

// FinalPrice is round2(original * (1 - discount/100)).
func FinalPrice(original, discount float64) float64 {
	hundred := decimal.NewFromInt(100)
	factor := hundred.Sub(decimal.NewFromFloat(discount)).Div(hundred)
	return decimal.NewFromFloat(original).Mul(factor).Round(2).InexactFloat64()
}

func cleanFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, f := range in {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func trimRequirements(r domain.Requirements) domain.Requirements {
	return domain.Requirements{
		OS:        strings.TrimSpace(r.OS),
		Processor: strings.TrimSpace(r.Processor),
		Memory:    strings.TrimSpace(r.Memory),
		Graphics:  strings.TrimSpace(r.Graphics),
		Storage:   strings.TrimSpace(r.Storage),
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
