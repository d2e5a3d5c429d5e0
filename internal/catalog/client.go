// Package catalog is the gateway to the remote game catalog service.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/metrics"
)

// Default endpoints of the hosted catalog. Creation is served from a
// different base than the other routes.
const (
	DefaultGamesURL  = "https://hakey-api-catalogo.vercel.app/api/games"
	DefaultCreateURL = "https://hakey-api-catalogo.vercel.app/games"
)

const maxBodyBytes = 8 << 20

// Config configures a Client. Zero values fall back to the defaults.
type Config struct {
	GamesURL   string
	CreateURL  string
	HTTPClient *http.Client
	Logger     *log.Logger
	Metrics    *metrics.Registry
}

// Client performs one HTTP round trip per operation.
type Client struct {
	gamesURL  string
	createURL string
	http      *http.Client
	logger    *log.Logger
	metrics   *metrics.Registry
}

func New(cfg Config) *Client {
	c := &Client{
		gamesURL:  strings.TrimRight(cfg.GamesURL, "/"),
		createURL: strings.TrimRight(cfg.CreateURL, "/"),
		http:      cfg.HTTPClient,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
	if c.gamesURL == "" {
		c.gamesURL = DefaultGamesURL
	}
	if c.createURL == "" {
		c.createURL = DefaultCreateURL
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard, "", 0)
	}
	return c
}

// List returns every game in the catalog.
func (c *Client) List(ctx context.Context) ([]domain.Game, error) {
	var games []domain.Game
	if err := c.do(ctx, "list", http.MethodGet, c.gamesURL, nil, &games); err != nil {
		return nil, err
	}
	if games == nil {
		games = []domain.Game{}
	}
	return games, nil
}

func (c *Client) Get(ctx context.Context, id domain.GameID) (*domain.Game, error) {
	var g domain.Game
	if err := c.do(ctx, "get", http.MethodGet, c.itemURL(id), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Create posts a new game; the catalog assigns its id.
func (c *Client) Create(ctx context.Context, game domain.Game) (*domain.Game, error) {
	game.ID = ""
	var g domain.Game
	if err := c.do(ctx, "create", http.MethodPost, c.createURL, game, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Replace overwrites every field of the game.
func (c *Client) Replace(ctx context.Context, id domain.GameID, game domain.Game) (*domain.Game, error) {
	var g domain.Game
	if err := c.do(ctx, "replace", http.MethodPut, c.itemURL(id), game, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Patch updates only the fields set in patch.
func (c *Client) Patch(ctx context.Context, id domain.GameID, patch domain.GamePatch) (*domain.Game, error) {
	var g domain.Game
	if err := c.do(ctx, "patch", http.MethodPatch, c.itemURL(id), patch, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) Delete(ctx context.Context, id domain.GameID) error {
	return c.do(ctx, "delete", http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) itemURL(id domain.GameID) string {
	return c.gamesURL + "/" + url.PathEscape(id.String())
}

func (c *Client) do(ctx context.Context, op, method, target string, in, out any) error {
	start := time.Now()
	err := c.roundTrip(ctx, op, method, target, in, out)
	outcome := "ok"
	if err != nil {
		outcome = err.Kind.String()
		c.logger.Printf("catalog gateway: %s %s %s kind=%s status=%d error=%v", op, method, target, err.Kind, err.Status, err.Message)
		c.metrics.ObserveGateway(op, outcome, time.Since(start))
		return err
	}
	c.metrics.ObserveGateway(op, outcome, time.Since(start))
	return nil
}

func (c *Client) roundTrip(ctx context.Context, op, method, target string, in, out any) *Error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return &Error{Op: op, Kind: KindDecode, Message: decodeMessage, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Message: transportMessage, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Message: transportMessage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Status: resp.StatusCode, Message: transportMessage, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rejection(op, resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: op, Kind: KindDecode, Status: resp.StatusCode, Message: decodeMessage, Err: err}
	}
	return nil
}
