package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/service/admin"
)

// GameCreator validates and posts one admin form to the catalog.
type GameCreator interface {
	Create(ctx context.Context, form admin.GameForm) (*domain.Game, error)
}

// CSVImporter reads a games CSV and creates one catalog entry per game.
//
// Columns: title, description, price, discount, category, platform, rating,
// image, releaseDate, developer, publisher, features (";" separated) and
// requirements.{os,processor,memory,graphics,storage}. A row with an empty
// title continues the previous game and only contributes features.
type CSVImporter struct {
	reader  *csv.Reader
	creator GameCreator
}

func NewCSVImporter(r io.Reader, creator GameCreator) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:  csvr,
		creator: creator,
	}
}

type csvRow struct {
	line int
	form admin.GameForm
}

// Run parses the rows and creates games in file order. It stops at the
// first row the catalog or the form validation rejects.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if row == nil {
			continue
		}
		row.line = line

		if row.form.Title != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows (features) belong to the current game.
		if current != nil {
			current.form.Features = append(current.form.Features, row.form.Features...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if _, err := i.creator.Create(ctx, row.form); err != nil {
		return fmt.Errorf("create game %q (row %d): %w", row.form.Title, row.line, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	title := pick(record, index, "title")
	features := splitList(pick(record, index, "features"))
	if title == "" && len(features) == 0 {
		return nil, nil
	}

	form := admin.GameForm{
		Title:       title,
		Description: pick(record, index, "description"),
		Category:    pick(record, index, "category"),
		Platform:    pick(record, index, "platform"),
		Image:       pick(record, index, "image"),
		ReleaseDate: pick(record, index, "releaseDate"),
		Developer:   pick(record, index, "developer"),
		Publisher:   pick(record, index, "publisher"),
		Requirements: domain.Requirements{
			OS:        pick(record, index, "requirements.os"),
			Processor: pick(record, index, "requirements.processor"),
			Memory:    pick(record, index, "requirements.memory"),
			Graphics:  pick(record, index, "requirements.graphics"),
			Storage:   pick(record, index, "requirements.storage"),
		},
		Features: features,
	}

	var err error
	if form.Price, err = parseNumber(record, index, "price"); err != nil {
		return nil, err
	}
	if form.Discount, err = parseNumber(record, index, "discount"); err != nil {
		return nil, err
	}
	if form.Rating, err = parseNumber(record, index, "rating"); err != nil {
		return nil, err
	}
	return &csvRow{form: form}, nil
}

func parseNumber(record []string, index map[string]int, key string) (*float64, error) {
	raw := pick(record, index, key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &v, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
