// Package importer loads exchange program catalogs from YAML files.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/P3chys/exchange-api/internal/models"
	"github.com/P3chys/exchange-api/internal/services"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

type Catalog struct {
	Programs []ProgramEntry `yaml:"programs"`
}

type ProgramEntry struct {
	Name                 string   `yaml:"name"`
	Description          string   `yaml:"description"`
	OrganizationID       int      `yaml:"organization_id"`
	CountryID            int      `yaml:"country_id"`
	StateID              int      `yaml:"state_id"`
	LimitApplicationDate string   `yaml:"limit_application_date"`
	StartDate            string   `yaml:"start_date"`
	FinishDate           string   `yaml:"finish_date"`
	ApplicationDocuments []string `yaml:"application_documents"`
	RequiredDocuments    []string `yaml:"required_documents"`
	ImagesURL            string   `yaml:"images_url"`
}

// Load decodes a catalog and rejects unknown keys.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var catalog Catalog
	if err := dec.Decode(&catalog); err != nil {
		if err == io.EOF {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &catalog, nil
}

// Input converts the entry to the publish input.
func (e ProgramEntry) Input() (services.ExchangeProgramInput, error) {
	limit, err := parseDate("limit_application_date", e.LimitApplicationDate)
	if err != nil {
		return services.ExchangeProgramInput{}, err
	}
	start, err := parseDate("start_date", e.StartDate)
	if err != nil {
		return services.ExchangeProgramInput{}, err
	}
	finish, err := parseDate("finish_date", e.FinishDate)
	if err != nil {
		return services.ExchangeProgramInput{}, err
	}

	return services.ExchangeProgramInput{
		Name:                 e.Name,
		Description:          e.Description,
		LimitApplicationDate: limit,
		StartDate:            start,
		FinishDate:           finish,
		ApplicationDocuments: strings.Join(e.ApplicationDocuments, ", "),
		RequiredDocuments:    strings.Join(e.RequiredDocuments, ", "),
		ImagesURL:            e.ImagesURL,
		OrganizationID:       e.OrganizationID,
		CountryID:            e.CountryID,
		StateID:              e.StateID,
		StatusID:             models.StatusActive,
	}, nil
}

func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%s: expected YYYY-MM-DD, got %q", field, value)
	}
	return &t, nil
}

// Publisher is the part of the program service the importer drives.
type Publisher interface {
	Publish(ctx context.Context, actorID int, in services.ExchangeProgramInput) (*models.ExchangeProgram, error)
}

type Result struct {
	Imported int
	Skipped  int
	Failed   int
}

// Import publishes every entry whose name is not already taken by a live
// program. A failing entry is logged and does not stop the run.
func Import(ctx context.Context, publisher Publisher, actorID int, catalog *Catalog, existing []models.ExchangeProgram, log *zap.Logger) Result {
	taken := make(map[string]bool, len(existing))
	for _, p := range existing {
		if p.StatusID != models.StatusDeleted {
			taken[strings.ToLower(strings.TrimSpace(p.Name))] = true
		}
	}

	var result Result
	for i, entry := range catalog.Programs {
		key := strings.ToLower(strings.TrimSpace(entry.Name))
		if taken[key] {
			log.Info("program already exists, skipping", zap.String("name", entry.Name))
			result.Skipped++
			continue
		}

		in, err := entry.Input()
		if err != nil {
			log.Warn("invalid catalog entry", zap.Int("index", i), zap.String("name", entry.Name), zap.Error(err))
			result.Failed++
			continue
		}

		program, err := publisher.Publish(ctx, actorID, in)
		if err != nil {
			log.Warn("failed to publish program", zap.String("name", entry.Name), zap.Error(err))
			result.Failed++
			continue
		}

		taken[key] = true
		result.Imported++
		log.Info("imported program", zap.Int("program_id", program.ID), zap.String("name", program.Name))
	}
	return result
}
