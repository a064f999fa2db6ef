package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/P3chys/exchange-api/internal/config"
	"github.com/P3chys/exchange-api/internal/models"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

const programsIndex = "exchange_programs"

// programDocument is the shape of a program inside the search index.
type programDocument struct {
	ID                   int    `json:"id"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	ApplicationDocuments string `json:"application_documents"`
	RequiredDocuments    string `json:"required_documents"`
	OrganizationID       int    `json:"organization_id"`
	CountryID            int    `json:"country_id"`
	StateID              int    `json:"state_id"`
	StatusID             int    `json:"status_id"`
}

func toProgramDocument(p models.ExchangeProgram) programDocument {
	return programDocument{
		ID:                   p.ID,
		Name:                 p.Name,
		Description:          p.Description,
		ApplicationDocuments: p.ApplicationDocuments,
		RequiredDocuments:    p.RequiredDocuments,
		OrganizationID:       p.OrganizationID,
		CountryID:            p.CountryID,
		StateID:              p.StateID,
		StatusID:             int(p.StatusID),
	}
}

type SearchService struct {
	client *meilisearch.Client
	index  string
	logger *zap.Logger
}

func NewSearchService(cfg *config.Config, logger *zap.Logger) *SearchService {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   cfg.MeiliURL,
		APIKey: cfg.MeiliAPIKey,
	})
	s := &SearchService{
		client: client,
		index:  programsIndex,
		logger: logger.Named("search"),
	}
	s.ensureIndex()
	return s
}

// ensureIndex creates the programs index on first start (best effort).
func (s *SearchService) ensureIndex() {
	if _, err := s.client.GetIndex(s.index); err == nil {
		return
	}

	if _, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	}); err != nil {
		s.logger.Warn("failed to create meilisearch index", zap.String("index", s.index), zap.Error(err))
	}

	if _, err := s.client.Index(s.index).UpdateFilterableAttributes(&[]string{"organization_id", "country_id", "status_id"}); err != nil {
		s.logger.Warn("failed to update filterable attributes", zap.Error(err))
	}

	if _, err := s.client.Index(s.index).UpdateSearchableAttributes(&[]string{"name", "description", "required_documents", "application_documents"}); err != nil {
		s.logger.Warn("failed to update searchable attributes", zap.Error(err))
	}
}

func (s *SearchService) Ping(context.Context) error {
	if !s.client.IsHealthy() {
		return errors.New("meilisearch is not healthy")
	}
	return nil
}

func (s *SearchService) IndexProgram(program models.ExchangeProgram) error {
	_, err := s.client.Index(s.index).AddDocuments([]programDocument{toProgramDocument(program)})
	return err
}

func (s *SearchService) IndexPrograms(programs []models.ExchangeProgram) error {
	if len(programs) == 0 {
		return nil
	}
	docs := make([]programDocument, 0, len(programs))
	for _, p := range programs {
		docs = append(docs, toProgramDocument(p))
	}
	_, err := s.client.Index(s.index).AddDocuments(docs)
	return err
}

func (s *SearchService) RemoveProgram(id int) error {
	_, err := s.client.Index(s.index).DeleteDocument(strconv.Itoa(id))
	return err
}

func (s *SearchService) SearchProgramIDs(query string) ([]int, error) {
	resp, err := s.client.Index(s.index).Search(query, &meilisearch.SearchRequest{
		Limit:                1000,
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, err
	}
	return hitIDs(resp.Hits), nil
}

func (s *SearchService) GetProgramCount() (int64, error) {
	stats, err := s.client.Index(s.index).GetStats()
	if err != nil {
		return 0, err
	}
	return stats.NumberOfDocuments, nil
}

// hitIDs extracts program ids from raw search hits. JSON numbers decode as
// float64; hits without a usable id are skipped.
func hitIDs(hits []interface{}) []int {
	out := make([]int, 0, len(hits))
	for _, hit := range hits {
		fields, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		switch id := fields["id"].(type) {
		case float64:
			out = append(out, int(id))
		case string:
			if n, err := strconv.Atoi(id); err == nil {
				out = append(out, n)
			}
		}
	}
	return out
}
