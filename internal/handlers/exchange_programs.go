package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/P3chys/exchange-api/internal/middleware"
	"github.com/P3chys/exchange-api/internal/models"
	"github.com/P3chys/exchange-api/internal/services"
	"github.com/gin-gonic/gin"
)

type ExchangeProgramService interface {
	Publish(ctx context.Context, actorID int, in services.ExchangeProgramInput) (*models.ExchangeProgram, error)
	GetByID(ctx context.Context, id int) (*models.ExchangeProgram, error)
	ListVisible(ctx context.Context, rawUserID, query string) ([]models.ExchangeProgram, error)
	Update(ctx context.Context, actorID int, in services.UpdateExchangeProgramInput) (*models.ExchangeProgram, error)
	Close(ctx context.Context, actorID, id int) (*models.ExchangeProgram, error)
}

type ExchangeProgramRequest struct {
	Name                 string        `json:"name"`
	Description          string        `json:"description"`
	LimitApplicationDate *time.Time    `json:"limit_application_date"`
	StartDate            *time.Time    `json:"start_date"`
	FinishDate           *time.Time    `json:"finish_date"`
	ApplicationDocuments string        `json:"application_documents"`
	RequiredDocuments    string        `json:"required_documents"`
	ImagesURL            string        `json:"images_url"`
	OrganizationID       int           `json:"organization_id"`
	CountryID            int           `json:"country_id"`
	StateID              int           `json:"state_id"`
	StatusID             models.Status `json:"status_id"`
}

func (r ExchangeProgramRequest) input() services.ExchangeProgramInput {
	return services.ExchangeProgramInput{
		Name:                 r.Name,
		Description:          r.Description,
		LimitApplicationDate: r.LimitApplicationDate,
		StartDate:            r.StartDate,
		FinishDate:           r.FinishDate,
		ApplicationDocuments: r.ApplicationDocuments,
		RequiredDocuments:    r.RequiredDocuments,
		ImagesURL:            r.ImagesURL,
		OrganizationID:       r.OrganizationID,
		CountryID:            r.CountryID,
		StateID:              r.StateID,
		StatusID:             r.StatusID,
	}
}

type UpdateExchangeProgramRequest struct {
	ID int `json:"id" binding:"required"`
	ExchangeProgramRequest
}

func PublishExchangeProgram(programs ExchangeProgramService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ExchangeProgramRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		program, err := programs.Publish(c.Request.Context(), actorID(c), req.input())
		if err != nil {
			respondServiceError(c, err)
			return
		}

		respondData(c, http.StatusCreated, program)
	}
}

func GetExchangeProgram(programs ExchangeProgramService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		program, err := programs.GetByID(c.Request.Context(), id)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		respondData(c, http.StatusOK, program)
	}
}

// ListExchangePrograms accepts an optional q parameter for full-text search.
func ListExchangePrograms(programs ExchangeProgramService) gin.HandlerFunc {
	return func(c *gin.Context) {
		visible, err := programs.ListVisible(c.Request.Context(), middleware.CurrentUserID(c), c.Query("q"))
		if err != nil {
			respondServiceError(c, err)
			return
		}

		respondData(c, http.StatusOK, visible)
	}
}

func UpdateExchangeProgram(programs ExchangeProgramService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateExchangeProgramRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		program, err := programs.Update(c.Request.Context(), actorID(c), services.UpdateExchangeProgramInput{
			ID:                   req.ID,
			ExchangeProgramInput: req.input(),
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}

		respondData(c, http.StatusOK, program)
	}
}

func CloseExchangeProgram(programs ExchangeProgramService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		program, err := programs.Close(c.Request.Context(), actorID(c), id)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		respondData(c, http.StatusOK, program)
	}
}
