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

type ApplicationService interface {
	Publish(ctx context.Context, in services.PublishApplicationInput) (*models.Application, error)
	GetByID(ctx context.Context, id int) (*models.Application, error)
	ListVisible(ctx context.Context, rawUserID string) ([]models.Application, error)
	Update(ctx context.Context, rawUserID string, in services.UpdateApplicationInput) (*models.Application, error)
	Cancel(ctx context.Context, in services.TransitionInput) (*models.Application, error)
	Close(ctx context.Context, in services.TransitionInput) (*models.Application, error)
	DeleteDocument(ctx context.Context, actorID, applicationID, documentID int) error
}

type PublishApplicationRequest struct {
	ProgramID            int                       `json:"program_id" binding:"required"`
	StudentID            int                       `json:"student_id"`
	Reason               string                    `json:"reason"`
	StatusID             models.Status             `json:"status_id"`
	ApplicationDocuments []services.DocumentValues `json:"application_documents"`
	RequiredDocuments    []services.DocumentValues `json:"required_documents"`
}

type UpdateApplicationRequest struct {
	ID                   int                       `json:"id" binding:"required"`
	Reason               string                    `json:"reason"`
	StatusID             models.Status             `json:"status_id"`
	ApplicationDocuments []services.DocumentValues `json:"application_documents"`
	RequiredDocuments    []services.DocumentValues `json:"required_documents"`
}

type TransitionRequest struct {
	ID     int    `json:"id" binding:"required"`
	Reason string `json:"reason"`
}

type ApplicationResponse struct {
	ID                   int                       `json:"id"`
	ProgramID            int                       `json:"program_id"`
	StudentID            int                       `json:"student_id"`
	Reason               string                    `json:"reason"`
	StatusID             models.Status             `json:"status_id"`
	ApplicationDocuments []services.DocumentValues `json:"application_documents"`
	RequiredDocuments    []services.DocumentValues `json:"required_documents"`
	CreatedAt            time.Time                 `json:"created_at"`
	UpdatedAt            time.Time                 `json:"updated_at"`
}

func toApplicationResponse(a *models.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:                   a.ID,
		ProgramID:            a.ProgramID,
		StudentID:            a.StudentID,
		Reason:               a.Reason,
		StatusID:             a.StatusID,
		ApplicationDocuments: services.DocumentValuesOf(a.DocumentsOfType(models.DocumentTypeApplication)),
		RequiredDocuments:    services.DocumentValuesOf(a.DocumentsOfType(models.DocumentTypeRequired)),
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// PublishApplication creates an application. Without student_id the caller
// applies for themselves.
func PublishApplication(applications ApplicationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PublishApplicationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		studentID := req.StudentID
		if studentID == 0 {
			studentID = actorID(c)
		}

		application, err := applications.Publish(c.Request.Context(), services.PublishApplicationInput{
			ProgramID:            req.ProgramID,
			StudentID:            studentID,
			Reason:               req.Reason,
			StatusID:             req.StatusID,
			ApplicationDocuments: req.ApplicationDocuments,
			RequiredDocuments:    req.RequiredDocuments,
			ActorID:              actorID(c),
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}

		respondData(c, http.StatusCreated, toApplicationResponse(application))
	}
}

func GetApplication(applications ApplicationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		application, err := applications.GetByID(c.Request.Context(), id)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		respondData(c, http.StatusOK, toApplicationResponse(application))
	}
}

func ListApplications(applications ApplicationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		visible, err := applications.ListVisible(c.Request.Context(), middleware.CurrentUserID(c))
		if err != nil {
			respondServiceError(c, err)
			return
		}

		out := make([]ApplicationResponse, 0, len(visible))
		for i := range visible {
			out = append(out, toApplicationResponse(&visible[i]))
		}
		respondData(c, http.StatusOK, out)
	}
}

func UpdateApplication(applications ApplicationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateApplicationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		application, err := applications.Update(c.Request.Context(), middleware.CurrentUserID(c), services.UpdateApplicationInput{
			ID:                   req.ID,
			Reason:               req.Reason,
			StatusID:             req.StatusID,
			ApplicationDocuments: req.ApplicationDocuments,
			RequiredDocuments:    req.RequiredDocuments,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}

		respondData(c, http.StatusOK, toApplicationResponse(application))
	}
}

func CancelApplication(applications ApplicationService) gin.HandlerFunc {
	return transitionApplication(applications.Cancel)
}

func CloseApplication(applications ApplicationService) gin.HandlerFunc {
	return transitionApplication(applications.Close)
}

func transitionApplication(move func(context.Context, services.TransitionInput) (*models.Application, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TransitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		application, err := move(c.Request.Context(), services.TransitionInput{
			ID:      req.ID,
			Reason:  req.Reason,
			ActorID: actorID(c),
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}

		respondData(c, http.StatusOK, toApplicationResponse(application))
	}
}

func DeleteApplicationDocument(applications ApplicationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		applicationID, ok := pathID(c, "id")
		if !ok {
			return
		}
		documentID, ok := pathID(c, "documentId")
		if !ok {
			return
		}

		if err := applications.DeleteDocument(c.Request.Context(), actorID(c), applicationID, documentID); err != nil {
			respondServiceError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
