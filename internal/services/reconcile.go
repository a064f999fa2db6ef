package services

import (
	"github.com/P3chys/exchange-api/internal/models"
)

// DocumentValues is a document as it travels in requests and responses. An
// ID <= 0 marks a document that has not been numbered yet.
type DocumentValues struct {
	ID       int           `json:"id"`
	Category string        `json:"category"`
	URL      string        `json:"url"`
	StatusID models.Status `json:"status_id"`
	Reason   string        `json:"reason,omitempty"`
}

// ReconciledDocuments holds both lists after numbering. LastID is the highest
// id handed out by the call, or the seed when nothing needed an id.
type ReconciledDocuments struct {
	Application []DocumentValues
	Required    []DocumentValues
	LastID      int
}

// ReconcileDocuments numbers every new document of both lists from one
// counter, application documents first. Documents that already carry an id
// are kept as they are. The counter starts at the larger of seed and the
// highest id present in either list, so new ids never collide with kept ones.
func ReconcileDocuments(seed int, application, required []DocumentValues) ReconciledDocuments {
	counter := highestDocumentID(seed, application, required)

	applicationOut, counter, appAssigned := numberDocuments(application, counter)
	requiredOut, counter, reqAssigned := numberDocuments(required, counter)

	last := seed
	if appAssigned+reqAssigned > 0 {
		last = counter
	}

	return ReconciledDocuments{
		Application: applicationOut,
		Required:    requiredOut,
		LastID:      last,
	}
}

func numberDocuments(docs []DocumentValues, counter int) ([]DocumentValues, int, int) {
	out := make([]DocumentValues, 0, len(docs))
	assigned := 0
	for _, doc := range docs {
		if doc.ID <= 0 {
			counter++
			doc.ID = counter
			assigned++
		}
		out = append(out, doc)
	}
	return out, counter, assigned
}

func highestDocumentID(seed int, lists ...[]DocumentValues) int {
	highest := seed
	for _, list := range lists {
		for _, doc := range list {
			if doc.ID > highest {
				highest = doc.ID
			}
		}
	}
	return highest
}

// ValidateDocumentIDs rejects two documents claiming the same id across both
// lists.
func ValidateDocumentIDs(application, required []DocumentValues) error {
	seen := make(map[int]struct{}, len(application)+len(required))
	for _, list := range [][]DocumentValues{application, required} {
		for _, doc := range list {
			if doc.ID <= 0 {
				continue
			}
			if _, dup := seen[doc.ID]; dup {
				return invalid("duplicate document id %d", doc.ID)
			}
			seen[doc.ID] = struct{}{}
		}
	}
	return nil
}

// newDocuments strips ids so every entry is numbered as new.
func newDocuments(docs []DocumentValues) []DocumentValues {
	out := make([]DocumentValues, len(docs))
	for i, doc := range docs {
		doc.ID = 0
		out[i] = doc
	}
	return out
}

func toDocumentModels(applicationID int, t models.DocumentType, docs []DocumentValues) []models.ApplicationDocument {
	out := make([]models.ApplicationDocument, 0, len(docs))
	for _, doc := range docs {
		out = append(out, models.ApplicationDocument{
			ApplicationID: applicationID,
			ID:            doc.ID,
			DocumentType:  t,
			Category:      doc.Category,
			URL:           doc.URL,
			StatusID:      doc.StatusID,
			Reason:        doc.Reason,
		})
	}
	return out
}

// DocumentValuesOf converts stored documents back to their wire form.
func DocumentValuesOf(docs []models.ApplicationDocument) []DocumentValues {
	out := make([]DocumentValues, 0, len(docs))
	for _, doc := range docs {
		out = append(out, DocumentValues{
			ID:       doc.ID,
			Category: doc.Category,
			URL:      doc.URL,
			StatusID: doc.StatusID,
			Reason:   doc.Reason,
		})
	}
	return out
}
