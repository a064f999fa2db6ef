package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/P3chys/exchange-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
)

const MaxFileSize = 20 * 1024 * 1024 // 20 MB

var AllowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true, // docx
	"image/jpeg": true,
	"image/png":  true,
}

type DocumentStorage interface {
	UploadFile(ctx context.Context, r io.Reader, key string, size int64, contentType string) error
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, minio.ObjectInfo, error)
}

// UploadDocument stores the content of an application document and returns
// the key to reference from the document's url.
func UploadDocument(storage DocumentStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxFileSize+1024*1024)

		applicationID, err := strconv.Atoi(c.PostForm("application_id"))
		if err != nil || applicationID <= 0 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "application_id is required")
			return
		}

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "No file uploaded")
			return
		}
		defer file.Close()

		if header.Size > MaxFileSize {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "File exceeds 20MB limit")
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if !AllowedMimeTypes[mimeType] {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unsupported file type")
			return
		}

		key := services.ObjectKey(applicationID, header.Filename)
		if err := storage.UploadFile(c.Request.Context(), file, key, header.Size, mimeType); err != nil {
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload file")
			return
		}

		respondData(c, http.StatusCreated, gin.H{
			"key":       key,
			"file_size": header.Size,
			"mime_type": mimeType,
		})
	}
}

func DownloadDocument(storage DocumentStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		if !strings.HasPrefix(key, "applications/") {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Document not found")
			return
		}

		object, info, err := storage.DownloadFile(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				respondError(c, http.StatusNotFound, "NOT_FOUND", "Document not found")
				return
			}
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to download file")
			return
		}
		defer object.Close()

		name := key[strings.LastIndex(key, "/")+1:]
		c.DataFromReader(http.StatusOK, info.Size, info.ContentType, object, map[string]string{
			"Content-Disposition": `attachment; filename="` + name + `"`,
		})
	}
}
