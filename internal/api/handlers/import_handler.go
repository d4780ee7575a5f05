package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/repository"
	"github.com/andresuchdata/salesperf/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 64 << 20

type ImportHandler struct {
	service *service.ImportService
}

func NewImportHandler(service *service.ImportService) *ImportHandler {
	return &ImportHandler{service: service}
}

// UploadFile imports a multipart "file" into the dataset named by :schema.
func (h *ImportHandler) UploadFile(c *gin.Context) {
	schema, ok := domain.ParseImportSchema(c.Param("schema"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown import schema", "details": c.Param("schema")})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file is too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file", "details": err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file", "details": err.Error()})
		return
	}

	currentYear, err := strconv.ParseBool(c.DefaultPostForm("current_year", "true"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current_year must be a boolean"})
		return
	}

	result, err := h.service.Import(c.Request.Context(), domain.ImportRequest{
		Schema:        schema,
		FileName:      fileHeader.Filename,
		Data:          data,
		IsCurrentYear: currentYear,
	})
	if err != nil {
		status := statusFor(err)
		body := gin.H{"error": "import failed", "details": err.Error()}
		if result != nil {
			body["result"] = result
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ImportHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := h.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "failed to list import runs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// ClearInvoices deletes invoice lines by ?range=all|current|historical.
func (h *ImportHandler) ClearInvoices(c *gin.Context) {
	r := repository.InvoiceRange(c.DefaultQuery("range", string(repository.InvoicesAll)))
	n, err := h.service.ClearInvoices(c.Request.Context(), r)
	if err != nil {
		respondError(c, err, "failed to clear invoices")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n, "range": r})
}

func (h *ImportHandler) ClearDataset(c *gin.Context) {
	schema, ok := domain.ParseImportSchema(c.Param("schema"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown dataset", "details": c.Param("schema")})
		return
	}
	n, err := h.service.ClearDataset(c.Request.Context(), schema)
	if err != nil {
		respondError(c, err, "failed to clear dataset")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n, "dataset": schema})
}
