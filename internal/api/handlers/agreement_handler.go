package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/api/middleware"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type AgreementHandler struct {
	service *service.AgreementService
}

func NewAgreementHandler(service *service.AgreementService) *AgreementHandler {
	return &AgreementHandler{service: service}
}

// agreementRequest takes plain YYYY-MM-DD dates.
type agreementRequest struct {
	CustomerCode string  `json:"customer_code" binding:"required"`
	CustomerName string  `json:"customer_name"`
	StartDate    string  `json:"start_date" binding:"required"`
	EndDate      string  `json:"end_date" binding:"required"`
	TargetVolume float64 `json:"target_volume"`
}

func (r agreementRequest) toAgreement() (domain.Agreement, error) {
	start, err := time.Parse(dateLayout, strings.TrimSpace(r.StartDate))
	if err != nil {
		return domain.Agreement{}, &domain.InvalidAgreementError{Reason: "start_date must be YYYY-MM-DD"}
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(r.EndDate))
	if err != nil {
		return domain.Agreement{}, &domain.InvalidAgreementError{Reason: "end_date must be YYYY-MM-DD"}
	}
	return domain.Agreement{
		CustomerCode: strings.TrimSpace(r.CustomerCode),
		CustomerName: strings.TrimSpace(r.CustomerName),
		StartDate:    start,
		EndDate:      end,
		TargetVolume: r.TargetVolume,
	}, nil
}

func (h *AgreementHandler) bind(c *gin.Context) (domain.Agreement, bool) {
	var req agreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid agreement", "details": err.Error()})
		return domain.Agreement{}, false
	}
	a, err := req.toAgreement()
	if err != nil {
		respondError(c, err, "invalid agreement")
		return domain.Agreement{}, false
	}
	return a, true
}

func (h *AgreementHandler) ListAgreements(c *gin.Context) {
	agreements, err := h.service.List(c.Request.Context(), middleware.CallerScope(c))
	if err != nil {
		respondError(c, err, "failed to list agreements")
		return
	}
	c.JSON(http.StatusOK, gin.H{"agreements": agreements})
}

func (h *AgreementHandler) GetAgreement(c *gin.Context) {
	a, err := h.service.Get(c.Request.Context(), c.Param("id"), middleware.CallerScope(c))
	if err != nil {
		respondError(c, err, "failed to fetch agreement")
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AgreementHandler) CreateAgreement(c *gin.Context) {
	a, ok := h.bind(c)
	if !ok {
		return
	}
	created, err := h.service.Create(c.Request.Context(), a)
	if err != nil {
		respondError(c, err, "failed to create agreement")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AgreementHandler) UpdateAgreement(c *gin.Context) {
	a, ok := h.bind(c)
	if !ok {
		return
	}
	updated, err := h.service.Update(c.Request.Context(), c.Param("id"), a)
	if err != nil {
		respondError(c, err, "failed to update agreement")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *AgreementHandler) DeleteAgreement(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "failed to delete agreement")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTargets reports achieved core volume against every visible agreement.
func (h *AgreementHandler) GetTargets(c *gin.Context) {
	summary, err := h.service.Targets(c.Request.Context(), middleware.CallerScope(c))
	if err != nil {
		respondError(c, err, "failed to compute targets")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AgreementHandler) GetTargetProducts(c *gin.Context) {
	items, err := h.service.TargetProducts(c.Request.Context(), c.Param("id"), middleware.CallerScope(c))
	if err != nil {
		respondError(c, err, "failed to fetch target products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *AgreementHandler) GetTargetInvoices(c *gin.Context) {
	lines, err := h.service.TargetInvoices(c.Request.Context(), c.Param("id"), c.Query("product"), middleware.CallerScope(c))
	if err != nil {
		respondError(c, err, "failed to fetch target invoices")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": lines, "total": len(lines)})
}
