package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/api/middleware"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	service *service.SearchService
	now     func() time.Time
}

func NewSearchHandler(service *service.SearchService) *SearchHandler {
	return &SearchHandler{service: service, now: time.Now}
}

// SearchInvoices pages through invoice lines. Without window parameters the
// whole history is searched.
func (h *SearchHandler) SearchInvoices(c *gin.Context) {
	var window domain.Window
	if hasWindowParams(c) {
		w, err := parseWindow(c, h.now())
		if err != nil {
			respondError(c, err, "invalid window")
			return
		}
		window = w
	}

	page, size := parsePaging(c)
	result, err := h.service.Invoices(c.Request.Context(), domain.InvoiceSearchFilter{
		Window:   window,
		Query:    c.Query("q"),
		Page:     page,
		PageSize: size,
	}, middleware.CallerScope(c))
	if err != nil {
		respondError(c, err, "failed to search invoices")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SearchHandler) SearchCustomers(c *gin.Context) {
	page, size := parsePaging(c)
	result, err := h.service.Customers(c.Request.Context(), domain.CustomerSearchFilter{
		Query:    c.Query("q"),
		Page:     page,
		PageSize: size,
	}, middleware.CallerScope(c))
	if err != nil {
		respondError(c, err, "failed to search customers")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SearchHandler) ListOrders(c *gin.Context) {
	page, size := parsePaging(c)
	result, err := h.service.Orders(c.Request.Context(), domain.OrderFilter{
		Status:   c.Query("status"),
		Query:    c.Query("q"),
		Page:     page,
		PageSize: size,
	}, middleware.CallerScope(c))
	if err != nil {
		respondError(c, err, "failed to list orders")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SearchHandler) ListStock(c *gin.Context) {
	page, size := parsePaging(c)
	result, err := h.service.Stock(c.Request.Context(), domain.StockFilter{
		Query:    c.Query("q"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		respondError(c, err, "failed to list stock")
		return
	}
	c.JSON(http.StatusOK, result)
}

// RecentBilling returns the lines billed over the last ?days (default 7).
func (h *SearchHandler) RecentBilling(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
		return
	}
	result, err := h.service.RecentBilling(c.Request.Context(), days, middleware.CallerScope(c))
	if err != nil {
		respondError(c, err, "failed to fetch recent billing")
		return
	}
	c.JSON(http.StatusOK, result)
}

func hasWindowParams(c *gin.Context) bool {
	for _, k := range []string{"from", "to", "days", "month_offset"} {
		if c.Query(k) != "" {
			return true
		}
	}
	return false
}
