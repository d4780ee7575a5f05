package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	var (
		empty    *domain.EmptyImportError
		mismatch *domain.SchemaMismatchError
	)
	switch {
	case errors.As(err, &empty), errors.As(err, &mismatch):
		return http.StatusUnprocessableEntity
	case domain.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateShortKey):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

const dateLayout = "2006-01-02"

// parseWindow reads the reporting window from the query: from/to dates
// (to exclusive), days for a trailing window, or month_offset (default 0).
func parseWindow(c *gin.Context, now time.Time) (domain.Window, error) {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from != "" || to != "" {
		var w domain.Window
		if from != "" {
			t, err := time.Parse(dateLayout, from)
			if err != nil {
				return w, &domain.InvalidRequestError{Field: "from", Reason: "expected YYYY-MM-DD"}
			}
			w.From = t
		}
		if to != "" {
			t, err := time.Parse(dateLayout, to)
			if err != nil {
				return w, &domain.InvalidRequestError{Field: "to", Reason: "expected YYYY-MM-DD"}
			}
			w.To = t
		}
		return w, w.Validate()
	}

	if days := strings.TrimSpace(c.Query("days")); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return domain.Window{}, &domain.InvalidRequestError{Field: "days", Reason: "expected a positive integer"}
		}
		return domain.LastNDays(now, n), nil
	}

	offset, err := strconv.Atoi(c.DefaultQuery("month_offset", "0"))
	if err != nil || offset > 0 {
		return domain.Window{}, &domain.InvalidRequestError{Field: "month_offset", Reason: "expected 0 or a negative integer"}
	}
	return domain.MonthWindow(now, offset), nil
}

func parsePaging(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))
	return page, domain.ClampPageSize(size)
}
