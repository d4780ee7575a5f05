package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/andresuchdata/salesperf/backend-go/internal/api/middleware"
	"github.com/andresuchdata/salesperf/backend-go/internal/catalog"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

const maxCatalogBytes = 1 << 20

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// ListKPIs returns active definitions; admins get inactive ones too.
func (h *CatalogHandler) ListKPIs(c *gin.Context) {
	var (
		defs []domain.KpiDefinition
		err  error
	)
	if middleware.IsAdmin(c) {
		defs, err = h.catalog.List(c.Request.Context())
	} else {
		defs, err = h.catalog.Visible(c.Request.Context())
	}
	if err != nil {
		respondError(c, err, "failed to list kpis")
		return
	}

	c.JSON(http.StatusOK, gin.H{"kpis": defs})
}

func (h *CatalogHandler) GetKPI(c *gin.Context) {
	def, err := h.catalog.Get(c.Request.Context(), c.Param("shortKey"))
	if err != nil {
		respondError(c, err, "failed to fetch kpi")
		return
	}
	c.JSON(http.StatusOK, def)
}

func (h *CatalogHandler) CreateKPI(c *gin.Context) {
	var def domain.KpiDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kpi definition", "details": err.Error()})
		return
	}

	created, err := h.catalog.Create(c.Request.Context(), def)
	if err != nil {
		respondError(c, err, "failed to create kpi")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CatalogHandler) UpdateKPI(c *gin.Context) {
	var def domain.KpiDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kpi definition", "details": err.Error()})
		return
	}

	updated, err := h.catalog.Update(c.Request.Context(), c.Param("shortKey"), def)
	if err != nil {
		respondError(c, err, "failed to update kpi")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CatalogHandler) DeleteKPI(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("shortKey")); err != nil {
		respondError(c, err, "failed to delete kpi")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) SeedKPIs(c *gin.Context) {
	n, err := h.catalog.SeedDefaults(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to seed kpis")
		return
	}
	c.JSON(http.StatusOK, gin.H{"seeded": n})
}

// ExportKPIs writes the whole catalog as a YAML catalog file.
func (h *CatalogHandler) ExportKPIs(c *gin.Context) {
	defs, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to list kpis")
		return
	}
	data, err := catalog.Encode(defs)
	if err != nil {
		respondError(c, err, "failed to encode catalog")
		return
	}
	c.Header("Content-Disposition", "attachment; filename=kpis.yaml")
	c.Data(http.StatusOK, "application/yaml", data)
}

// ImportKPIs loads a YAML catalog file from the request body. ?overwrite=true
// replaces definitions whose short key already exists.
func (h *CatalogHandler) ImportKPIs(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCatalogBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body", "details": err.Error()})
		return
	}

	defs, err := catalog.Decode(body)
	if err != nil {
		respondError(c, err, "invalid catalog file")
		return
	}

	overwrite, _ := strconv.ParseBool(c.DefaultQuery("overwrite", "false"))
	n, err := h.catalog.Import(c.Request.Context(), defs, overwrite)
	if err != nil {
		respondError(c, err, "failed to import catalog")
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n, "definitions": len(defs)})
}
