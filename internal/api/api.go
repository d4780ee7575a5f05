// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/api/handlers"
	"github.com/andresuchdata/salesperf/backend-go/internal/api/middleware"
	"github.com/andresuchdata/salesperf/backend-go/internal/catalog"
	"github.com/andresuchdata/salesperf/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Reports    *service.ReportService
	Catalog    *catalog.Catalog
	Imports    *service.ImportService
	Agreements *service.AgreementService
	Search     *service.SearchService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRole, middleware.HeaderSalesExecs},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.Scope())
	adminGroup := apiGroup.Group("")
	adminGroup.Use(middleware.AdminOnly())

	if services == nil {
		return router
	}

	if services.Reports != nil {
		reportHandler := handlers.NewReportHandler(services.Reports)
		apiGroup.GET("/reports", reportHandler.GetReport)
		kpiGroup := apiGroup.Group("/kpis/:shortKey")
		{
			kpiGroup.GET("/result", reportHandler.GetKPIResult)
			kpiGroup.GET("/drilldown", reportHandler.GetDrilldown)
			kpiGroup.GET("/drilldown/lines", reportHandler.GetDrilldownLines)
		}
	}

	if services.Catalog != nil {
		catalogHandler := handlers.NewCatalogHandler(services.Catalog)
		apiGroup.GET("/kpis", catalogHandler.ListKPIs)
		apiGroup.GET("/kpis/:shortKey", catalogHandler.GetKPI)
		adminGroup.POST("/kpis", catalogHandler.CreateKPI)
		adminGroup.PUT("/kpis/:shortKey", catalogHandler.UpdateKPI)
		adminGroup.DELETE("/kpis/:shortKey", catalogHandler.DeleteKPI)

		catalogGroup := adminGroup.Group("/catalog")
		{
			catalogGroup.POST("/seed", catalogHandler.SeedKPIs)
			catalogGroup.GET("/export", catalogHandler.ExportKPIs)
			catalogGroup.POST("/import", catalogHandler.ImportKPIs)
		}
	}

	if services.Imports != nil {
		importHandler := handlers.NewImportHandler(services.Imports)
		adminGroup.POST("/imports/:schema", importHandler.UploadFile)
		adminGroup.GET("/imports", importHandler.ListRuns)
		adminGroup.DELETE("/datasets/invoices", importHandler.ClearInvoices)
		adminGroup.DELETE("/datasets/:schema", importHandler.ClearDataset)
	}

	if services.Agreements != nil {
		agreementHandler := handlers.NewAgreementHandler(services.Agreements)
		apiGroup.GET("/agreements", agreementHandler.ListAgreements)
		apiGroup.GET("/agreements/targets", agreementHandler.GetTargets)
		apiGroup.GET("/agreements/:id", agreementHandler.GetAgreement)
		apiGroup.GET("/agreements/:id/products", agreementHandler.GetTargetProducts)
		apiGroup.GET("/agreements/:id/invoices", agreementHandler.GetTargetInvoices)
		adminGroup.POST("/agreements", agreementHandler.CreateAgreement)
		adminGroup.PUT("/agreements/:id", agreementHandler.UpdateAgreement)
		adminGroup.DELETE("/agreements/:id", agreementHandler.DeleteAgreement)
	}

	if services.Search != nil {
		searchHandler := handlers.NewSearchHandler(services.Search)
		searchGroup := apiGroup.Group("/search")
		{
			searchGroup.GET("/invoices", searchHandler.SearchInvoices)
			searchGroup.GET("/customers", searchHandler.SearchCustomers)
		}
		apiGroup.GET("/orders", searchHandler.ListOrders)
		apiGroup.GET("/stock", searchHandler.ListStock)
		apiGroup.GET("/billing/recent", searchHandler.RecentBilling)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
