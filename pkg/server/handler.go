package server

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rg0now/device-assessment/pkg/analyzer"
	"github.com/rg0now/device-assessment/pkg/catalog"
	"github.com/rg0now/device-assessment/pkg/models"
	"github.com/rg0now/device-assessment/pkg/output"
)

type AssessmentHandler struct {
	analyzer      *analyzer.Analyzer
	validate      *validator.Validate
	defaultFormat output.Format
}

func NewAssessmentHandler(a *analyzer.Analyzer, v *validator.Validate, defaultFormat output.Format) *AssessmentHandler {
	return &AssessmentHandler{analyzer: a, validate: v, defaultFormat: defaultFormat}
}

func (h *AssessmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	assessments := router.Group("/assessments")
	{
		assessments.POST("", h.Assess)
		assessments.POST("/export", h.Export)
	}
}

// bind decodes and validates an assessment body, replying 400 on failure.
func (h *AssessmentHandler) bind(c *gin.Context) (analyzer.Request, bool) {
	var req AssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return analyzer.Request{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, validationMessage(err))
		return analyzer.Request{}, false
	}
	return req.ToRequest(), true
}

func (h *AssessmentHandler) Assess(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	as := h.analyzer.Assess(req)
	SuccessResponse(c, http.StatusOK, "Device assessed", AssessResponse{
		Assessment: as,
		Display:    output.NewDisplay(as.Breakdown),
	})
}

func (h *AssessmentHandler) Export(c *gin.Context) {
	format := h.defaultFormat
	if q := c.Query("format"); q != "" {
		f, err := output.ParseFormat(q)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	req, ok := h.bind(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := output.Render(&buf, output.NewSnapshot(h.analyzer.Assess(req)), format); err != nil {
		_ = c.Error(err)
		ErrorResponse(c, http.StatusInternalServerError, "Failed to render export")
		return
	}

	contentType := "text/plain; charset=utf-8"
	if format == output.FormatHTML {
		contentType = "text/html; charset=utf-8"
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

type CatalogHandler struct {
	store    *catalog.Store
	analyzer *analyzer.Analyzer
}

func NewCatalogHandler(store *catalog.Store, a *analyzer.Analyzer) *CatalogHandler {
	return &CatalogHandler{store: store, analyzer: a}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	cat := router.Group("/catalog")
	{
		cat.GET("", h.Info)
		cat.GET("/brands", h.Brands)
		cat.GET("/brands/:brand/models", h.Models)
		cat.GET("/lookup", h.Lookup)
		cat.POST("/reload", h.Reload)
	}
}

func (h *CatalogHandler) Info(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Catalog info", catalogInfo(h.store.Current()))
}

func (h *CatalogHandler) Brands(c *gin.Context) {
	brands := h.store.Current().Brands(c.Query("q"))
	if brands == nil {
		brands = []string{}
	}
	SuccessResponse(c, http.StatusOK, "Brands retrieved", brands)
}

func (h *CatalogHandler) Models(c *gin.Context) {
	names := h.store.Current().Models(c.Param("brand"), c.Query("q"))
	if names == nil {
		names = []string{}
	}
	SuccessResponse(c, http.StatusOK, "Models retrieved", names)
}

// Lookup resolves an exact brand/model pair. A miss is a normal answer.
func (h *CatalogHandler) Lookup(c *gin.Context) {
	brand, model := c.Query("brand"), c.Query("model")
	resp := LookupResponse{Brand: brand, Model: model}

	if year, ok := h.store.Current().Lookup(brand, model); ok {
		age := analyzer.DeriveAge(year, h.analyzer.CurrentYear())
		years := float64(age)
		resp.Found = true
		resp.ManufacturingYear = year
		resp.DeviceAgeYears = &years
		resp.WarrantyStatus = analyzer.DeriveWarranty(age)
		resp.Source = models.SourceDatabaseLookup
		resp.Confidence = models.ConfidenceHigh
	}

	SuccessResponse(c, http.StatusOK, "Lookup completed", resp)
}

func (h *CatalogHandler) Reload(c *gin.Context) {
	cat, err := h.store.Reload()
	if err != nil {
		_ = c.Error(err)
		ErrorResponse(c, http.StatusUnprocessableEntity, "Catalog not reloaded: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Catalog reloaded", catalogInfo(cat))
}

func catalogInfo(c *catalog.Catalog) CatalogInfo {
	return CatalogInfo{
		Version:     c.Version(),
		LastUpdated: c.LastUpdated(),
		Brands:      c.BrandCount(),
		Models:      c.ModelCount(),
	}
}
