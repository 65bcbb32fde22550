package analyzer

import (
	"time"

	"github.com/google/uuid"
	"github.com/rg0now/device-assessment/pkg/catalog"
	"github.com/rg0now/device-assessment/pkg/models"
	"go.uber.org/zap"
)

// Analyzer ties the device catalog to the scoring engine.
type Analyzer struct {
	catalog     *catalog.Store
	logger      *zap.Logger
	now         func() time.Time
	currentYear int
}

// NewAnalyzer creates a new Analyzer. A nil store behaves as an empty catalog.
func NewAnalyzer(store *catalog.Store, logger *zap.Logger) *Analyzer {
	if store == nil {
		store = catalog.NewStaticStore(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		catalog: store,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock replaces the clock used for timestamps and the current year.
func (a *Analyzer) SetClock(now func() time.Time) {
	a.now = now
}

// SetCurrentYear pins the year used for age derivation. Zero uses the clock.
func (a *Analyzer) SetCurrentYear(year int) {
	a.currentYear = year
}

// CurrentYear returns the year ages are derived against.
func (a *Analyzer) CurrentYear() int {
	if a.currentYear > 0 {
		return a.currentYear
	}
	return a.now().Year()
}

// Catalog returns the catalog currently in use.
func (a *Analyzer) Catalog() *catalog.Catalog {
	return a.catalog.Current()
}

// Lookup finds the manufacturing year of a device in the current catalog.
func (a *Analyzer) Lookup(brand, model string) (int, bool) {
	return a.catalog.Current().Lookup(brand, model)
}

// Request describes one device to assess. Explicit warranty and age values
// in Input take precedence over the ones derived from the manufacturing year.
type Request struct {
	SerialNumber      string                 `json:"serial_number,omitempty"`
	AssetTag          string                 `json:"asset_tag,omitempty"`
	Brand             string                 `json:"brand,omitempty"`
	Model             string                 `json:"model,omitempty"`
	ManufacturingYear int                    `json:"manufacturing_year,omitempty"`
	Input             models.AssessmentInput `json:"input"`
}

// Assess identifies, derives, scores and classifies a single device.
func (a *Analyzer) Assess(req Request) models.Assessment {
	as := models.Assessment{
		ID:           uuid.NewString(),
		SerialNumber: req.SerialNumber,
		AssetTag:     req.AssetTag,
		Brand:        req.Brand,
		Model:        req.Model,
		Input:        req.Input,
		AssessedAt:   a.now(),
	}

	// Catalog first, then a manually supplied year.
	if year, ok := a.Lookup(req.Brand, req.Model); ok {
		as.ManufacturingYear = year
		as.Source = models.SourceDatabaseLookup
		as.Confidence = models.ConfidenceHigh
		a.logger.Debug("Found device in database",
			zap.String("brand", req.Brand),
			zap.String("model", req.Model),
			zap.Int("year", year),
		)
	} else if req.ManufacturingYear > 0 {
		as.ManufacturingYear = req.ManufacturingYear
	}

	if as.ManufacturingYear > 0 {
		age := DeriveAge(as.ManufacturingYear, a.CurrentYear())
		if as.Input.DeviceAgeYears == nil {
			years := float64(age)
			as.Input.DeviceAgeYears = &years
		}
		if as.Input.WarrantyStatus == "" {
			as.Input.WarrantyStatus = DeriveWarranty(age)
		}
	}

	res := Evaluate(as.Input)
	as.Breakdown = res.Breakdown
	as.Decision = res.Decision

	a.logger.Debug("Device assessed",
		zap.String("id", as.ID),
		zap.Float64("grand_total", res.Breakdown.GrandTotal),
		zap.String("outcome", string(res.Decision.Outcome)),
	)

	return as
}

// NewForm starts an empty assessment form backed by this analyzer.
func (a *Analyzer) NewForm() *Form {
	return &Form{analyzer: a}
}
