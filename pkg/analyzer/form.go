package analyzer

import (
	"github.com/google/uuid"
	"github.com/rg0now/device-assessment/pkg/models"
)

// Form is the state of one operator filling in an assessment. Every setter
// mirrors a field change; Result recomputes everything from scratch.
// A Form is not safe for concurrent use.
type Form struct {
	analyzer *Analyzer

	serialNumber      string
	assetTag          string
	brand             string
	model             string
	manufacturingYear int
	source            string
	confidence        models.Confidence

	input models.AssessmentInput
}

// SetIdentification records the serial number and asset tag.
func (f *Form) SetIdentification(serialNumber, assetTag string) {
	f.serialNumber = serialNumber
	f.assetTag = assetTag
}

// SetBrand selects a brand. The model and everything derived from the
// previous device are cleared.
func (f *Form) SetBrand(brand string) {
	f.brand = brand
	f.model = ""
	f.resetDeviceInfo()
}

// SetModel selects a model and looks the device up in the catalog. A hit
// fills in the manufacturing year and derives age and warranty; a miss
// clears them.
func (f *Form) SetModel(model string) bool {
	f.model = model

	year, ok := f.analyzer.Lookup(f.brand, f.model)
	if !ok {
		f.resetDeviceInfo()
		return false
	}

	f.source = models.SourceDatabaseLookup
	f.confidence = models.ConfidenceHigh
	f.SetManufacturingYear(year)
	return true
}

// SetManufacturingYear sets the year and derives age plus a default warranty
// status, overwriting any earlier warranty choice. A non-positive year clears
// the age only.
func (f *Form) SetManufacturingYear(year int) {
	if year <= 0 {
		f.manufacturingYear = 0
		f.input.DeviceAgeYears = nil
		return
	}

	f.manufacturingYear = year
	age := DeriveAge(year, f.analyzer.CurrentYear())
	years := float64(age)
	f.input.DeviceAgeYears = &years
	f.input.WarrantyStatus = DeriveWarranty(age)
}

// SetFaultStatus sets the hardware test result.
func (f *Form) SetFaultStatus(v models.FaultStatus) { f.input.FaultStatus = v }

// SetSpecifications sets the SOE comparison.
func (f *Form) SetSpecifications(v models.Specifications) { f.input.Specifications = v }

// SetPhysicalCondition sets the physical condition.
func (f *Form) SetPhysicalCondition(v models.PhysicalCondition) { f.input.PhysicalCondition = v }

// SetWarranty overrides the warranty status.
func (f *Form) SetWarranty(v models.WarrantyStatus) { f.input.WarrantyStatus = v }

// SetAge overrides the device age. Nil marks it unknown.
func (f *Form) SetAge(age *float64) {
	if age == nil {
		f.input.DeviceAgeYears = nil
		return
	}
	v := *age
	f.input.DeviceAgeYears = &v
}

// Reset clears every field.
func (f *Form) Reset() {
	*f = Form{analyzer: f.analyzer}
}

// Input returns a copy of the current input.
func (f *Form) Input() models.AssessmentInput {
	in := f.input
	if in.DeviceAgeYears != nil {
		v := *in.DeviceAgeYears
		in.DeviceAgeYears = &v
	}
	return in
}

// ManufacturingYear returns the known manufacturing year, or zero.
func (f *Form) ManufacturingYear() int { return f.manufacturingYear }

// Source returns where the device information came from, or "".
func (f *Form) Source() string { return f.source }

// Confidence returns the identification confidence.
func (f *Form) Confidence() models.Confidence { return f.confidence }

// Result evaluates the current input.
func (f *Form) Result() Result {
	return Evaluate(f.input)
}

// BrandSuggestions lists catalog brands containing filter.
func (f *Form) BrandSuggestions(filter string) []string {
	return f.analyzer.Catalog().Brands(filter)
}

// ModelSuggestions lists models of the selected brand containing filter.
func (f *Form) ModelSuggestions(filter string) []string {
	return f.analyzer.Catalog().Models(f.brand, filter)
}

// Snapshot returns the form as an assessment record for export.
func (f *Form) Snapshot() models.Assessment {
	res := f.Result()
	return models.Assessment{
		ID:                uuid.NewString(),
		SerialNumber:      f.serialNumber,
		AssetTag:          f.assetTag,
		Brand:             f.brand,
		Model:             f.model,
		ManufacturingYear: f.manufacturingYear,
		Source:            f.source,
		Confidence:        f.confidence,
		Input:             f.Input(),
		Breakdown:         res.Breakdown,
		Decision:          res.Decision,
		AssessedAt:        f.analyzer.now(),
	}
}

func (f *Form) resetDeviceInfo() {
	f.manufacturingYear = 0
	f.input.DeviceAgeYears = nil
	f.input.WarrantyStatus = ""
	f.source = ""
	f.confidence = models.ConfidenceUnset
}
