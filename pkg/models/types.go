package models

import "time"

// FaultStatus is the outcome of hardware testing.
type FaultStatus string

// Specifications compares the device against the Standard Operating Environment.
type Specifications string

// PhysicalCondition is the operator's judgement of the device's physical state.
type PhysicalCondition string

// WarrantyStatus is the warranty state of the device.
type WarrantyStatus string

// Field values. The empty string is the "unset" value for every field.
const (
	FaultPasses FaultStatus = "Passes hardware testing"
	FaultFails  FaultStatus = "Fails hardware testing"

	SpecExceedsSOE Specifications = "Exceeds SOE"
	SpecMeetsSOE   Specifications = "Meets SOE"
	SpecBelowSOE   Specifications = "Below SOE"

	PhysicalReasonable    PhysicalCondition = "Reasonable"
	PhysicalNotReasonable PhysicalCondition = "Not Reasonable"

	WarrantyUnder WarrantyStatus = "Under Warranty"
	WarrantyOut   WarrantyStatus = "Out of Warranty"
)

// Valid reports whether f is one of the known fault statuses.
func (f FaultStatus) Valid() bool { return f == FaultPasses || f == FaultFails }

// Valid reports whether s is one of the known specification levels.
func (s Specifications) Valid() bool {
	return s == SpecExceedsSOE || s == SpecMeetsSOE || s == SpecBelowSOE
}

// Valid reports whether p is one of the known physical conditions.
func (p PhysicalCondition) Valid() bool {
	return p == PhysicalReasonable || p == PhysicalNotReasonable
}

// Valid reports whether w is one of the known warranty statuses.
func (w WarrantyStatus) Valid() bool { return w == WarrantyUnder || w == WarrantyOut }

// AssessmentInput holds the operator-supplied fields for one evaluation.
type AssessmentInput struct {
	FaultStatus       FaultStatus       `json:"fault_status"`
	Specifications    Specifications    `json:"specifications"`
	PhysicalCondition PhysicalCondition `json:"physical_condition"`
	WarrantyStatus    WarrantyStatus    `json:"warranty_status"`
	DeviceAgeYears    *float64          `json:"device_age_years,omitempty"` // nil when unknown
}

// Complete reports whether all four categorical fields are set to a known value.
func (in AssessmentInput) Complete() bool {
	return in.FaultStatus.Valid() &&
		in.Specifications.Valid() &&
		in.PhysicalCondition.Valid() &&
		in.WarrantyStatus.Valid()
}

// ScoreBreakdown is the per-category and total points of one evaluation.
type ScoreBreakdown struct {
	FaultPoints    float64 `json:"fault_points"`
	SpecPoints     float64 `json:"spec_points"`
	PhysicalPoints float64 `json:"physical_points"`
	WarrantyPoints float64 `json:"warranty_points"`
	AgePoints      float64 `json:"age_points"`

	PrimaryTotal    float64 `json:"primary_total"`
	SecondaryTotal  float64 `json:"secondary_total"`
	ExtraAgePenalty float64 `json:"extra_age_penalty"`
	GrandTotal      float64 `json:"grand_total"`

	// Waiting is set when the breakdown is the neutral full-score default
	// shown before every categorical field has a value.
	Waiting bool `json:"waiting"`
}

// Outcome is the recommended disposition.
type Outcome string

const (
	OutcomeWaiting Outcome = "waiting"
	OutcomeReuse   Outcome = "reuse"
	OutcomeDonate  Outcome = "donate"
	OutcomeEWaste  Outcome = "e_waste"
)

// Decision is a disposition plus its presentation text.
type Decision struct {
	Outcome     Outcome `json:"outcome"`
	Label       string  `json:"label"`       // "REUSE", "DONATE", ...
	Explanation string  `json:"explanation"` // human-readable reason
	Tag         string  `json:"tag"`         // presentation class, e.g. "decision-reuse"
}

// Confidence of the device identification.
type Confidence string

const (
	ConfidenceUnset Confidence = ""
	ConfidenceHigh  Confidence = "high"
)

// SourceDatabaseLookup marks identification data that came from the catalog.
const SourceDatabaseLookup = "database lookup"

// Assessment is a single evaluated device, as written to JSONL and exports.
type Assessment struct {
	ID                string     `json:"id"`
	SerialNumber      string     `json:"serial_number,omitempty"`
	AssetTag          string     `json:"asset_tag,omitempty"`
	Brand             string     `json:"brand,omitempty"`
	Model             string     `json:"model,omitempty"`
	ManufacturingYear int        `json:"manufacturing_year,omitempty"`
	Source            string     `json:"source,omitempty"`
	Confidence        Confidence `json:"confidence,omitempty"`

	Input     AssessmentInput `json:"input"`
	Breakdown ScoreBreakdown  `json:"breakdown"`
	Decision  Decision        `json:"decision"`

	AssessedAt time.Time `json:"assessed_at"`
}

// Category maxima.
const (
	MaxFaultPoints    = 3
	MaxSpecPoints     = 3
	MaxPhysicalPoints = 2
	MaxWarrantyPoints = 2
	MaxAgePoints      = 2

	MaxPrimaryPoints   = MaxFaultPoints + MaxSpecPoints + MaxPhysicalPoints
	MaxSecondaryPoints = MaxWarrantyPoints + MaxAgePoints
	MaxTotalPoints     = MaxPrimaryPoints + MaxSecondaryPoints
)

// Age thresholds, in years.
const (
	WarrantyYears     = 3 // derived warranty is "Under Warranty" below this age
	AgeDeductionYears = 4 // base age deduction from this age on
	ExtraPenaltyYears = 5 // each year beyond this costs one more point
)

// Decision thresholds.
const (
	ThresholdReuse          = 10
	ThresholdReusePrimary   = 6
	ThresholdReuseSecondary = 2
	ThresholdDonateHigh     = 8
	ThresholdDonateLow      = 5
)
