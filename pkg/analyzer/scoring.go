package analyzer

import (
	"math"

	"github.com/rg0now/device-assessment/pkg/models"
)

// Points deducted from each category maximum. Exceeding the SOE is a bonus.
var (
	faultDeductions = map[models.FaultStatus]float64{
		models.FaultPasses: 0,
		models.FaultFails:  3,
	}
	specDeductions = map[models.Specifications]float64{
		models.SpecExceedsSOE: -1,
		models.SpecMeetsSOE:   0,
		models.SpecBelowSOE:   3,
	}
	physicalDeductions = map[models.PhysicalCondition]float64{
		models.PhysicalReasonable:    0,
		models.PhysicalNotReasonable: 2,
	}
	warrantyDeductions = map[models.WarrantyStatus]float64{
		models.WarrantyUnder: 0,
		models.WarrantyOut:   2,
	}
)

// WaitingBreakdown is the full-score breakdown reported while input is incomplete.
func WaitingBreakdown() models.ScoreBreakdown {
	return models.ScoreBreakdown{
		FaultPoints:    models.MaxFaultPoints,
		SpecPoints:     models.MaxSpecPoints,
		PhysicalPoints: models.MaxPhysicalPoints,
		WarrantyPoints: models.MaxWarrantyPoints,
		AgePoints:      models.MaxAgePoints,
		PrimaryTotal:   models.MaxPrimaryPoints,
		SecondaryTotal: models.MaxSecondaryPoints,
		GrandTotal:     models.MaxTotalPoints,
		Waiting:        true,
	}
}

// Score computes the point breakdown for in.
//
// The extra age penalty is subtracted from the grand total only, so when it
// applies the subtotals no longer add up to the grand total. Results are not
// clamped at zero.
func Score(in models.AssessmentInput) models.ScoreBreakdown {
	if !in.Complete() {
		return WaitingBreakdown()
	}

	ageDeduction, extraPenalty := AgeDeductions(in.DeviceAgeYears)

	b := models.ScoreBreakdown{
		FaultPoints:    models.MaxFaultPoints - faultDeductions[in.FaultStatus],
		SpecPoints:     models.MaxSpecPoints - specDeductions[in.Specifications],
		PhysicalPoints: models.MaxPhysicalPoints - physicalDeductions[in.PhysicalCondition],
		WarrantyPoints: models.MaxWarrantyPoints - warrantyDeductions[in.WarrantyStatus],
		AgePoints:      models.MaxAgePoints - ageDeduction,
	}

	b.PrimaryTotal = b.FaultPoints + b.SpecPoints + b.PhysicalPoints
	b.SecondaryTotal = b.WarrantyPoints + b.AgePoints
	b.ExtraAgePenalty = extraPenalty
	b.GrandTotal = b.PrimaryTotal + b.SecondaryTotal - extraPenalty

	return b
}

// AgeDeductions returns the base age deduction and the uncapped extra
// penalty for a device of the given age. An unknown age costs nothing.
func AgeDeductions(age *float64) (base, extra float64) {
	if age == nil || math.IsNaN(*age) || math.IsInf(*age, 0) {
		return 0, 0
	}

	years := *age
	if years >= models.AgeDeductionYears {
		base = models.MaxAgePoints
	}
	if years > models.ExtraPenaltyYears {
		extra = years - models.ExtraPenaltyYears
	}
	return base, extra
}
