package output

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rg0now/device-assessment/pkg/models"
)

// Display holds the rendered point strings of a breakdown.
type Display struct {
	Fault     string `json:"fault"`
	Spec      string `json:"spec"`
	Physical  string `json:"physical"`
	Warranty  string `json:"warranty"`
	Age       string `json:"age"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Total     string `json:"total"`
}

// NewDisplay renders every point field of b.
func NewDisplay(b models.ScoreBreakdown) Display {
	return Display{
		Fault:     FormatPoints(b.FaultPoints, models.MaxFaultPoints),
		Spec:      FormatPoints(b.SpecPoints, models.MaxSpecPoints),
		Physical:  FormatPoints(b.PhysicalPoints, models.MaxPhysicalPoints),
		Warranty:  FormatPoints(b.WarrantyPoints, models.MaxWarrantyPoints),
		Age:       FormatPoints(b.AgePoints, models.MaxAgePoints),
		Primary:   FormatSubtotal(b.PrimaryTotal, models.MaxPrimaryPoints),
		Secondary: FormatSubtotal(b.SecondaryTotal, models.MaxSecondaryPoints),
		Total:     FormatGrandTotal(b),
	}
}

// FormatPoints renders category points against their maximum, annotated with
// the deduction or bonus: "3/3", "0/3 (-3)", "4/3 (+1 bonus)".
func FormatPoints(points, max float64) string {
	s := FormatNumber(points) + "/" + FormatNumber(max)
	switch d := max - points; {
	case d > 0:
		s += fmt.Sprintf(" (-%s)", FormatNumber(d))
	case d < 0:
		s += fmt.Sprintf(" (+%s bonus)", FormatNumber(-d))
	}
	return s
}

// FormatSubtotal renders a subtotal such as "7/8 pts".
func FormatSubtotal(points, max float64) string {
	return FormatNumber(points) + "/" + FormatNumber(max) + " pts"
}

// FormatGrandTotal renders the grand total, noting the extra age penalty
// when one applies: "9.5/12 (-1.5 age penalty)".
func FormatGrandTotal(b models.ScoreBreakdown) string {
	s := FormatNumber(b.GrandTotal) + "/" + strconv.Itoa(models.MaxTotalPoints)
	if b.ExtraAgePenalty > 0 {
		s += fmt.Sprintf(" (-%s age penalty)", FormatNumber(b.ExtraAgePenalty))
	}
	return s
}

// FormatNumber prints v with at most two decimals and no trailing zeros.
func FormatNumber(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
