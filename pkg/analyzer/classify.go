package analyzer

import "github.com/rg0now/device-assessment/pkg/models"

// Decisions produced by Classify.
var (
	DecisionWaiting = models.Decision{
		Outcome:     models.OutcomeWaiting,
		Label:       "Waiting for device",
		Explanation: "Enter device information to begin assessment",
		Tag:         "decision-waiting",
	}
	DecisionReuse = models.Decision{
		Outcome:     models.OutcomeReuse,
		Label:       "REUSE",
		Explanation: "Device meets all criteria for continued use",
		Tag:         "decision-reuse",
	}
	DecisionDonateHigh = models.Decision{
		Outcome:     models.OutcomeDonate,
		Label:       "DONATE",
		Explanation: "Device suitable for donation (8-9 pts, passes tests, reasonable condition)",
		Tag:         "decision-donate",
	}
	DecisionDonateLow = models.Decision{
		Outcome:     models.OutcomeDonate,
		Label:       "DONATE",
		Explanation: "Device suitable for donation (5-7 pts, passes tests, reasonable condition)",
		Tag:         "decision-donate",
	}
	DecisionEWaste = models.Decision{
		Outcome:     models.OutcomeEWaste,
		Label:       "E-WASTE",
		Explanation: "Device requires proper electronic waste disposal",
		Tag:         "decision-ewaste",
	}
)

// Classify maps the scores and the raw field values to a disposition.
// Rules are checked in order and the first match wins. Donation is gated on
// the raw hardware-test and physical-condition values, not on their points.
func Classify(grandTotal, primaryTotal, secondaryTotal float64, in models.AssessmentInput) models.Decision {
	if !in.Complete() {
		return DecisionWaiting
	}

	passesHardwareTesting := in.FaultStatus == models.FaultPasses
	isReasonableCondition := in.PhysicalCondition == models.PhysicalReasonable
	donatable := passesHardwareTesting && isReasonableCondition

	switch {
	case grandTotal >= models.ThresholdReuse &&
		primaryTotal >= models.ThresholdReusePrimary &&
		secondaryTotal >= models.ThresholdReuseSecondary:
		return DecisionReuse
	case grandTotal >= models.ThresholdDonateHigh && grandTotal < models.ThresholdReuse && donatable:
		return DecisionDonateHigh
	case grandTotal >= models.ThresholdDonateLow && grandTotal < models.ThresholdDonateHigh && donatable:
		return DecisionDonateLow
	default:
		return DecisionEWaste
	}
}

// Result is a complete evaluation of one input.
type Result struct {
	Breakdown models.ScoreBreakdown `json:"breakdown"`
	Decision  models.Decision       `json:"decision"`
}

// Evaluate scores and classifies in.
func Evaluate(in models.AssessmentInput) Result {
	b := Score(in)
	return Result{
		Breakdown: b,
		Decision:  Classify(b.GrandTotal, b.PrimaryTotal, b.SecondaryTotal, in),
	}
}
