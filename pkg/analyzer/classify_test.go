package analyzer

import (
	"testing"

	"github.com/rg0now/device-assessment/pkg/models"
)

func TestClassify(t *testing.T) {
	passing := fullInput(nil)

	failing := fullInput(nil)
	failing.FaultStatus = models.FaultFails

	damaged := fullInput(nil)
	damaged.PhysicalCondition = models.PhysicalNotReasonable

	tests := []struct {
		name                      string
		grand, primary, secondary float64
		input                     models.AssessmentInput
		want                      models.Decision
	}{
		{"waiting beats every score", 12, 8, 4, models.AssessmentInput{}, DecisionWaiting},
		{"reuse at the boundary", 10, 6, 2, passing, DecisionReuse},
		{"reuse ignores the donation gates", 10, 6, 4, failing, DecisionReuse},
		// Ten points without the reuse subtotals falls through both donation bands.
		{"primary too low for reuse", 10, 5, 4, passing, DecisionEWaste},
		{"secondary too low for reuse", 10, 8, 1, passing, DecisionEWaste},
		{"donate 8-9", 9, 7, 2, passing, DecisionDonateHigh},
		{"donate at 8", 8, 8, 0, passing, DecisionDonateHigh},
		{"donate 5-7", 7.5, 8, 0, passing, DecisionDonateLow},
		{"donate at 5", 5, 5, 0, passing, DecisionDonateLow},
		{"failed hardware test", 9, 6, 3, failing, DecisionEWaste},
		{"unreasonable condition", 7, 6, 1, damaged, DecisionEWaste},
		{"below 5", 4.9, 5, 0, passing, DecisionEWaste},
		{"four points", 4, 4, 0, passing, DecisionEWaste},
		{"negative total", -2, 0, 0, failing, DecisionEWaste},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.grand, tt.primary, tt.secondary, tt.input)
			if got != tt.want {
				t.Errorf("Classify(%v, %v, %v) = %+v, want %+v", tt.grand, tt.primary, tt.secondary, got, tt.want)
			}
		})
	}
}

func TestDonateVariantsShareOutcome(t *testing.T) {
	if DecisionDonateHigh.Outcome != DecisionDonateLow.Outcome {
		t.Fatalf("donation variants differ in outcome")
	}
	if DecisionDonateHigh.Explanation == DecisionDonateLow.Explanation {
		t.Fatalf("donation variants should explain their score band")
	}
}
