package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rg0now/device-assessment/pkg/models"
)

// Writer handles output of assessment results.
type Writer struct {
	file   *os.File
	writer io.Writer
}

// NewWriter creates a new output writer.
func NewWriter(path string) (*Writer, error) {
	if path == "" || path == "-" {
		return &Writer{
			file:   nil,
			writer: os.Stdout,
		}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &Writer{
		file:   file,
		writer: file,
	}, nil
}

// NewStreamWriter wraps an already open stream.
func NewStreamWriter(w io.Writer) *Writer {
	return &Writer{writer: w}
}

// WriteAssessment writes a single assessment as a JSON line.
func (w *Writer) WriteAssessment(a models.Assessment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal assessment: %w", err)
	}

	_, err = fmt.Fprintf(w.writer, "%s\n", data)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

// WriteAssessments writes multiple assessments as JSON lines.
func (w *Writer) WriteAssessments(assessments []models.Assessment) error {
	for _, a := range assessments {
		if err := w.WriteAssessment(a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the output file if it was opened.
func (w *Writer) Close() error {
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// Summary represents assessment summary statistics.
type Summary struct {
	TotalAssessments int                    `json:"total_assessments"`
	Waiting          int                    `json:"waiting"`
	ByOutcome        map[models.Outcome]int `json:"by_outcome"`
	ByBrand          map[string]int         `json:"by_brand"`
	AverageScore     float64                `json:"average_score"`
	TopScores        []models.Assessment    `json:"top_scores,omitempty"`
	BottomScores     []models.Assessment    `json:"bottom_scores,omitempty"`
}

// GenerateSummary generates a summary from a list of assessments. Incomplete
// (waiting) assessments are counted but left out of the average and rankings.
func GenerateSummary(assessments []models.Assessment, topN int) Summary {
	summary := Summary{
		TotalAssessments: len(assessments),
		ByOutcome:        make(map[models.Outcome]int),
		ByBrand:          make(map[string]int),
	}

	var scored []models.Assessment
	totalScore := 0.0
	for _, a := range assessments {
		summary.ByOutcome[a.Decision.Outcome]++

		brand := a.Brand
		if brand == "" {
			brand = "unknown"
		}
		summary.ByBrand[brand]++

		if a.Breakdown.Waiting {
			summary.Waiting++
			continue
		}
		totalScore += a.Breakdown.GrandTotal
		scored = append(scored, a)
	}

	if len(scored) > 0 {
		summary.AverageScore = totalScore / float64(len(scored))
	}

	if topN > 0 {
		summary.TopScores = getTopByScore(scored, topN, true)
		summary.BottomScores = getTopByScore(scored, topN, false)
	}

	return summary
}

// getTopByScore gets the top N assessments by grand total (highest or lowest).
func getTopByScore(assessments []models.Assessment, n int, highest bool) []models.Assessment {
	sorted := make([]models.Assessment, len(assessments))
	copy(sorted, assessments)

	sort.SliceStable(sorted, func(i, j int) bool {
		if highest {
			return sorted[i].Breakdown.GrandTotal > sorted[j].Breakdown.GrandTotal
		}
		return sorted[i].Breakdown.GrandTotal < sorted[j].Breakdown.GrandTotal
	})

	if n > len(sorted) {
		n = len(sorted)
	}

	return sorted[:n]
}

// PrintSummary prints a summary to the given writer.
func PrintSummary(w io.Writer, summary Summary) {
	fmt.Fprintf(w, "=== Assessment Summary ===\n\n")
	fmt.Fprintf(w, "Total Assessments: %d\n", summary.TotalAssessments)
	fmt.Fprintf(w, "Incomplete: %d\n", summary.Waiting)
	fmt.Fprintf(w, "Average Score: %.2f\n\n", summary.AverageScore)

	fmt.Fprintf(w, "Disposition Distribution:\n")
	for _, outcome := range []models.Outcome{
		models.OutcomeReuse, models.OutcomeDonate, models.OutcomeEWaste, models.OutcomeWaiting,
	} {
		count := summary.ByOutcome[outcome]
		if count == 0 {
			continue
		}
		pct := 100.0 * float64(count) / float64(summary.TotalAssessments)
		fmt.Fprintf(w, "  %s: %d (%.1f%%)\n", outcome, count, pct)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Brands:\n")
	brands := make([]string, 0, len(summary.ByBrand))
	for brand := range summary.ByBrand {
		brands = append(brands, brand)
	}
	sort.Slice(brands, func(i, j int) bool {
		if summary.ByBrand[brands[i]] != summary.ByBrand[brands[j]] {
			return summary.ByBrand[brands[i]] > summary.ByBrand[brands[j]]
		}
		return brands[i] < brands[j]
	})
	for i := 0; i < len(brands) && i < 10; i++ {
		fmt.Fprintf(w, "  %s: %d\n", brands[i], summary.ByBrand[brands[i]])
	}
	fmt.Fprintf(w, "\n")

	if len(summary.TopScores) > 0 {
		fmt.Fprintf(w, "Highest Scores:\n")
		for i, a := range summary.TopScores {
			fmt.Fprintf(w, "  %d. %s (score: %s, %s)\n", i+1, assessmentName(a), FormatNumber(a.Breakdown.GrandTotal), a.Decision.Label)
		}
		fmt.Fprintf(w, "\n")
	}

	if len(summary.BottomScores) > 0 {
		fmt.Fprintf(w, "Lowest Scores:\n")
		for i, a := range summary.BottomScores {
			fmt.Fprintf(w, "  %d. %s (score: %s, %s)\n", i+1, assessmentName(a), FormatNumber(a.Breakdown.GrandTotal), a.Decision.Label)
		}
		fmt.Fprintf(w, "\n")
	}
}

// assessmentName picks the most specific identifier of an assessment.
func assessmentName(a models.Assessment) string {
	switch {
	case a.AssetTag != "":
		return a.AssetTag
	case a.SerialNumber != "":
		return a.SerialNumber
	case a.Brand != "" || a.Model != "":
		return a.Brand + " " + a.Model
	default:
		return a.ID
	}
}
