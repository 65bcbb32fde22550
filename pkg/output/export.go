package output

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/rg0now/device-assessment/pkg/analyzer"
	"github.com/rg0now/device-assessment/pkg/models"
)

// Format selects an export layout.
type Format string

const (
	FormatTable    Format = "table"
	FormatSimple   Format = "simple"
	FormatDetailed Format = "detailed"
	FormatHTML     Format = "html"
)

// ParseFormat validates an export format name. Empty selects the table layout.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatSimple, FormatDetailed, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

const timestampLayout = "2006-01-02 15:04:05"

// Snapshot is the flattened, display-ready view of an assessment used by
// every export layout.
type Snapshot struct {
	SerialNumber      string `json:"serial_number"`
	AssetTag          string `json:"asset_tag"`
	Brand             string `json:"brand"`
	Model             string `json:"model"`
	ManufacturingDate string `json:"manufacturing_date"`
	DeviceAge         string `json:"device_age"`
	DetectionSource   string `json:"detection_source"`

	FaultStatus       string `json:"fault_status"`
	Specifications    string `json:"specifications"`
	PhysicalCondition string `json:"physical_condition"`
	WarrantyStatus    string `json:"warranty_status"`

	Points Display `json:"points"`

	Decision    string         `json:"decision"`
	Outcome     models.Outcome `json:"outcome"`
	Explanation string         `json:"explanation"`

	Timestamp    string `json:"timestamp"`
	WarrantyLink string `json:"warranty_link,omitempty"`
}

// NewSnapshot flattens a, filling in placeholders for missing fields.
func NewSnapshot(a models.Assessment) Snapshot {
	year := ""
	if a.ManufacturingYear > 0 {
		year = fmt.Sprintf("%d", a.ManufacturingYear)
	}

	return Snapshot{
		SerialNumber:      orDefault(a.SerialNumber, "N/A"),
		AssetTag:          orDefault(a.AssetTag, "N/A"),
		Brand:             orDefault(a.Brand, "N/A"),
		Model:             orDefault(a.Model, "N/A"),
		ManufacturingDate: orDefault(year, "N/A"),
		DeviceAge:         orDefault(analyzer.FormatAge(a.Input.DeviceAgeYears), "N/A"),
		DetectionSource:   orDefault(a.Source, "N/A"),

		FaultStatus:       orDefault(string(a.Input.FaultStatus), "Not tested"),
		Specifications:    orDefault(string(a.Input.Specifications), "Not evaluated"),
		PhysicalCondition: orDefault(string(a.Input.PhysicalCondition), "Not assessed"),
		WarrantyStatus:    orDefault(string(a.Input.WarrantyStatus), "Unknown"),

		Points: NewDisplay(a.Breakdown),

		Decision:    a.Decision.Label,
		Outcome:     a.Decision.Outcome,
		Explanation: a.Decision.Explanation,

		Timestamp:    a.AssessedAt.Format(timestampLayout),
		WarrantyLink: WarrantyLink(a.Brand, a.SerialNumber),
	}
}

// warrantyCheckers maps brand names to their warranty lookup pages, checked in order.
var warrantyCheckers = []struct {
	brand string
	url   string
}{
	{"HP", "https://support.hp.com/us-en/checkwarranty"},
	{"Dell", "https://www.dell.com/support/home/en-us/product-support/servicetag/"},
	{"Hewlett-Packard", "https://support.hp.com/us-en/checkwarranty"},
}

// WarrantyLink returns the manufacturer's warranty check page for brand, or
// "" when none is known. Dell pages take the serial number (service tag)
// as a path suffix.
func WarrantyLink(brand, serialNumber string) string {
	lower := strings.ToLower(brand)
	for _, wc := range warrantyCheckers {
		if !strings.Contains(lower, strings.ToLower(wc.brand)) {
			continue
		}
		if strings.Contains(lower, "dell") && serialNumber != "" && serialNumber != "N/A" {
			return wc.url + serialNumber
		}
		return wc.url
	}
	return ""
}

// DecisionIcon returns a short marker for an outcome.
func DecisionIcon(o models.Outcome) string {
	switch o {
	case models.OutcomeReuse:
		return "✅"
	case models.OutcomeDonate:
		return "🎁"
	case models.OutcomeEWaste:
		return "🗑️"
	default:
		return "❓"
	}
}

// DecisionColor returns the accent color of an outcome.
func DecisionColor(o models.Outcome) string {
	switch o {
	case models.OutcomeReuse:
		return "#28a745"
	case models.OutcomeDonate:
		return "#ffc107"
	case models.OutcomeEWaste:
		return "#dc3545"
	default:
		return "#6c757d"
	}
}

// Render writes s to w in the given layout.
func Render(w io.Writer, s Snapshot, format Format) error {
	switch format {
	case FormatTable, "":
		return renderTable(w, s)
	case FormatSimple:
		return renderSimple(w, s)
	case FormatDetailed:
		return renderDetailed(w, s)
	case FormatHTML:
		return htmlReport.Execute(w, s)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func renderTable(w io.Writer, s Snapshot) error {
	var b strings.Builder
	p := s.Points

	fmt.Fprintf(&b, "LAPTOP/PC ASSET ASSESSMENT\n")
	fmt.Fprintf(&b, "Generated: %s\n", s.Timestamp)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("═", 63))

	fmt.Fprintf(&b, "DEVICE INFORMATION\n")
	row4 := "│ %-19s │ %-19s │ %-19s │ %-19s │\n"
	sep4 := strings.Repeat("─", 21)
	fmt.Fprintf(&b, "┌%s┬%s┬%s┬%s┐\n", sep4, sep4, sep4, sep4)
	fmt.Fprintf(&b, row4, "Serial Number", s.SerialNumber, "Asset Tag", s.AssetTag)
	fmt.Fprintf(&b, "├%s┼%s┼%s┼%s┤\n", sep4, sep4, sep4, sep4)
	fmt.Fprintf(&b, row4, "Brand", s.Brand, "Model", s.Model)
	fmt.Fprintf(&b, "├%s┼%s┼%s┼%s┤\n", sep4, sep4, sep4, sep4)
	fmt.Fprintf(&b, row4, "Manufacturing Date", s.ManufacturingDate, "Device Age", s.DeviceAge)
	fmt.Fprintf(&b, "└%s┴%s┴%s┴%s┘\n", sep4, sep4, sep4, sep4)
	if s.WarrantyLink != "" {
		fmt.Fprintf(&b, "\nWarranty Link: %s\n", s.WarrantyLink)
	}

	writeFactorTable(&b, "PRIMARY FACTORS", [][2]string{
		{"Fault Status: " + s.FaultStatus, p.Fault},
		{"Specifications vs SOE: " + s.Specifications, p.Spec},
		{"Physical Condition: " + s.PhysicalCondition, p.Physical},
		{"PRIMARY TOTAL:", p.Primary},
	})
	writeFactorTable(&b, "SECONDARY FACTORS", [][2]string{
		{"Warranty Status: " + s.WarrantyStatus, p.Warranty},
		{"Device Age: " + s.DeviceAge, p.Age},
		{"SECONDARY TOTAL:", p.Secondary},
	})

	fmt.Fprintf(&b, "\nFINAL ASSESSMENT\n")
	fmt.Fprintf(&b, "╔%s╗\n", strings.Repeat("═", 71))
	fmt.Fprintf(&b, "║ %-69s ║\n", fmt.Sprintf("TOTAL SCORE: %s │ DECISION: %s %s", p.Total, DecisionIcon(s.Outcome), s.Decision))
	fmt.Fprintf(&b, "╠%s╣\n", strings.Repeat("═", 71))
	fmt.Fprintf(&b, "║ %-69s ║\n", s.Explanation)
	fmt.Fprintf(&b, "╚%s╝\n", strings.Repeat("═", 71))

	_, err := io.WriteString(w, b.String())
	return err
}

func writeFactorTable(b *strings.Builder, title string, rows [][2]string) {
	left, right := strings.Repeat("─", 61), strings.Repeat("─", 17)
	fmt.Fprintf(b, "\n%s\n", title)
	fmt.Fprintf(b, "┌%s┬%s┐\n", left, right)
	for i, r := range rows {
		if i > 0 {
			fmt.Fprintf(b, "├%s┼%s┤\n", left, right)
		}
		fmt.Fprintf(b, "│ %-59s │ %-15s │\n", r[0], r[1])
	}
	fmt.Fprintf(b, "└%s┴%s┘\n", left, right)
}

func renderSimple(w io.Writer, s Snapshot) error {
	p := s.Points
	var b strings.Builder

	fmt.Fprintf(&b, "DEVICE ASSESSMENT REPORT - %s\n\n", s.Timestamp)
	fmt.Fprintf(&b, "DEVICE INFO:\n")
	fmt.Fprintf(&b, "• Serial: %s\n", s.SerialNumber)
	fmt.Fprintf(&b, "• Asset Tag: %s\n", s.AssetTag)
	fmt.Fprintf(&b, "• Brand: %s\n", s.Brand)
	fmt.Fprintf(&b, "• Model: %s\n", s.Model)
	fmt.Fprintf(&b, "• Manufacturing: %s\n", s.ManufacturingDate)
	fmt.Fprintf(&b, "• Age: %s\n", s.DeviceAge)
	if s.WarrantyLink != "" {
		fmt.Fprintf(&b, "• Warranty: %s\n", s.WarrantyLink)
	}

	fmt.Fprintf(&b, "\nASSESSMENT RESULTS:\n")
	fmt.Fprintf(&b, "• Hardware Testing: %s → %s\n", s.FaultStatus, p.Fault)
	fmt.Fprintf(&b, "• Specifications: %s → %s\n", s.Specifications, p.Spec)
	fmt.Fprintf(&b, "• Physical Condition: %s → %s\n", s.PhysicalCondition, p.Physical)
	fmt.Fprintf(&b, "• Warranty Status: %s → %s\n", s.WarrantyStatus, p.Warranty)
	fmt.Fprintf(&b, "• Device Age: %s → %s\n", s.DeviceAge, p.Age)

	fmt.Fprintf(&b, "\nFINAL RESULTS:\n")
	fmt.Fprintf(&b, "• Total Score: %s\n", p.Total)
	fmt.Fprintf(&b, "• Primary Factors: %s\n", p.Primary)
	fmt.Fprintf(&b, "• Secondary Factors: %s\n", p.Secondary)
	fmt.Fprintf(&b, "• Decision: %s %s\n", DecisionIcon(s.Outcome), s.Decision)
	fmt.Fprintf(&b, "• Explanation: %s\n", s.Explanation)

	_, err := io.WriteString(w, b.String())
	return err
}

func renderDetailed(w io.Writer, s Snapshot) error {
	p := s.Points
	var b strings.Builder

	fmt.Fprintf(&b, "Device Assessment Report\n")
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 24))

	fmt.Fprintf(&b, "Device Information\n")
	fmt.Fprintf(&b, "  Serial Number:  %-20s Asset Tag: %s\n", s.SerialNumber, s.AssetTag)
	fmt.Fprintf(&b, "  Brand:          %-20s Model:     %s\n", s.Brand, s.Model)
	fmt.Fprintf(&b, "  Manufacturing:  %-20s Age:       %s\n", s.ManufacturingDate, s.DeviceAge)
	fmt.Fprintf(&b, "  Detected by:    %s\n", s.DetectionSource)
	if s.WarrantyLink != "" {
		fmt.Fprintf(&b, "  Warranty Link:  %s\n", s.WarrantyLink)
	}

	fmt.Fprintf(&b, "\nPrimary Factors (%s)\n", p.Primary)
	fmt.Fprintf(&b, "  • Hardware Testing:   %s → %s\n", s.FaultStatus, p.Fault)
	fmt.Fprintf(&b, "  • Specifications:     %s → %s\n", s.Specifications, p.Spec)
	fmt.Fprintf(&b, "  • Physical Condition: %s → %s\n", s.PhysicalCondition, p.Physical)

	fmt.Fprintf(&b, "\nSecondary Factors (%s)\n", p.Secondary)
	fmt.Fprintf(&b, "  • Warranty Status:    %s → %s\n", s.WarrantyStatus, p.Warranty)
	fmt.Fprintf(&b, "  • Device Age:         %s → %s\n", s.DeviceAge, p.Age)

	fmt.Fprintf(&b, "\nFinal Decision: %s %s\n", DecisionIcon(s.Outcome), s.Decision)
	fmt.Fprintf(&b, "Score: %s\n", p.Total)
	fmt.Fprintf(&b, "%s\n\n", s.Explanation)
	fmt.Fprintf(&b, "Generated: %s\n", s.Timestamp)

	_, err := io.WriteString(w, b.String())
	return err
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"color": DecisionColor,
	"icon":  DecisionIcon,
}).Parse(`<table border="1" cellpadding="8" cellspacing="0" style="border-collapse: collapse; font-family: Arial, sans-serif; width: 100%; max-width: 800px;">
<thead>
<tr style="background-color: #4a6fa5; color: white;"><th colspan="4">LAPTOP/PC ASSET ASSESSMENT</th></tr>
<tr><th colspan="4">Generated: {{.Timestamp}}</th></tr>
</thead>
<tbody>
<tr><td colspan="4"><b>DEVICE INFORMATION</b></td></tr>
<tr><td>Serial Number:</td><td>{{.SerialNumber}}</td><td>Asset Tag:</td><td>{{.AssetTag}}</td></tr>
<tr><td>Brand:</td><td>{{.Brand}}</td><td>Model:</td><td>{{.Model}}</td></tr>
<tr><td>Manufacturing Date:</td><td>{{.ManufacturingDate}}</td><td>Device Age:</td><td>{{.DeviceAge}}</td></tr>
{{- if .WarrantyLink}}
<tr><td>Warranty Link:</td><td colspan="3"><a href="{{.WarrantyLink}}">{{.WarrantyLink}}</a></td></tr>
{{- end}}
<tr><td colspan="4"><b>PRIMARY FACTORS</b></td></tr>
<tr><td>Fault Status:</td><td>{{.FaultStatus}}</td><td>Points:</td><td>{{.Points.Fault}}</td></tr>
<tr><td>Specifications vs SOE:</td><td>{{.Specifications}}</td><td>Points:</td><td>{{.Points.Spec}}</td></tr>
<tr><td>Physical Condition:</td><td>{{.PhysicalCondition}}</td><td>Points:</td><td>{{.Points.Physical}}</td></tr>
<tr><td colspan="2">PRIMARY TOTAL:</td><td colspan="2">{{.Points.Primary}}</td></tr>
<tr><td colspan="4"><b>SECONDARY FACTORS</b></td></tr>
<tr><td>Warranty Status:</td><td>{{.WarrantyStatus}}</td><td>Points:</td><td>{{.Points.Warranty}}</td></tr>
<tr><td>Device Age:</td><td>{{.DeviceAge}}</td><td>Points:</td><td>{{.Points.Age}}</td></tr>
<tr><td colspan="2">SECONDARY TOTAL:</td><td colspan="2">{{.Points.Secondary}}</td></tr>
<tr style="background-color: {{color .Outcome}}; color: white;"><td colspan="4"><b>FINAL ASSESSMENT</b></td></tr>
<tr><td>TOTAL SCORE:</td><td>{{.Points.Total}}</td><td>DECISION:</td><td>{{icon .Outcome}} {{.Decision}}</td></tr>
<tr><td colspan="4"><i>{{.Explanation}}</i></td></tr>
</tbody>
</table>
`))
