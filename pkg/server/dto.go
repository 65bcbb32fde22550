package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rg0now/device-assessment/pkg/analyzer"
	"github.com/rg0now/device-assessment/pkg/models"
	"github.com/rg0now/device-assessment/pkg/output"
)

// AssessRequest is the body of an assessment call. Every field is optional;
// missing categorical fields yield the waiting result, not an error.
type AssessRequest struct {
	SerialNumber      string `json:"serial_number" validate:"omitempty,max=100"`
	AssetTag          string `json:"asset_tag" validate:"omitempty,max=100"`
	Brand             string `json:"brand" validate:"omitempty,max=100"`
	Model             string `json:"model" validate:"omitempty,max=200"`
	ManufacturingYear int    `json:"manufacturing_year" validate:"omitempty,gte=1970,lte=2200"`

	FaultStatus       string `json:"fault_status" validate:"omitempty,fault_status"`
	Specifications    string `json:"specifications" validate:"omitempty,specifications"`
	PhysicalCondition string `json:"physical_condition" validate:"omitempty,physical_condition"`
	WarrantyStatus    string `json:"warranty_status" validate:"omitempty,warranty_status"`

	// DeviceAgeYears wins over DeviceAge, which takes form text like "7 years".
	DeviceAgeYears *float64 `json:"device_age_years" validate:"omitempty,gte=0,lte=100"`
	DeviceAge      string   `json:"device_age" validate:"omitempty,max=50"`
}

// ToRequest converts the body into an analyzer request.
func (r AssessRequest) ToRequest() analyzer.Request {
	age := r.DeviceAgeYears
	if age == nil {
		age = analyzer.ParseAge(r.DeviceAge)
	}
	return analyzer.Request{
		SerialNumber:      strings.TrimSpace(r.SerialNumber),
		AssetTag:          strings.TrimSpace(r.AssetTag),
		Brand:             r.Brand,
		Model:             r.Model,
		ManufacturingYear: r.ManufacturingYear,
		Input: models.AssessmentInput{
			FaultStatus:       models.FaultStatus(r.FaultStatus),
			Specifications:    models.Specifications(r.Specifications),
			PhysicalCondition: models.PhysicalCondition(r.PhysicalCondition),
			WarrantyStatus:    models.WarrantyStatus(r.WarrantyStatus),
			DeviceAgeYears:    age,
		},
	}
}

// AssessResponse is an assessment plus its rendered point strings.
type AssessResponse struct {
	Assessment models.Assessment `json:"assessment"`
	Display    output.Display    `json:"display"`
}

// LookupResponse reports a catalog lookup. On a miss only Found, Brand and
// Model are set.
type LookupResponse struct {
	Found             bool                  `json:"found"`
	Brand             string                `json:"brand"`
	Model             string                `json:"model"`
	ManufacturingYear int                   `json:"manufacturing_year,omitempty"`
	DeviceAgeYears    *float64              `json:"device_age_years,omitempty"`
	WarrantyStatus    models.WarrantyStatus `json:"warranty_status,omitempty"`
	Source            string                `json:"source,omitempty"`
	Confidence        models.Confidence     `json:"confidence,omitempty"`
}

// CatalogInfo describes the loaded catalog.
type CatalogInfo struct {
	Version     string `json:"version,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
	Brands      int    `json:"brands"`
	Models      int    `json:"models"`
}

// NewValidator returns a validator that knows the assessment field values.
func NewValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "fault_status", func(s string) bool { return models.FaultStatus(s).Valid() })
	mustRegister(v, "specifications", func(s string) bool { return models.Specifications(s).Valid() })
	mustRegister(v, "physical_condition", func(s string) bool { return models.PhysicalCondition(s).Valid() })
	mustRegister(v, "warranty_status", func(s string) bool { return models.WarrantyStatus(s).Valid() })
	return v
}

func mustRegister(v *validator.Validate, tag string, valid func(string) bool) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

// validationMessage turns validator errors into a short client message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: invalid value %v (%s)", fe.Field(), fe.Value(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
