package analyzer

import (
	"testing"

	"github.com/rg0now/device-assessment/pkg/models"
)

func TestDeriveWarranty(t *testing.T) {
	tests := []struct {
		year, current int
		wantAge       int
		wantWarranty  models.WarrantyStatus
	}{
		{2025, 2025, 0, models.WarrantyUnder},
		{2023, 2025, 2, models.WarrantyUnder},
		{2022, 2025, 3, models.WarrantyOut},
		{2018, 2025, 7, models.WarrantyOut},
	}

	for _, tt := range tests {
		a := DeriveAge(tt.year, tt.current)
		if a != tt.wantAge {
			t.Errorf("DeriveAge(%d, %d) = %d, want %d", tt.year, tt.current, a, tt.wantAge)
		}
		if w := DeriveWarranty(a); w != tt.wantWarranty {
			t.Errorf("DeriveWarranty(%d) = %q, want %q", a, w, tt.wantWarranty)
		}
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"", nil},
		{"Unknown", nil},
		{"N/A", nil},
		{"7 years", age(7)},
		{"6.5", age(6.5)},
		{"  3 years years", age(3)},
		{".5", age(0.5)},
	}

	for _, tt := range tests {
		got := ParseAge(tt.in)
		switch {
		case got == nil && tt.want == nil:
		case got == nil || tt.want == nil:
			t.Errorf("ParseAge(%q) = %v, want %v", tt.in, got, tt.want)
		case *got != *tt.want:
			t.Errorf("ParseAge(%q) = %v, want %v", tt.in, *got, *tt.want)
		}
	}
}

func TestParseManufacturingYear(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"2019", 2019, true},
		{" 2019 (est.)", 2019, true},
		{"", 0, false},
		{"abc", 0, false},
		{"0", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseManufacturingYear(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseManufacturingYear(%q) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFormatAge(t *testing.T) {
	if got := FormatAge(nil); got != "" {
		t.Errorf("FormatAge(nil) = %q", got)
	}
	if got := FormatAge(age(7)); got != "7 years" {
		t.Errorf("FormatAge(7) = %q", got)
	}
	if got := FormatAge(age(6.5)); got != "6.5 years" {
		t.Errorf("FormatAge(6.5) = %q", got)
	}
}
