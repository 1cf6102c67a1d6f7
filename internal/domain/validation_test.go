package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAccountNumber(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		wantErr bool
	}{
		{"minimum length", "12345", false},
		{"long", "123456789012", false},
		{"too short", "1234", true},
		{"empty", "", true},
		{"letters", "12345a", true},
		{"spaces", "123 45", true},
		{"negative sign", "-12345", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccountNumber(tt.number)
			if tt.wantErr && !errors.Is(err, ErrInvalidAccountNumber) {
				t.Errorf("expected ErrInvalidAccountNumber, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateOwnerName(t *testing.T) {
	tests := []struct {
		name    string
		owner   string
		wantErr bool
	}{
		{"plain", "John Doe", false},
		{"hyphen and apostrophe", "Mary-Jane O'Brien", false},
		{"two letters", "Al", false},
		{"one letter", "J", true},
		{"only spaces", "   ", true},
		{"digits", "John 3rd", true},
		{"punctuation", "John.Doe", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOwnerName(tt.owner)
			if tt.wantErr && !errors.Is(err, ErrInvalidOwnerName) {
				t.Errorf("expected ErrInvalidOwnerName, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(decimal.NewFromInt(10)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateAmount(decimal.Zero); err != nil {
		t.Errorf("zero is a valid amount, got %v", err)
	}
	if err := ValidateAmount(decimal.NewFromInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestValidateInterestParams(t *testing.T) {
	tests := []struct {
		name        string
		rate        float64
		years       float64
		frequency   int
		expectError error
	}{
		{"valid", 0.05, 10, 12, nil},
		{"zero rate", 0, 1, 1, nil},
		{"full rate", 1, 1, 1, nil},
		{"negative rate", -0.01, 1, 12, ErrInvalidRate},
		{"rate above one", 1.01, 1, 12, ErrInvalidRate},
		{"NaN rate", math.NaN(), 1, 12, ErrInvalidRate},
		{"infinite rate", math.Inf(1), 1, 12, ErrInvalidRate},
		{"zero years", 0.05, 0, 12, ErrInvalidYears},
		{"negative years", 0.05, -1, 12, ErrInvalidYears},
		{"infinite years", 0.05, math.Inf(1), 12, ErrInvalidYears},
		{"zero frequency", 0.05, 1, 0, ErrInvalidFrequency},
		{"negative frequency", 0.05, 1, -12, ErrInvalidFrequency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterestParams(tt.rate, tt.years, tt.frequency)
			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("expected %v, got %v", tt.expectError, err)
			}
		})
	}
}
