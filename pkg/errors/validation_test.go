package errors

import (
	"strings"
	"testing"
)

func TestValidateRoomID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "gran-1", false},
		{"valid uuid", "6f1c2a9e-4a43-4d59-9d0e-2a3c1b7f8e10", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"space", "room 1", true},
		{"control char", "room\x01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoomID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRoomID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLayoutName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "Sterile Fill Finish", false},
		{"blank", "   ", true},
		{"control", "name\x00", true},
		{"too long", strings.Repeat("x", 300), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLayoutName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLayoutName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePositive(t *testing.T) {
	if err := ValidatePositive("batch_size", 0); err != nil {
		t.Errorf("zero should pass: %v", err)
	}
	if err := ValidatePositive("batch_size", -1); err == nil {
		t.Error("negative should fail")
	}
}
