// Copyright © 2025 fbterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import "testing"

func TestDefaultIsInvalidWithoutFontPath(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected Default() to be invalid before a font path is set")
	}
}

func TestValidateAcceptsInRangeFontSize(t *testing.T) {
	cfg := Default()
	cfg.PrimaryFontPath = "font.ttf"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsOutOfRangeFontSize(t *testing.T) {
	cases := []float64{0, 5.9, 72.1, 1000}
	for _, size := range cases {
		cfg := Default()
		cfg.PrimaryFontPath = "font.ttf"
		cfg.FontSizePx = size
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate() with size %v = nil, want error", size)
		}
	}
}

func TestClampColsAndRows(t *testing.T) {
	tests := []struct {
		name string
		fn   func(int) int
		in   int
		want int
	}{
		{"cols below min", ClampCols, 1, MinCols},
		{"cols above max", ClampCols, 10000, MaxCols},
		{"cols in range", ClampCols, 120, 120},
		{"rows below min", ClampRows, 1, MinRows},
		{"rows above max", ClampRows, 10000, MaxRows},
		{"rows in range", ClampRows, 40, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
