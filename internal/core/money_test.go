package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "12.34", want: 1234},
		{in: "12,34", want: 1234},
		{in: " 7 ", want: 700},
		{in: "0.005", want: 1},
		{in: "0", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "+1", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("ParseMoney(%q) err = %v, want ErrInvalidAmount", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMoney(%q) unexpected error: %v", tt.in, err)
			}
			if got.Cents != tt.want {
				t.Errorf("ParseMoney(%q) = %d, want %d", tt.in, got.Cents, tt.want)
			}
		})
	}
}

func TestMoneyFromFloat(t *testing.T) {
	if got := MoneyFromFloat(109.95); got.Cents != 10995 {
		t.Errorf("MoneyFromFloat(109.95) = %d", got.Cents)
	}
	if got := MoneyFromFloat(22.3); got.Cents != 2230 {
		t.Errorf("MoneyFromFloat(22.3) = %d", got.Cents)
	}
}

func TestMoneyFormat(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{123450, "$1,234.50"},
		{100000000, "$1,000,000.00"},
		{-2500, "-$25.00"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).FormatUSD(); got != tt.want {
			t.Errorf("FormatUSD(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
	if got := FormatWhole(709000); got != "$709,000" {
		t.Errorf("FormatWhole = %q", got)
	}
	if got := FormatWhole(-42); got != "-$42" {
		t.Errorf("FormatWhole = %q", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Product{ID: 1, Title: "Backpack", Price: Money{Cents: 10995}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var p Product
	if err := json.Unmarshal(b, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Price.Cents != 10995 {
		t.Fatalf("price after round trip = %d", p.Price.Cents)
	}

	var m Money
	if err := json.Unmarshal([]byte(`"12.5"`), &m); err != nil || m.Cents != 1250 {
		t.Fatalf("quoted decimal: cents=%d err=%v", m.Cents, err)
	}
}
