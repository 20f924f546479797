package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1e3", 0, false},
		{"0", 0, false},
		{"0.004", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"90071992547409.93", 0, false},
	}
	for _, tc := range cases {
		d, err := ParseAmount(tc.in)
		var got Money
		if err == nil {
			got, err = MoneyFromDecimal(d)
		}
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error, got %d", tc.in, got.Cents)
			}
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestMoneyFromDecimalRoundsHalfUp(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"1.005", 101},
		{"0.285", 29},
		{"10.075", 1008},
		{"0.125", 13},
		{"19.999", 2000},
		{"0.005", 1},
		{"12.344", 1234},
	}
	for _, tc := range cases {
		got, err := MoneyFromDecimal(decimal.RequireFromString(tc.in))
		if err != nil || got.Cents != tc.out {
			t.Fatalf("%s expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
		}
	}
}

func TestMoneyDecimal(t *testing.T) {
	if got := (Money{Cents: 1205}).Decimal().String(); got != "12.05" {
		t.Fatalf("expected 12.05, got %s", got)
	}
	if got := (Money{Cents: -7}).Decimal().String(); got != "-0.07" {
		t.Fatalf("expected -0.07, got %s", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}{Money{Cents: 1205}, Money{Cents: -7}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"a":12.05,"b":-0.07}` {
		t.Fatalf("unexpected json %s", b)
	}

	var m Money
	if err := json.Unmarshal([]byte(`"40.5"`), &m); err != nil || m.Cents != 4050 {
		t.Fatalf("unmarshal string: cents=%d err=%v", m.Cents, err)
	}
	if err := json.Unmarshal([]byte(`60`), &m); err != nil || m.Cents != 6000 {
		t.Fatalf("unmarshal number: cents=%d err=%v", m.Cents, err)
	}
	if err := json.Unmarshal([]byte(`1.005`), &m); err != nil || m.Cents != 101 {
		t.Fatalf("unmarshal half cent: cents=%d err=%v", m.Cents, err)
	}
	if err := json.Unmarshal([]byte(`-0.285`), &m); err != nil || m.Cents != -29 {
		t.Fatalf("unmarshal negative: cents=%d err=%v", m.Cents, err)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}
