package main

import (
	"math"
	"testing"
)

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{999.9, "999"},
		{1000, "1.0K"},
		{1234, "1.2K"},
		{2500000, "2.50 M"},
		{3200000000, "3.20 B"},
		{1500000000000, "1.50 T"},
		{2e15, "2.000 Qd"},
		{3e18, "3.000 Qt"},
	}
	for _, c := range cases {
		if got := FormatMoney(c.in); got != c.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatMoneyCorrupted(t *testing.T) {
	if got := FormatMoney(math.NaN()); got != "0" {
		t.Errorf("FormatMoney(NaN) = %q", got)
	}
	if got := FormatMoney(math.Inf(1)); got != "0" {
		t.Errorf("FormatMoney(+Inf) = %q", got)
	}
}

func TestFormatRate(t *testing.T) {
	if got := FormatRate(1234); got != "1.2K/sec" {
		t.Errorf("FormatRate(1234) = %q", got)
	}
}
