package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFromString(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		a, err := FromString("42.50")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.String() != "42.50" {
			t.Errorf("expected 42.50, got %s", a.String())
		}
	})

	t.Run("zero_rejected", func(t *testing.T) {
		if _, err := FromString("0"); err == nil {
			t.Error("expected error for zero amount")
		}
	})

	t.Run("negative_rejected", func(t *testing.T) {
		if _, err := FromString("-5"); err == nil {
			t.Error("expected error for negative amount")
		}
	})

	t.Run("three_decimals_rejected", func(t *testing.T) {
		if _, err := FromString("1.999"); err == nil {
			t.Error("expected error for more than 2 decimal places")
		}
	})

	t.Run("over_maximum_rejected", func(t *testing.T) {
		if _, err := FromString("100000000.00"); err == nil {
			t.Error("expected error for amount over maximum")
		}
	})

	t.Run("maximum_accepted", func(t *testing.T) {
		if _, err := FromString("99999999.99"); err != nil {
			t.Errorf("maximum amount should be valid: %v", err)
		}
	})

	t.Run("not_a_number", func(t *testing.T) {
		if _, err := FromString("abc"); err == nil {
			t.Error("expected error for non-numeric input")
		}
	})
}

func TestArithmetic(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		a, _ := FromString("10.25")
		b, _ := FromString("5.75")
		sum, err := a.Add(b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sum.String() != "16.00" {
			t.Errorf("expected 16.00, got %s", sum.String())
		}
	})

	t.Run("sub_to_zero_rejected", func(t *testing.T) {
		a, _ := FromString("10")
		if _, err := a.Sub(a); err == nil {
			t.Error("expected error when subtracting to zero")
		}
	})

	t.Run("add_overflow_rejected", func(t *testing.T) {
		a, _ := FromString("99999999.99")
		b, _ := FromString("0.01")
		if _, err := a.Add(b); err == nil {
			t.Error("expected error when sum exceeds maximum")
		}
	})
}

func TestComparisons(t *testing.T) {
	a, _ := FromString("10")
	b, _ := FromString("10.00")
	c, _ := FromString("20")

	if !a.Equal(b) {
		t.Error("10 should equal 10.00")
	}
	if !c.GreaterThan(a) {
		t.Error("20 should be greater than 10")
	}
	if !a.LessThan(c) {
		t.Error("10 should be less than 20")
	}
}

func TestFormat(t *testing.T) {
	a, _ := FromString("1234.5")

	if got := a.Format("USD"); got != "$1234.50" {
		t.Errorf("expected $1234.50, got %s", got)
	}
	if got := a.Format("EUR"); got != "€1234.50" {
		t.Errorf("expected €1234.50, got %s", got)
	}
	if got := a.Format("XYZ"); got != "XYZ1234.50" {
		t.Errorf("expected code fallback, got %s", got)
	}
}

func TestNewPreservesValue(t *testing.T) {
	d := decimal.RequireFromString("7.07")
	a, err := New(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Decimal().Equal(d) {
		t.Errorf("expected %s, got %s", d, a.Decimal())
	}
}
