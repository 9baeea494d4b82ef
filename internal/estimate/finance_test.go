package estimate

import (
	"errors"
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	items := []LineItem{
		{Qty: 10, Rate: 50, Total: 500},
		{Qty: 2, Rate: 250, Total: 500},
	}
	sum, err := Summarize(items, 35, 15)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Base != 1000 {
		t.Fatalf("base: got=%v want=1000", sum.Base)
	}
	// 50% combined margin doubles the price.
	if math.Abs(sum.Final-2000) > 1e-9 {
		t.Fatalf("final: got=%v want=2000", sum.Final)
	}
}

func TestSummarize_MarginBlocked(t *testing.T) {
	for _, c := range []struct{ markup, overhead float64 }{
		{90, 10},
		{100, 0},
		{60, 55},
	} {
		if _, err := Summarize(nil, c.markup, c.overhead); !errors.Is(err, ErrMarginBlocked) {
			t.Fatalf("markup=%v overhead=%v: want ErrMarginBlocked, got %v", c.markup, c.overhead, err)
		}
	}
}

func TestSummarize_EmptyItems(t *testing.T) {
	sum, err := Summarize(nil, 20, 10)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Base != 0 || sum.Final != 0 {
		t.Fatalf("empty items should price at zero, got %+v", sum)
	}
}
