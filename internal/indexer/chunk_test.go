package indexer

import (
	"reflect"
	"testing"
)

func TestSplitRange(t *testing.T) {
	got := splitRange(100, 105, 2)

	want := []blockRange{
		{From: 100, To: 101},
		{From: 102, To: 103},
		{From: 104, To: 105},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranges mismatch: %+v != %+v", got, want)
	}
}

func TestSplitRangeSingle(t *testing.T) {
	got := splitRange(5, 5, 10)

	want := []blockRange{{From: 5, To: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranges mismatch: %+v != %+v", got, want)
	}
}

func TestSplitRangeUneven(t *testing.T) {
	got := splitRange(1, 10, 4)

	want := []blockRange{
		{From: 1, To: 4},
		{From: 5, To: 8},
		{From: 9, To: 10},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranges mismatch: %+v != %+v", got, want)
	}
}

func TestSplitRangeInvalid(t *testing.T) {
	if got := splitRange(10, 9, 1); got != nil {
		t.Fatalf("expected nil for inverted range, got %+v", got)
	}
	if got := splitRange(1, 10, 0); got != nil {
		t.Fatalf("expected nil for zero chunk size, got %+v", got)
	}
}
