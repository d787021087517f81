package weights

import (
	"reflect"
	"testing"
)

func TestSetWeightOverwritesNotAccumulates(t *testing.T) {
	w := New()
	w.SetWeight(10, 3)
	w.SetWeight(10, 5)

	got, ok := w.GetWeight(10)
	if !ok || got != 5 {
		t.Fatalf("GetWeight(10) = %d, %v; want 5, true", got, ok)
	}
}

func TestAddWeightAccumulates(t *testing.T) {
	w := New()
	w.AddWeight(10, 3)
	w.AddWeight(10, 4)

	got, ok := w.GetWeight(10)
	if !ok || got != 7 {
		t.Fatalf("GetWeight(10) = %d, %v; want 7, true", got, ok)
	}
}

func TestGetLargestWeightEmpty(t *testing.T) {
	w := New()
	if _, ok := w.GetLargestWeight(); ok {
		t.Fatalf("GetLargestWeight on empty space should report false")
	}
}

func TestGetLargestWeight(t *testing.T) {
	w := New()
	w.SetWeight(0, 2)
	w.SetWeight(4, 9)
	w.SetWeight(8, 5)

	largest, ok := w.GetLargestWeight()
	if !ok || largest != 9 {
		t.Fatalf("GetLargestWeight() = %d, %v; want 9, true", largest, ok)
	}
}

func TestOffsetsAtLargestWeightSortedAndGrouped(t *testing.T) {
	w := New()
	w.SetWeight(5, 9)
	w.SetWeight(2, 9)
	w.SetWeight(8, 9)
	w.SetWeight(1, 3)

	got := w.OffsetsAtLargestWeight()
	want := []int64{2, 5, 8}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("OffsetsAtLargestWeight() = %v, want %v", got, want)
	}
}

func TestMovingOffsetBetweenGroupsDropsEmptyGroup(t *testing.T) {
	w := New()
	w.SetWeight(1, 4)
	w.SetWeight(1, 9) // moves offset 1 out of the weight-4 group, which should vanish

	if got := w.OffsetsAtWeight(4); got != nil {
		t.Fatalf("OffsetsAtWeight(4) = %v, want nil (group should be empty and removed)", got)
	}
	largest, ok := w.GetLargestWeight()
	if !ok || largest != 9 {
		t.Fatalf("GetLargestWeight() = %d, %v; want 9, true", largest, ok)
	}
}

func TestOffsetsAtWeightUnknownWeight(t *testing.T) {
	w := New()
	w.SetWeight(1, 4)
	if got := w.OffsetsAtWeight(99); got != nil {
		t.Fatalf("OffsetsAtWeight(99) = %v, want nil", got)
	}
}
