package quiz

import (
	"math/rand"
	"sort"
	"testing"
)

func TestShuffle_PreservesMultiset(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	tests := []struct {
		name  string
		input []int
	}{
		{"empty", []int{}},
		{"single", []int{7}},
		{"small", []int{1, 2, 3}},
		{"duplicates", []int{5, 5, 1, 1, 3}},
		{"larger", []int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Shuffle(rng, tc.input)

			if len(got) != len(tc.input) {
				t.Fatalf("Expected length %d, got %d", len(tc.input), len(got))
			}

			wantSorted := append([]int{}, tc.input...)
			gotSorted := append([]int{}, got...)
			sort.Ints(wantSorted)
			sort.Ints(gotSorted)
			for i := range wantSorted {
				if wantSorted[i] != gotSorted[i] {
					t.Errorf("Multiset changed: expected %v, got %v", wantSorted, gotSorted)
					break
				}
			}
		})
	}
}

func TestShuffle_DoesNotModifyInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	input := []int{1, 2, 3, 4, 5, 6, 7, 8}
	before := append([]int{}, input...)

	Shuffle(rng, input)

	for i := range before {
		if input[i] != before[i] {
			t.Fatalf("Input was modified at position %d: expected %d, got %d", i, before[i], input[i])
		}
	}
}

func TestShuffle_TrivialInputsUnchanged(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	if got := Shuffle(rng, []string{}); len(got) != 0 {
		t.Errorf("Expected empty output for empty input, got %v", got)
	}
	if got := Shuffle(rng, []string{"only"}); len(got) != 1 || got[0] != "only" {
		t.Errorf("Expected single element unchanged, got %v", got)
	}
}

func TestShuffle_EventuallyReorders(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	input := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	moved := false
	for attempt := 0; attempt < 20 && !moved; attempt++ {
		got := Shuffle(rng, input)
		for i := range got {
			if got[i] != input[i] {
				moved = true
				break
			}
		}
	}
	if !moved {
		t.Error("Shuffle never produced a different order in 20 attempts")
	}
}
