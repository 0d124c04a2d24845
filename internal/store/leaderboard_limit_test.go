package store

import "testing"

func TestClampLeaderboardLimit(t *testing.T) {
	cases := map[int]int{-5: 20, 0: 20, 1: 1, 20: 20, 100: 100, 500: 100}
	for in, want := range cases {
		if got := clampLeaderboardLimit(in); got != want {
			t.Fatalf("clamp(%d) = %d, want %d", in, got, want)
		}
	}
}
