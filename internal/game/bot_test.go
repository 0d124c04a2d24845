package game

import "testing"

func TestChooseColumnTakesWinOverBlock(t *testing.T) {
	b := boardFrom(map[[2]int]Cell{
		{5, 0}: PartyB, {5, 1}: PartyB, {5, 2}: PartyB,
		{5, 6}: PartyA, {4, 6}: PartyA, {3, 6}: PartyA,
	})
	if got := ChooseColumn(b, PartyB, PartyA); got != 3 {
		t.Fatalf("ChooseColumn = %d, want winning column 3", got)
	}
}

func TestChooseColumnBlocksFirstThreat(t *testing.T) {
	b := boardFrom(map[[2]int]Cell{
		{5, 1}: PartyA, {5, 2}: PartyA, {5, 3}: PartyA,
		{4, 1}: PartyB, {4, 2}: PartyB,
	})
	if got := ChooseColumn(b, PartyB, PartyA); got != 0 {
		t.Fatalf("ChooseColumn = %d, want lowest blocking column 0", got)
	}
}

func TestChooseColumnAvoidsHandingWin(t *testing.T) {
	b := boardFrom(map[[2]int]Cell{
		{5, 1}: PartyB, {5, 2}: PartyA, {5, 3}: PartyB,
		{4, 1}: PartyA, {4, 2}: PartyA, {4, 3}: PartyA,
	})
	got := ChooseColumn(b, PartyB, PartyA)
	if got == 0 || got == 4 {
		t.Fatalf("ChooseColumn = %d hands the opponent a win", got)
	}
	if got != 3 {
		t.Fatalf("ChooseColumn = %d, want center column 3", got)
	}
	if _, err := b.Drop(got, PartyB); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if hasImmediateWin(b, PartyA) {
		t.Fatal("opponent has an immediate win after the bot move")
	}
}

func TestChooseColumnPrefersCenterOnEmptyBoard(t *testing.T) {
	if got := ChooseColumn(Board{}, PartyB, PartyA); got != 3 {
		t.Fatalf("ChooseColumn = %d, want 3", got)
	}
}

func TestChooseColumnOnlyLegalColumns(t *testing.T) {
	var b Board
	for r := 0; r < Rows; r++ {
		cell := PartyA
		if r%2 == 0 {
			cell = PartyB
		}
		b[r][3] = cell
	}
	for i := 0; i < 20; i++ {
		got := ChooseColumn(b, PartyB, PartyA)
		if !b.CanDrop(got) {
			t.Fatalf("ChooseColumn picked illegal column %d", got)
		}
		if _, err := b.Drop(got, PartyB); err != nil {
			t.Fatalf("drop: %v", err)
		}
		if b.Full() {
			break
		}
		b.Drop(b.LegalColumns()[0], PartyA)
		if b.Full() {
			break
		}
	}
}

func TestChooseColumnFullBoard(t *testing.T) {
	var b Board
	cell := PartyA
	for _, col := range drawSequence {
		b.Drop(col, cell)
		cell = cell.Opponent()
	}
	if got := ChooseColumn(b, PartyB, PartyA); got != -1 {
		t.Fatalf("ChooseColumn on full board = %d, want -1", got)
	}
}
