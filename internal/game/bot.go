package game

const (
	centerCol        = Cols / 2
	runWeight        = 5
	handsWinPenalty  = 1000
	centerBonusLimit = 10
)

// ChooseColumn picks the bot's column: an immediate win, else a block of the opponent's
// immediate win, else the best heuristic score. It returns -1 only on a full board.
func ChooseColumn(b Board, me, opp Cell) int {
	legal := b.LegalColumns()
	if len(legal) == 0 {
		return -1
	}

	for _, c := range legal {
		if winsWith(b, c, me) {
			return c
		}
	}
	for _, c := range legal {
		if winsWith(b, c, opp) {
			return c
		}
	}

	best := legal[0]
	bestScore := -1 << 30
	for _, c := range legal {
		score := scoreColumn(b, c, me, opp)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

func scoreColumn(b Board, col int, me, opp Cell) int {
	row, err := b.Drop(col, me)
	if err != nil {
		return -1 << 30
	}
	score := centerBonusLimit - abs(centerCol-col)
	for _, n := range b.AxisRuns(row, col) {
		score += runWeight * n
	}
	if hasImmediateWin(b, opp) {
		score -= handsWinPenalty
	}
	return score
}

// winsWith simulates cell dropping into col on a copy of b.
func winsWith(b Board, col int, cell Cell) bool {
	row, err := b.Drop(col, cell)
	if err != nil {
		return false
	}
	return b.WinsAt(row, col)
}

func hasImmediateWin(b Board, cell Cell) bool {
	for _, c := range b.LegalColumns() {
		if winsWith(b, c, cell) {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
