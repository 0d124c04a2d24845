package store

import "time"

const (
	ResultWin     = "win"
	ResultDraw    = "draw"
	ResultForfeit = "forfeit"

	// WinnerDraw is stored in the winner column when nobody won.
	WinnerDraw = "draw"
)

type MoveRecord struct {
	Player    string    `json:"player"`
	Column    int       `json:"column"`
	Row       int       `json:"row"`
	Timestamp time.Time `json:"timestamp"`
}

type GameAnalytics struct {
	Result     string `json:"result"`
	TotalMoves int    `json:"total_moves"`
	Bot        bool   `json:"bot"`
}

type GameRecord struct {
	ID              string
	CreatedAt       time.Time
	FinishedAt      time.Time
	DurationSeconds int
	PartyA          string
	PartyB          string
	IsBot           bool
	Winner          string
	Result          string
	Moves           []MoveRecord
	Analytics       GameAnalytics
}

type LeaderboardEntry struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
}
