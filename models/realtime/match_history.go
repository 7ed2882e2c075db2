package realtime

// MatchRatings holds the post-match peer ratings. Each field has exactly one
// writer (the rating player), which is what makes the merge safe enough.
type MatchRatings struct {
	Player1RatesPlayer2 string `json:"player1RatesPlayer2"`
	Player2RatesPlayer1 string `json:"player2RatesPlayer1"`
}

// MatchInfo identifies the match a history record belongs to
type MatchInfo struct {
	RoomID    string   `json:"roomId"`
	MatchDate int64    `json:"matchDate"`
	Players   []string `json:"players"`
}

// MatchHistoryData is the merged record at Match_History/{roomId}. It is
// created lazily by whichever participant submits a rating first; the second
// submission merges into the existing record.
type MatchHistoryData struct {
	GameStats MultiplayerGameStats `json:"gameStats"`
	Ratings   MatchRatings         `json:"ratings"`
	MatchInfo MatchInfo            `json:"matchInfo"`
}
