package game

// PlayerInfo describes an occupant of a seat. Bots and humans are identical
// to the session; IsBot only matters to the bot runner.
type PlayerInfo struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Seat     int    `json:"seat"`
	IsBot    bool   `json:"is_bot"`
}
