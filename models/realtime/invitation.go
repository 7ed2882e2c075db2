package realtime

// Invitation is one entry of a player's realtime inbox, keyed by a pushed
// opaque id under Invitations/{invitedUserId}/{invitationId}. It is consumed
// (removed) exactly once, by accept or decline.
type Invitation struct {
	ID          string `json:"id"`
	RoomID      string `json:"roomId"`
	InviterID   string `json:"inviterId"`
	InviterName string `json:"inviterName"`
	Timestamp   int64  `json:"timestamp"` // Unix timestamp
}
