package store

/**
 * This file contains the path formatters for the realtime document tree.
 * It avoids having to call "fmt.Sprintf(...)" with the same format spec
 * every time, potentially confusing the path layout.
 */

import "fmt"

func RoomPath(roomID string) string {
	return fmt.Sprintf("Rooms/%s", roomID)
}

func GameStatsPath(roomID string) string {
	return fmt.Sprintf("Rooms/%s/gameStats", roomID)
}

func InboxPath(invitedUserID string) string {
	return fmt.Sprintf("Invitations/%s", invitedUserID)
}

func InvitationPath(invitedUserID, invitationID string) string {
	return fmt.Sprintf("Invitations/%s/%s", invitedUserID, invitationID)
}

func GameRoomPath(roomID string) string {
	return fmt.Sprintf("GameRooms/%s", roomID)
}

func PlayerPositionPath(roomID, playerID string) string {
	return fmt.Sprintf("GameRooms/%s/%s/position", roomID, playerID)
}

func PlayerGameDataPath(roomID, playerID string) string {
	return fmt.Sprintf("GameRooms/%s/%s", roomID, playerID)
}

func MatchHistoryPath(roomID string) string {
	return fmt.Sprintf("Match_History/%s", roomID)
}
