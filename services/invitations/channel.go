package invitations

import (
	realtime "Pixelhop/models/realtime"
	"Pixelhop/services/store"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Channel delivers room invitations through each player's realtime inbox
// (Invitations/{invitedUserId}/{invitationId}). Send is fire-and-forget;
// accept and decline both consume the invitation, and consuming an already
// removed invitation is a no-op.
type Channel struct {
	store store.Store
}

func NewChannel(s store.Store) *Channel {
	return &Channel{store: s}
}

// Send pushes a new invitation into the invitee's inbox. Failures are
// logged, not retried; the returned result may be ignored.
func (c *Channel) Send(ctx context.Context, roomID, inviterID, invitedID, inviterName string) store.WriteResult {
	return store.Async("send invitation", func() error {
		inv := realtime.Invitation{
			RoomID:      roomID,
			InviterID:   inviterID,
			InviterName: inviterName,
			Timestamp:   time.Now().Unix(),
		}
		id, err := c.store.Push(ctx, store.InboxPath(invitedID), inv)
		if err != nil {
			return fmt.Errorf("error sending invitation to %s: %v", invitedID, err)
		}
		// Re-write with the generated id embedded so consumers can address it
		inv.ID = id
		if err := c.store.Set(ctx, store.InvitationPath(invitedID, id), inv); err != nil {
			return fmt.Errorf("error finalizing invitation %s: %v", id, err)
		}
		log.Printf("[INVITE] Sent invitation %s (room %s) from %s to %s", id, roomID, inviterID, invitedID)
		return nil
	})
}

// Accept consumes the invitation and returns the room id to join. A second
// accept against an already-removed id returns found=false and does nothing.
func (c *Channel) Accept(ctx context.Context, invitedID, invitationID string) (roomID string, found bool, err error) {
	var inv realtime.Invitation
	found, err = c.store.Get(ctx, store.InvitationPath(invitedID, invitationID), &inv)
	if err != nil {
		return "", false, fmt.Errorf("error reading invitation %s: %v", invitationID, err)
	}
	if !found {
		log.Printf("[INVITE] Accept of already-consumed invitation %s, ignoring", invitationID)
		return "", false, nil
	}
	if err := c.store.Remove(ctx, store.InvitationPath(invitedID, invitationID)); err != nil {
		return "", false, fmt.Errorf("error consuming invitation %s: %v", invitationID, err)
	}
	return inv.RoomID, true, nil
}

// Decline consumes the invitation without joining. Idempotent the same way
// Accept is.
func (c *Channel) Decline(ctx context.Context, invitedID, invitationID string) error {
	if err := c.store.Remove(ctx, store.InvitationPath(invitedID, invitationID)); err != nil {
		return fmt.Errorf("error declining invitation %s: %v", invitationID, err)
	}
	return nil
}

// Pending lists the invitations currently sitting in a player's inbox.
func (c *Channel) Pending(ctx context.Context, invitedID string) ([]realtime.Invitation, error) {
	children, err := c.store.Children(ctx, store.InboxPath(invitedID))
	if err != nil {
		return nil, fmt.Errorf("error listing inbox of %s: %v", invitedID, err)
	}
	invs := make([]realtime.Invitation, 0, len(children))
	for id, data := range children {
		var inv realtime.Invitation
		if err := json.Unmarshal(data, &inv); err != nil {
			// Garbled entries are skipped, not fatal
			log.Printf("[INVITE-WARN] garbled invitation %s in inbox of %s", id, invitedID)
			continue
		}
		if inv.ID == "" {
			inv.ID = id
		}
		invs = append(invs, inv)
	}
	return invs, nil
}
