package signaling

import "time"

// Peer is the slice of a connection the registry needs: JSON frame
// delivery with identity semantics (slot bookkeeping compares Peer
// values, so two distinct connections never alias).
type Peer interface {
	Send(v any) error
}

// room holds the two slots of one signaling session plus the pending
// deletion timer armed once both slots are empty.
type room struct {
	sender   Peer
	receiver Peer

	deleteTimer *time.Timer
}

func (r *room) empty() bool { return r.sender == nil && r.receiver == nil }

// cancelDelete disarms a pending deletion, if any.
func (r *room) cancelDelete() bool {
	if r.deleteTimer == nil {
		return false
	}
	r.deleteTimer.Stop()
	r.deleteTimer = nil
	return true
}

// slot returns a pointer to the slot for role.
func (r *room) slot(role Role) *Peer {
	if role == RoleSender {
		return &r.sender
	}
	return &r.receiver
}
