package signaling

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry owns every signaling room in the process. All slot mutation
// goes through it; the mutex serializes state changes the way the
// single-threaded source of truth would, while actual socket I/O always
// happens outside the lock.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*room
	ttl   time.Duration // empty-room grace period before deletion
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		rooms: make(map[string]*room),
		ttl:   ttl,
	}
}

// Join binds p to (roomName, role), creating the room on first use.
// A pending deletion is cancelled; a previous holder of the same role is
// unlinked, not closed. Both currently slotted peers get a peer-status
// frame reflecting the new occupancy.
func (reg *Registry) Join(roomName string, role Role, p Peer) {
	reg.mu.Lock()
	rm, ok := reg.rooms[roomName]
	if !ok {
		rm = &room{}
		reg.rooms[roomName] = rm
	}
	if rm.cancelDelete() {
		zap.L().Debug("room.delete_cancelled", zap.String("room", roomName))
	}
	*rm.slot(role) = p
	sender, receiver := rm.sender, rm.receiver
	reg.mu.Unlock()

	zap.L().Info("room.join",
		zap.String("room", roomName), zap.String("role", string(role)))

	senderStatus, receiverStatus := PeerWaiting, PeerWaiting
	if receiver != nil {
		senderStatus = PeerConnected
	}
	if sender != nil {
		receiverStatus = PeerConnected
	}
	safeSend(sender, Message{Type: TypePeerStatus, Peer: senderStatus})
	safeSend(receiver, Message{Type: TypePeerStatus, Peer: receiverStatus})
}

// ForwardOffer relays an SDP offer to the room's current receiver.
func (reg *Registry) ForwardOffer(roomName string, sdp json.RawMessage) {
	reg.mu.Lock()
	var target Peer
	if rm, ok := reg.rooms[roomName]; ok {
		target = rm.receiver
	}
	reg.mu.Unlock()

	safeSend(target, Message{Type: TypeOffer, SDP: sdp})
}

// ForwardAnswer relays an SDP answer to the room's current sender.
func (reg *Registry) ForwardAnswer(roomName string, sdp json.RawMessage) {
	reg.mu.Lock()
	var target Peer
	if rm, ok := reg.rooms[roomName]; ok {
		target = rm.sender
	}
	reg.mu.Unlock()

	safeSend(target, Message{Type: TypeAnswer, SDP: sdp})
}

// ForwardCandidate relays an ICE candidate to the opposite slot, resolved
// by identity of the sending connection. Candidates from connections
// bound as neither slot (e.g. a socket evicted by a later join) are
// dropped rather than guessed at.
func (reg *Registry) ForwardCandidate(roomName string, from Peer, candidate json.RawMessage) {
	reg.mu.Lock()
	var target Peer
	if rm, ok := reg.rooms[roomName]; ok {
		switch {
		case rm.sender == from:
			target = rm.receiver
		case rm.receiver == from:
			target = rm.sender
		default:
			zap.L().Debug("room.candidate_from_unbound", zap.String("room", roomName))
		}
	}
	reg.mu.Unlock()

	safeSend(target, Message{Type: TypeCandidate, Candidate: candidate})
}

// Leave unlinks whichever slots hold p and tells the remaining peers.
// The leaving connection stays open; room deletion is only scheduled
// from the transport-close path.
func (reg *Registry) Leave(roomName string, p Peer) {
	reg.mu.Lock()
	rm, ok := reg.rooms[roomName]
	if !ok {
		reg.mu.Unlock()
		return
	}
	if rm.sender == p {
		rm.sender = nil
	}
	if rm.receiver == p {
		rm.receiver = nil
	}
	sender, receiver := rm.sender, rm.receiver
	reg.mu.Unlock()

	zap.L().Info("room.leave", zap.String("room", roomName))
	safeSend(sender, Message{Type: TypeLeave})
	safeSend(receiver, Message{Type: TypeLeave})
}

// Disconnect handles a transport close using the (room, role) binding
// captured at join time. The slot is cleared only when it still holds p,
// so a connection evicted by a later same-role join cannot unlink the
// current occupant. Once both slots are empty the room is kept for the
// grace period and reaped only if still empty when it elapses.
func (reg *Registry) Disconnect(roomName string, role Role, p Peer) {
	reg.mu.Lock()
	rm, ok := reg.rooms[roomName]
	if !ok {
		reg.mu.Unlock()
		return
	}
	if slot := rm.slot(role); *slot == p {
		*slot = nil
	}
	sender, receiver := rm.sender, rm.receiver
	if rm.empty() {
		rm.cancelDelete()
		rm.deleteTimer = time.AfterFunc(reg.ttl, func() { reg.reap(roomName) })
		zap.L().Info("room.delete_scheduled",
			zap.String("room", roomName), zap.Duration("after", reg.ttl))
	}
	reg.mu.Unlock()

	zap.L().Info("room.closed",
		zap.String("room", roomName), zap.String("role", string(role)))
	safeSend(sender, Message{Type: TypeLeave})
	safeSend(receiver, Message{Type: TypeLeave})
}

// reap removes the room if it is still empty when the timer fires.
// A join racing the timer wins: it either cancelled the timer already or
// re-filled a slot while we waited on the lock.
func (reg *Registry) reap(roomName string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rm, ok := reg.rooms[roomName]
	if !ok {
		return
	}
	rm.deleteTimer = nil
	if !rm.empty() {
		return
	}
	delete(reg.rooms, roomName)
	zap.L().Info("room.deleted", zap.String("room", roomName))
}

// RoomInfo is the introspection view served by the ops API.
type RoomInfo struct {
	Name        string `json:"name"`
	HasSender   bool   `json:"has_sender"`
	HasReceiver bool   `json:"has_receiver"`
} // @name RoomInfo

// Rooms snapshots current occupancy for introspection.
func (reg *Registry) Rooms() []RoomInfo {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	out := make([]RoomInfo, 0, len(reg.rooms))
	for name, rm := range reg.rooms {
		out = append(out, RoomInfo{
			Name:        name,
			HasSender:   rm.sender != nil,
			HasReceiver: rm.receiver != nil,
		})
	}
	return out
}

// safeSend delivers to p when slotted and open; absent targets and write
// failures are routing misses, never surfaced to the origin.
func safeSend(p Peer, msg Message) {
	if p == nil {
		return
	}
	if err := p.Send(msg); err != nil {
		zap.L().Debug("room.send_miss", zap.String("type", msg.Type), zap.Error(err))
	}
}
