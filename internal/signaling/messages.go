package signaling

import "encoding/json"

// Role names the two slots of a room.
type Role string

const (
	RoleSender   Role = "sender"
	RoleReceiver Role = "receiver"
)

func (r Role) valid() bool { return r == RoleSender || r == RoleReceiver }

// The closed set of frame discriminators. dispatch switches over these
// exhaustively; anything else is logged and dropped.
const (
	TypeJoin       = "join"
	TypeOffer      = "offer"
	TypeAnswer     = "answer"
	TypeCandidate  = "candidate"
	TypeLeave      = "leave"
	TypePeerStatus = "peer-status"
)

// Values for the peer field of a peer-status frame.
const (
	PeerConnected = "connected"
	PeerWaiting   = "waiting"
)

// Message is the wire frame for both directions. SDP and candidate
// payloads are opaque to the relay and forwarded verbatim.
type Message struct {
	Type      string          `json:"type"`
	Role      Role            `json:"role,omitempty"`
	Room      string          `json:"room,omitempty"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	Peer      string          `json:"peer,omitempty"`
}
