package chat

import "time"

// Frame discriminators. The upper-case values are the wire contract the
// existing clients speak; they are kept verbatim.
const (
	TypeConnection      = "connection"
	TypeGroupConnection = "GROUPCONNECTION"
	TypeP2P             = "P2PMESSAGE"
	TypeGroup           = "GROUPMESSAGE"
)

// Message is a chat frame. Data is an opaque serialized payload the
// relay never parses; Date is stamped server-side at fan-out time.
type Message struct {
	Type      string    `json:"type"`
	Name      string    `json:"name,omitempty"`
	To        string    `json:"to,omitempty"`
	GroupName string    `json:"groupName,omitempty"`
	Data      string    `json:"data,omitempty"`
	Date      time.Time `json:"date,omitzero"`
}
