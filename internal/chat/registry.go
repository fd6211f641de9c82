package chat

import "sync"

// Peer is the delivery surface the chat registry routes to. Fan-out
// writes the raw message payload, never a re-encoded frame.
type Peer interface {
	SendText(data []byte) error
}

// Registry holds the live routing tables: display name -> connection for
// direct chat, group name -> member connections for group chat.
type Registry struct {
	mu     sync.Mutex
	direct map[string]Peer
	groups map[string][]Peer
}

func NewRegistry() *Registry {
	return &Registry{
		direct: make(map[string]Peer),
		groups: make(map[string][]Peer),
	}
}

// Register binds name to p. A later registration for the same name wins;
// the previous connection is simply no longer routable.
func (r *Registry) Register(name string, p Peer) {
	r.mu.Lock()
	r.direct[name] = p
	r.mu.Unlock()
}

// JoinGroup appends p to the group's member list. Members are not
// deduplicated; joining twice means receiving twice.
func (r *Registry) JoinGroup(group string, p Peer) {
	r.mu.Lock()
	r.groups[group] = append(r.groups[group], p)
	r.mu.Unlock()
}

// Direct returns the connection registered under name, or nil.
func (r *Registry) Direct(name string) Peer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.direct[name]
}

// Group snapshots the group's current member list. The copy lets callers
// do socket I/O without holding the registry lock.
func (r *Registry) Group(name string) []Peer {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.groups[name]
	out := make([]Peer, len(members))
	copy(out, members)
	return out
}

// Prune removes every binding owned by p from both tables. It sweeps all
// entries; there is no reverse index from connection to memberships, so
// cost is linear in registry size per disconnect.
func (r *Registry) Prune(p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, conn := range r.direct {
		if conn == p {
			delete(r.direct, name)
		}
	}
	for name, members := range r.groups {
		kept := members[:0]
		for _, conn := range members {
			if conn != p {
				kept = append(kept, conn)
			}
		}
		r.groups[name] = kept
	}
}

// Stats is the introspection view served by the ops API.
type Stats struct {
	DirectConnections int `json:"direct_connections"`
	Groups            int `json:"groups"`
} // @name ChatStats

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{DirectConnections: len(r.direct), Groups: len(r.groups)}
}
