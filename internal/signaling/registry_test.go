package signaling

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePeer struct {
	msgs []Message
	err  error
}

func (p *fakePeer) Send(v any) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, v.(Message))
	return nil
}

func (p *fakePeer) last() Message {
	return p.msgs[len(p.msgs)-1]
}

func (p *fakePeer) ofType(t string) []Message {
	var out []Message
	for _, m := range p.msgs {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

func sdp(s string) json.RawMessage { return json.RawMessage(`"` + s + `"`) }

func TestJoinPeerStatus(t *testing.T) {
	reg := NewRegistry(time.Minute)
	sender := &fakePeer{}

	reg.Join("x", RoleSender, sender)
	require.Len(t, sender.msgs, 1)
	assert.Equal(t, TypePeerStatus, sender.msgs[0].Type)
	assert.Equal(t, PeerWaiting, sender.msgs[0].Peer)

	receiver := &fakePeer{}
	reg.Join("x", RoleReceiver, receiver)

	assert.Equal(t, PeerConnected, sender.last().Peer)
	assert.Equal(t, PeerConnected, receiver.last().Peer)
}

func TestOfferAnswerRouting(t *testing.T) {
	reg := NewRegistry(time.Minute)
	sender, receiver := &fakePeer{}, &fakePeer{}
	reg.Join("x", RoleSender, sender)
	reg.Join("x", RoleReceiver, receiver)

	reg.ForwardOffer("x", sdp("offer-sdp"))
	offers := receiver.ofType(TypeOffer)
	require.Len(t, offers, 1)
	assert.JSONEq(t, `"offer-sdp"`, string(offers[0].SDP))
	assert.Empty(t, sender.ofType(TypeOffer))

	reg.ForwardAnswer("x", sdp("answer-sdp"))
	answers := sender.ofType(TypeAnswer)
	require.Len(t, answers, 1)
	assert.JSONEq(t, `"answer-sdp"`, string(answers[0].SDP))
	assert.Empty(t, receiver.ofType(TypeAnswer))
}

func TestOfferWithoutReceiverIsNoop(t *testing.T) {
	reg := NewRegistry(time.Minute)
	sender := &fakePeer{}
	reg.Join("x", RoleSender, sender)

	reg.ForwardOffer("x", sdp("s"))
	reg.ForwardOffer("unknown-room", sdp("s"))

	assert.Empty(t, sender.ofType(TypeOffer))
}

func TestSlotExclusivity(t *testing.T) {
	reg := NewRegistry(time.Minute)
	first, second, receiver := &fakePeer{}, &fakePeer{}, &fakePeer{}
	reg.Join("x", RoleSender, first)
	reg.Join("x", RoleReceiver, receiver)
	reg.Join("x", RoleSender, second)

	// Only the current holder is addressed by forwards.
	reg.ForwardAnswer("x", sdp("a"))
	assert.Empty(t, first.ofType(TypeAnswer))
	assert.Len(t, second.ofType(TypeAnswer), 1)
}

func TestCandidateRoutingByIdentity(t *testing.T) {
	reg := NewRegistry(time.Minute)
	sender, receiver := &fakePeer{}, &fakePeer{}
	reg.Join("x", RoleSender, sender)
	reg.Join("x", RoleReceiver, receiver)

	reg.ForwardCandidate("x", sender, sdp("c1"))
	assert.Len(t, receiver.ofType(TypeCandidate), 1)
	assert.Empty(t, sender.ofType(TypeCandidate))

	reg.ForwardCandidate("x", receiver, sdp("c2"))
	assert.Len(t, sender.ofType(TypeCandidate), 1)
}

func TestCandidateFromUnboundPeerDropped(t *testing.T) {
	reg := NewRegistry(time.Minute)
	evicted, current, receiver := &fakePeer{}, &fakePeer{}, &fakePeer{}
	reg.Join("x", RoleSender, evicted)
	reg.Join("x", RoleReceiver, receiver)
	reg.Join("x", RoleSender, current)

	// A stray candidate from the evicted socket must reach nobody.
	reg.ForwardCandidate("x", evicted, sdp("stale"))
	assert.Empty(t, receiver.ofType(TypeCandidate))
	assert.Empty(t, current.ofType(TypeCandidate))
	assert.Empty(t, evicted.ofType(TypeCandidate))
}

func TestLeaveNotifiesRemainingPeer(t *testing.T) {
	reg := NewRegistry(time.Minute)
	sender, receiver := &fakePeer{}, &fakePeer{}
	reg.Join("x", RoleSender, sender)
	reg.Join("x", RoleReceiver, receiver)

	reg.Leave("x", sender)
	assert.Len(t, receiver.ofType(TypeLeave), 1)

	// The leaver is unlinked: answers no longer reach it.
	reg.ForwardAnswer("x", sdp("a"))
	assert.Empty(t, sender.ofType(TypeAnswer))
}

func TestDeferredRoomCleanup(t *testing.T) {
	reg := NewRegistry(30 * time.Millisecond)
	sender := &fakePeer{}
	reg.Join("x", RoleSender, sender)

	reg.Disconnect("x", RoleSender, sender)
	assert.Len(t, reg.Rooms(), 1, "room survives the grace period")

	assert.Eventually(t, func() bool { return len(reg.Rooms()) == 0 },
		time.Second, 5*time.Millisecond, "room reaped after the grace period")
}

func TestRejoinCancelsCleanup(t *testing.T) {
	reg := NewRegistry(40 * time.Millisecond)
	sender := &fakePeer{}
	reg.Join("x", RoleSender, sender)
	reg.Disconnect("x", RoleSender, sender)

	rejoined := &fakePeer{}
	reg.Join("x", RoleSender, rejoined)

	time.Sleep(100 * time.Millisecond)
	require.Len(t, reg.Rooms(), 1)
	assert.True(t, reg.Rooms()[0].HasSender)
}

func TestDisconnectIdempotent(t *testing.T) {
	reg := NewRegistry(time.Minute)
	p := &fakePeer{}

	// Never joined anywhere.
	reg.Disconnect("nope", RoleSender, p)

	reg.Join("x", RoleSender, p)
	reg.Disconnect("x", RoleSender, p)
	reg.Disconnect("x", RoleSender, p) // double close
	assert.Len(t, reg.Rooms(), 1)
}

func TestEvictedCloseDoesNotUnlinkReplacement(t *testing.T) {
	reg := NewRegistry(time.Minute)
	evicted, current, receiver := &fakePeer{}, &fakePeer{}, &fakePeer{}
	reg.Join("x", RoleSender, evicted)
	reg.Join("x", RoleReceiver, receiver)
	reg.Join("x", RoleSender, current)

	// The evicted socket's transport close carries its stale binding.
	reg.Disconnect("x", RoleSender, evicted)

	reg.ForwardAnswer("x", sdp("a"))
	assert.Len(t, current.ofType(TypeAnswer), 1, "replacement still slotted")
}

func TestSendFailureIsRoutingMiss(t *testing.T) {
	reg := NewRegistry(time.Minute)
	sender := &fakePeer{}
	broken := &fakePeer{err: assert.AnError}
	reg.Join("x", RoleSender, sender)
	reg.Join("x", RoleReceiver, broken)

	assert.NotPanics(t, func() { reg.ForwardOffer("x", sdp("s")) })
}
