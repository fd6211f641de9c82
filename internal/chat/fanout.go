package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Sink receives drained batches. Implemented by chatstore against
// Postgres; tests substitute their own.
type Sink interface {
	BulkInsert(ctx context.Context, msgs []Message) error
}

// Fanout is the single process-wide subscriber on the chat channel.
// Every inbound message passes through here exactly once, no matter
// which acceptor instance published it: timestamp, batch, route.
type Fanout struct {
	rdc      *redis.Client
	reg      *Registry
	batch    *Batcher
	sink     Sink
	channel  string
	interval time.Duration
}

func NewFanout(rdc *redis.Client, reg *Registry, batch *Batcher, sink Sink,
	channel string, interval time.Duration) *Fanout {
	return &Fanout{
		rdc:      rdc,
		reg:      reg,
		batch:    batch,
		sink:     sink,
		channel:  channel,
		interval: interval,
	}
}

// Run subscribes and processes until ctx is cancelled. Routing, size
// flushes and timer flushes all happen on this one goroutine, so a
// message is batched and delivered in the order the channel hands it to
// us and no two flushes can overlap.
func (f *Fanout) Run(ctx context.Context) {
	ps := f.rdc.Subscribe(ctx, f.channel)
	defer ps.Close()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final drain so a clean shutdown loses nothing.
			f.flush(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			f.flush(ctx)
		case m, ok := <-ps.Channel():
			if !ok {
				return
			}
			f.Handle(ctx, m.Payload)
		}
	}
}

// Handle processes one raw payload off the channel.
func (f *Fanout) Handle(ctx context.Context, payload string) {
	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		zap.L().Warn("chat.bad_payload", zap.Error(err))
		return
	}
	msg.Date = time.Now().UTC()

	if batch, full := f.batch.Add(msg); full {
		f.persist(ctx, batch)
	}

	switch msg.Type {
	case TypeP2P:
		if p := f.reg.Direct(msg.To); p != nil {
			if err := p.SendText([]byte(msg.Data)); err != nil {
				zap.L().Debug("chat.p2p_send_miss", zap.String("to", msg.To), zap.Error(err))
			}
		}
	case TypeGroup:
		// Every current member gets the payload, the publisher's own
		// connection included when it is in the list.
		for _, p := range f.reg.Group(msg.GroupName) {
			if err := p.SendText([]byte(msg.Data)); err != nil {
				zap.L().Debug("chat.group_send_miss",
					zap.String("group", msg.GroupName), zap.Error(err))
			}
		}
	}
}

// flush drains the buffer and persists it when non-empty.
func (f *Fanout) flush(ctx context.Context) {
	if batch := f.batch.Drain(); len(batch) > 0 {
		f.persist(ctx, batch)
	}
}

// persist is fire-and-forget: a rejected batch is logged and dropped,
// never retried, and live delivery is unaffected.
func (f *Fanout) persist(ctx context.Context, batch []Message) {
	if err := f.sink.BulkInsert(ctx, batch); err != nil {
		zap.L().Error("chat.flush_failed", zap.Int("batch", len(batch)), zap.Error(err))
	}
}
