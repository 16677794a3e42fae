// File: registry/registry.go
// Package registry implements the process-wide connection and
// subscription registry shared by every connection.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The registry is the only cross-connection shared state. Handlers and
// destinations live in sync.Maps; each destination carries its own
// small mutex, so unrelated connections' publishes never contend on a
// global lock.

package registry

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-stomp/api"
)

// Registry maps connection ids to send-capable handles and destinations
// to their current subscriber sets. All methods are safe for arbitrary
// concurrent use.
type Registry struct {
	handlers sync.Map // int64 → api.ConnectionHandler
	channels sync.Map // string → *subscriberSet
	msgSeq   atomic.Int64
	log      zerolog.Logger
	metrics  Metrics
}

// Metrics receives registry-level counters. Implementations must be
// safe for concurrent use; a nil Metrics disables collection.
type Metrics interface {
	Inc(key string)
}

// Metric keys emitted by the registry.
const (
	MetricMessagesDelivered = "messages_delivered"
	MetricDeliveryFailures  = "delivery_failures"
)

// subscriberSet is one destination's connID → subscription-id map.
// dead marks a set that has been emptied and removed from the outer
// map; a subscriber racing against removal retries on a fresh set.
type subscriberSet struct {
	mu   sync.Mutex
	subs map[int64]string
	dead bool
}

// Option customizes registry construction.
type Option func(*Registry)

// WithLogger attaches a logger for delivery failures and disconnects.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register makes connID eligible to receive sends via handler. Last
// writer for an id wins; live connection ids are unique by assignment.
func (r *Registry) Register(connID int64, handler api.ConnectionHandler) {
	r.handlers.Store(connID, handler)
}

// Subscribe inserts connID into destination's subscriber set, creating
// the destination on first subscribe.
func (r *Registry) Subscribe(connID int64, destination, subID string) {
	for {
		v, _ := r.channels.LoadOrStore(destination, &subscriberSet{subs: make(map[int64]string)})
		set := v.(*subscriberSet)
		set.mu.Lock()
		if set.dead {
			set.mu.Unlock()
			continue
		}
		set.subs[connID] = subID
		set.mu.Unlock()
		return
	}
}

// Unsubscribe removes connID from destination. When the subscriber set
// becomes empty the destination key itself is removed.
func (r *Registry) Unsubscribe(connID int64, destination string) {
	v, ok := r.channels.Load(destination)
	if !ok {
		return
	}
	set := v.(*subscriberSet)
	set.mu.Lock()
	delete(set.subs, connID)
	if len(set.subs) == 0 {
		set.dead = true
		r.channels.Delete(destination)
	}
	set.mu.Unlock()
}

// IsSubscribed reports whether connID currently listens on destination.
func (r *Registry) IsSubscribed(connID int64, destination string) bool {
	v, ok := r.channels.Load(destination)
	if !ok {
		return false
	}
	set := v.(*subscriberSet)
	set.mu.Lock()
	_, ok = set.subs[connID]
	set.mu.Unlock()
	return ok
}

// Subscribers returns a snapshot of destination's subscribers. The
// returned map is owned by the caller; nil when the destination has no
// subscribers.
func (r *Registry) Subscribers(destination string) map[int64]string {
	v, ok := r.channels.Load(destination)
	if !ok {
		return nil
	}
	set := v.(*subscriberSet)
	set.mu.Lock()
	out := make(map[int64]string, len(set.subs))
	for id, subID := range set.subs {
		out[id] = subID
	}
	set.mu.Unlock()
	return out
}

// Send delivers one frame to connID. Any failure counts as a delivery
// failure and disconnects connID.
func (r *Registry) Send(connID int64, frame string) bool {
	v, ok := r.handlers.Load(connID)
	if !ok {
		return false
	}
	if err := v.(api.ConnectionHandler).Send(frame); err != nil {
		r.log.Warn().Int64("conn_id", connID).Err(err).Msg("delivery failed, disconnecting")
		if r.metrics != nil {
			r.metrics.Inc(MetricDeliveryFailures)
		}
		r.Disconnect(connID)
		return false
	}
	if r.metrics != nil {
		r.metrics.Inc(MetricMessagesDelivered)
	}
	return true
}

// Broadcast delivers one frame independently to every current
// subscriber of destination. Iteration order is unspecified and each
// target's outcome is independent of the others.
func (r *Registry) Broadcast(destination, frame string) {
	for connID := range r.Subscribers(destination) {
		r.Send(connID, frame)
	}
}

// Disconnect removes connID from the handler map and from every
// destination's subscriber set, then releases the transport. A second
// call for the same id is a no-op.
func (r *Registry) Disconnect(connID int64) {
	v, had := r.handlers.LoadAndDelete(connID)
	r.channels.Range(func(key, value any) bool {
		set := value.(*subscriberSet)
		set.mu.Lock()
		delete(set.subs, connID)
		if len(set.subs) == 0 && !set.dead {
			set.dead = true
			r.channels.Delete(key)
		}
		set.mu.Unlock()
		return true
	})
	if had {
		if err := v.(api.ConnectionHandler).Close(); err != nil {
			r.log.Debug().Int64("conn_id", connID).Err(err).Msg("close after disconnect")
		}
	}
}

// CloseAll disconnects every registered connection. Used on server
// shutdown.
func (r *Registry) CloseAll() {
	r.handlers.Range(func(key, _ any) bool {
		r.Disconnect(key.(int64))
		return true
	})
}

// NextMessageID issues the next process-wide message identifier.
// Identifiers start at zero, increase strictly, and are never reused.
func (r *Registry) NextMessageID() int64 {
	return r.msgSeq.Add(1) - 1
}

var _ api.Connections = (*Registry)(nil)
