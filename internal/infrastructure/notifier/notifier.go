// Package notifier fans out object-change notifications to connected
// WebSocket subscribers. Each connected client owns one bounded channel;
// when a channel is full the newest notification is dropped and counted.
package notifier

import (
	"context"
	"sync"
	"sync/atomic"

	"openadr/internal/domain/storage"
	apperrors "openadr/internal/shared/errors"
	"openadr/internal/shared/logger"
	"openadr/internal/wire"
)

// channelCapacity bounds the per-client notification backlog.
const channelCapacity = 64

// Notifier is the registry of connected subscribers.
type Notifier struct {
	store  storage.SubscriptionStore
	logger logger.Interface

	mu      sync.Mutex
	senders map[string]chan wire.Notification

	dropped atomic.Int64
}

// New creates a notifier backed by the subscription store.
func New(store storage.SubscriptionStore, log logger.Interface) *Notifier {
	return &Notifier{
		store:   store,
		logger:  log,
		senders: make(map[string]chan wire.Notification),
	}
}

// Register claims the notification channel for a client. A client may
// hold at most one connection; a second registration conflicts.
func (n *Notifier) Register(clientID string) (<-chan wire.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.senders[clientID]; ok {
		return nil, apperrors.NewConflictError("client already has an open notification connection", clientID)
	}
	ch := make(chan wire.Notification, channelCapacity)
	n.senders[clientID] = ch
	n.logger.Infow("notification subscriber registered", "client_id", clientID)
	return ch, nil
}

// Unregister releases the client's channel. Safe to call twice.
func (n *Notifier) Unregister(clientID string) {
	n.mu.Lock()
	ch, ok := n.senders[clientID]
	if ok {
		delete(n.senders, clientID)
	}
	n.mu.Unlock()

	if ok {
		close(ch)
		n.logger.Infow("notification subscriber unregistered", "client_id", clientID)
	}
}

// Connected reports whether the client holds a connection.
func (n *Notifier) Connected(clientID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.senders[clientID]
	return ok
}

// Dropped returns the number of notifications discarded due to slow
// consumers.
func (n *Notifier) Dropped() int64 {
	return n.dropped.Load()
}

// Publish enqueues a notification to every connected client whose
// subscription admits the write. Called after the write has committed.
func (n *Notifier) Publish(ctx context.Context, objectType wire.ObjectType, op wire.Operation, objectID wire.Identifier, object any, programID *wire.Identifier) {
	subs, err := n.store.Subscribers(ctx, objectType, op, programID)
	if err != nil {
		n.logger.Errorw("failed to resolve subscribers", "object_type", objectType, "operation", op, "error", err)
		return
	}

	recipients := make(map[string]bool)
	for _, sub := range subs {
		for _, oo := range sub.ObjectOperations {
			if oo.Mechanism == wire.MechanismWebsocket && oo.Matches(objectType, op) {
				recipients[sub.ClientID] = true
				break
			}
		}
	}
	if len(recipients) == 0 {
		return
	}

	notification := wire.Notification{
		ID:         objectID,
		ObjectType: objectType,
		Operation:  op,
		Object:     object,
	}

	// Copy the channels out so no send happens under the lock.
	n.mu.Lock()
	targets := make(map[string]chan wire.Notification, len(recipients))
	for clientID := range recipients {
		if ch, ok := n.senders[clientID]; ok {
			targets[clientID] = ch
		}
	}
	n.mu.Unlock()

	for clientID, ch := range targets {
		select {
		case ch <- notification:
		default:
			n.dropped.Add(1)
			n.logger.Warnw("notification dropped, subscriber too slow",
				"client_id", clientID, "object_type", objectType, "operation", op, "dropped_total", n.dropped.Load())
		}
	}
}
