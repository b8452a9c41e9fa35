// Package events provides event publisher implementations that do not need a
// broker. The kafka subpackage holds the real one.
package events

import "github.com/sheikh-saqib/multiowner-bank-ledger/internal/interfaces"

// NoopPublisher drops every event. Used when no broker is configured and in
// tests that do not assert on events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(topic string, event any) error { return nil }

var _ interfaces.EventPublisher = NoopPublisher{}
