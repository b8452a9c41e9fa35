package interfaces

// EventPublisher delivers committed ledger events to downstream consumers.
type EventPublisher interface {
	Publish(topic string, event any) error
}
