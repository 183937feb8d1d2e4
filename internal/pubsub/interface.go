package pubsub

// PubSubClient publishes and decodes msgpack encoded events.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
	Close()
}
