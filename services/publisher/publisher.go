package publisher

// ListingField is the stream entry field that carries an encoded listing
const ListingField = "listing"

// Publisher represents a service for publishing messages
type Publisher interface {
	// Publish appends message under field key to one of the streams
	Publish(key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
