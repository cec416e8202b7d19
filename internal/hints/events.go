package hints

import "github.com/rcliao/tag-hints/internal/observability"

const eventSource = "hints"

// Events emitted by a Cache. Every event carries the cache's mode.
const (
	EventLoadComplete  observability.EventType = "hints.load.complete"
	EventLoadFailed    observability.EventType = "hints.load.failed"
	EventDecodeFailed  observability.EventType = "hints.decode.failed"
	EventEncodeFailed  observability.EventType = "hints.encode.failed"
	EventPersistFailed observability.EventType = "hints.persist.failed"
)
