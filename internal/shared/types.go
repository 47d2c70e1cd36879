package shared

// Task types
const (
	TypeLinkAudit = "links:audit"
)

// Queues, by priority
const (
	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)
