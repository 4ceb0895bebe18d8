package cache

// Metrics exposes cache-level observability hooks.
// Implementations must be safe for concurrent use: hooks are invoked from
// every shard, under that shard's lock.
type Metrics interface {
	Hit()
	Miss()
	Evict()
	Reject(reason RejectReason)
	// Resize reports the change in resident entries and bytes caused by one operation.
	Resize(dEntries int, dBytes int64)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                {}
func (NoopMetrics) Miss()               {}
func (NoopMetrics) Evict()              {}
func (NoopMetrics) Reject(RejectReason) {}
func (NoopMetrics) Resize(int, int64)   {}

var _ Metrics = NoopMetrics{}
