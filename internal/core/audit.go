package core

// AuditSink receives every event the hub produces.
// Record is called from the hub goroutine and must not block.
type AuditSink interface {
	Record(ev *Event)
}
