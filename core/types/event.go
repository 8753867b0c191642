package types

// Event is the wire form of an audit-log entry. Attribute keys and their
// presence are part of the public contract consumed by indexers and must not
// change across versions.
type Event struct {
	Type       string
	Attributes map[string]string
}

// Copy returns a detached event so sinks can retain it safely.
func (e *Event) Copy() *Event {
	if e == nil {
		return nil
	}
	attrs := make(map[string]string, len(e.Attributes))
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	return &Event{Type: e.Type, Attributes: attrs}
}
