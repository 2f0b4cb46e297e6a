// Package stats counts conversion outcomes for the end-of-run summary.
package stats

type EventType string

const (
	EventTypeScanned      EventType = "scanned"
	EventTypeConverted    EventType = "converted"
	EventTypePartNotFound EventType = "part_not_found"
	EventTypeError        EventType = "error"
)

type Event struct {
	Type   EventType
	Source string
	Err    error
}

type Summary struct {
	Scanned      int
	Converted    int
	PartNotFound int
	Errors       int
	LastError    error
}

func (s Summary) LogAttrs() []any {
	attrs := []any{
		"scanned", s.Scanned,
		"converted", s.Converted,
		"partNotFound", s.PartNotFound,
		"errors", s.Errors,
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

// Collector tallies conversion events into a Summary. It is not safe for concurrent use.
type Collector struct {
	summary Summary
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Record(evt Event) {
	switch evt.Type {
	case EventTypeScanned:
		c.summary.Scanned++
	case EventTypeConverted:
		c.summary.Converted++
	case EventTypePartNotFound:
		c.summary.PartNotFound++
	case EventTypeError:
		c.summary.Errors++
		if evt.Err != nil {
			c.summary.LastError = evt.Err
		}
	}
}

func (c *Collector) Snapshot() Summary {
	return c.summary
}
