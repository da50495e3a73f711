package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu              sync.Mutex
	requestCount    map[string]int64
	requestDuration map[string]time.Duration
	errorCount      map[string]int64
	commandCount    map[string]int64
	eventCount      map[string]int64
	handlerFailures map[string]int64
}

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	Requests        map[string]int64 `json:"requests"`
	RequestMillis   map[string]int64 `json:"request_millis"`
	Errors          map[string]int64 `json:"errors"`
	Commands        map[string]int64 `json:"commands"`
	EventsDelivered map[string]int64 `json:"events_delivered"`
	HandlerFailures map[string]int64 `json:"handler_failures"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:    make(map[string]int64),
		requestDuration: make(map[string]time.Duration),
		errorCount:      make(map[string]int64),
		commandCount:    make(map[string]int64),
		eventCount:      make(map[string]int64),
		handlerFailures: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requestDuration[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordCommand counts an executed command by name and outcome code ("OK" on success).
func (m *Metrics) RecordCommand(name, outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commandCount[name+"|"+outcome]++
}

// RecordEventDelivered counts an event handed to its handlers.
func (m *Metrics) RecordEventDelivered(eventType string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventCount[eventType]++
}

// RecordHandlerFailure counts a failed handler invocation.
func (m *Metrics) RecordHandlerFailure(handler, eventType string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlerFailures[handler+"|"+eventType]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	millis := make(map[string]int64, len(m.requestDuration))
	for k, v := range m.requestDuration {
		millis[k] = v.Milliseconds()
	}
	return Snapshot{
		Requests:        copyCounts(m.requestCount),
		RequestMillis:   millis,
		Errors:          copyCounts(m.errorCount),
		Commands:        copyCounts(m.commandCount),
		EventsDelivered: copyCounts(m.eventCount),
		HandlerFailures: copyCounts(m.handlerFailures),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
