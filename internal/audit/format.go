// Package audit turns committed events into activity log and status history
// records. Handlers here never mutate resources and are safe to re-run: each
// record id is derived from the event id and the handler name.
package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/itops-service/internal/events"
)

const emptyValue = "Empty"

// FormatValue renders a raw change value for humans.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return emptyValue
	case *string:
		if val == nil {
			return emptyValue
		}
		return *val
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case *time.Time:
		if val == nil {
			return emptyValue
		}
		return val.UTC().Format(time.RFC3339)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// entryID is stable for one (event, handler) pair.
func entryID(evt events.Event, handler string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(evt.ID.String()+"|"+handler)).String()
}
