package domain

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

var RequiredReservationFields = []string{"name", "email", "phone"}

func NewReservationRequest(fields map[string]string) ReservationRequest {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return ReservationRequest{Fields: copied}
}

// WithSubmissionID returns r carrying a fresh submission id unless it already
// has one.
func (r ReservationRequest) WithSubmissionID() ReservationRequest {
	if r.SubmissionID == "" {
		r.SubmissionID = uuid.NewString()
	}
	return r
}

// Validate reports ErrValidation when a required field is absent or blank.
func (r ReservationRequest) Validate() error {
	var missing []string
	for _, name := range RequiredReservationFields {
		if strings.TrimSpace(r.Fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.WithDetailf(ErrValidation, "missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

func NewReservationEvent(seatsLeft int, now time.Time) ReservationEvent {
	return ReservationEvent{
		ID:         uuid.New(),
		SeatsLeft:  seatsLeft,
		ReservedAt: now,
	}
}

// LiveSeats is the secondary urgency counter shown next to the real one.
func LiveSeats(seatsLeft, offset int) int {
	return max(0, seatsLeft-offset)
}
