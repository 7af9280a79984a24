package domain

import (
	"time"

	"github.com/google/uuid"
)

type BatchStatus struct {
	SeatsLeft    int
	LastReserved time.Time
}

// ReservationRequest is the enrollment form payload. It is consumed once by
// the seat service and never stored. SubmissionID names one press of the
// submit button; remote transports send it as the idempotency key.
type ReservationRequest struct {
	Fields       map[string]string
	SubmissionID string
}

type ReservationResult struct {
	Success   bool
	SeatsLeft int
	ErrorKind ErrorKind
}

type ReservationEvent struct {
	ID         uuid.UUID
	SeatsLeft  int
	ReservedAt time.Time
}

type BrochureChannel string

const (
	BrochureChannelPhone BrochureChannel = "phone"
	BrochureChannelEmail BrochureChannel = "email"
)

type BrochureRequest struct {
	ID          uuid.UUID
	Channel     BrochureChannel
	Email       string
	Phone       string
	RequestedAt time.Time
}
