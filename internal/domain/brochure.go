package domain

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// NewBrochureRequest builds a request for the given channel. Phone is the
// default channel; only the field of the chosen channel is required and kept.
func NewBrochureRequest(channel BrochureChannel, email, phone string, now time.Time) (BrochureRequest, error) {
	if channel == "" {
		channel = BrochureChannelPhone
	}
	req := BrochureRequest{
		ID:          uuid.New(),
		Channel:     channel,
		RequestedAt: now,
	}
	switch channel {
	case BrochureChannelPhone:
		req.Phone = strings.TrimSpace(phone)
		if req.Phone == "" {
			return BrochureRequest{}, errors.WithDetail(ErrValidation, "missing: phone")
		}
	case BrochureChannelEmail:
		req.Email = strings.TrimSpace(email)
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			return BrochureRequest{}, errors.WithDetail(ErrValidation, "missing: email")
		}
	default:
		return BrochureRequest{}, errors.WithDetailf(ErrValidation, "unknown channel %q", channel)
	}
	return req, nil
}
