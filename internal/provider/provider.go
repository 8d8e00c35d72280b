// internal/provider/provider.go
package provider

import (
	"context"
	"errors"
	"fmt"
)

// SendResult is what the downstream provider reports for an accepted message.
type SendResult struct {
	ProviderMessageID string
	Status            string
}

// Gateway sends one message to one recipient.
type Gateway interface {
	// Name tags MessageSend rows, e.g. "mock" or "twilio".
	Name() string
	SendSMS(ctx context.Context, to, body string) (*SendResult, error)
}

// TransientError marks failures worth retrying later (rate limits, 5xx).
type TransientError struct {
	Code   int
	Reason string
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient provider error (%d): %s", e.Code, e.Reason)
}

// PermanentError marks failures that will never succeed (bad number, auth).
type PermanentError struct {
	Code   int
	Reason string
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent provider error (%d): %s", e.Code, e.Reason)
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
