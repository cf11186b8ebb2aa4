package service

import "errors"

var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrProviderRejected   = errors.New("provider rejected post")
	ErrTransport          = errors.New("provider transport error")
	ErrPostNotFound       = errors.New("post doesn't exist")
)

// PublishError is a failed submission. Raw holds the provider body when one was received.
type PublishError struct {
	Kind    error
	Message string
	Raw     []byte
}

func (e *PublishError) Error() string {
	return e.Message
}

func (e *PublishError) Unwrap() error {
	return e.Kind
}
