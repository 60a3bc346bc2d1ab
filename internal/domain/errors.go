package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus is returned when a remote service answers with a non-2xx status
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrEmptyAssociationID is returned when a revocation is requested without an association ID
	ErrEmptyAssociationID = errors.New("association ID is empty")
)

// FetchError is returned when one of the read endpoints fails
// It covers transport failures, non-2xx responses and undecodable bodies
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to get %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError is returned when an NFT metadata value cannot be parsed
type ParseError struct {
	Key   string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s %q: %v", e.Key, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CallError is returned when the revocation call fails
type CallError struct {
	AssociationID string
	Err           error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("failed to remove author association %s: %v", e.AssociationID, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}
