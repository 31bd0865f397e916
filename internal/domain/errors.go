package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrRecordNotFound signals a missing palace record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrMediaNotFound signals a missing stored asset or thumbnail.
	ErrMediaNotFound = errors.New("media not found")
	// ErrMediaUnavailable signals content the remote source refuses to
	// serve. It is an expected outcome, not a failure: callers record an
	// absent handle and move on.
	ErrMediaUnavailable = errors.New("media unavailable at source")
	// ErrAlreadyExists signals a duplicate unique key on insert.
	ErrAlreadyExists = errors.New("already exists")
)
