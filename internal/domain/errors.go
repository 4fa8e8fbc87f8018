package domain

import "errors"

var (
	ErrNoDraft          = errors.New("no budget draft in progress")
	ErrInvalidFieldPath = errors.New("field path does not resolve to a document value")
	ErrIndexOutOfRange  = errors.New("section index out of range")
	ErrUnknownSection   = errors.New("unknown document section")
	ErrNotFound         = errors.New("not found")
)
