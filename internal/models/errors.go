package models

import (
	"errors"
)

var (
	ErrMissingPhoneNumber   = errors.New("models: phone number is required")
	ErrMissingItem          = errors.New("models: missing songId or albumId")
	ErrAmbiguousItem        = errors.New("models: provide either songId or albumId, not both")
	ErrMissingTransactionID = errors.New("models: missing transactionId")
	ErrItemNotFound         = errors.New("models: catalog item not found")
	ErrOrderNotFound        = errors.New("models: order not found")
	ErrForeignTransaction   = errors.New("models: order exists for this transaction but does not belong to current user")
	ErrInvalidToken         = errors.New("models: invalid download token")
	ErrLinkExpired          = errors.New("models: download link has expired")
	ErrItemNotInOrder       = errors.New("models: item not found in order")
	ErrMediaUnavailable     = errors.New("models: media file unavailable")
	ErrInvalidCredentials   = errors.New("models: invalid credentials")
)
