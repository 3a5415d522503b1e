package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken or a value
	// is already present in a list.
	ErrDuplicate = errors.New("duplicate key")
	// ErrNotInList is returned when removing a value a list does not hold.
	ErrNotInList = errors.New("value not in list")
	// ErrInvalidRange is returned for a negative page offset.
	ErrInvalidRange = errors.New("invalid page range")
)
