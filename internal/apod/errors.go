package apod

import "errors"

var (
	// ErrNotFound is returned by a Store when no record exists for a date.
	ErrNotFound = errors.New("apod record not found")

	// ErrDuplicate is returned by a Store when a record for the date already exists.
	ErrDuplicate = errors.New("apod record already exists for date")

	// ErrInvalidRange is returned when a range starts after it ends.
	ErrInvalidRange = errors.New("start date must be less than or equal to end date")

	// ErrInvalidDate is returned for date strings not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date format")

	// ErrUpstream wraps every failure talking to the picture-of-the-day API.
	ErrUpstream = errors.New("upstream apod api failure")
)
