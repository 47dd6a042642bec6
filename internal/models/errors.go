package models

import "errors"

var (
	// ErrInvalidProfile is returned when a competitor profile fails validation
	ErrInvalidProfile = errors.New("invalid competitor profile")

	// ErrMalformedPairing is returned for a pairing that does not hold exactly two distinct competitors
	ErrMalformedPairing = errors.New("malformed pairing")

	// ErrInvalidLineup is returned when a lineup would break the salary cap, roster size or pairing exclusivity
	ErrInvalidLineup = errors.New("invalid lineup")
)
