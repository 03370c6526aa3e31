package domain

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCriteria marks malformed search input. It maps to a client error.
	ErrInvalidCriteria = errors.New("invalid search criteria")

	// ErrCollaboratorUnavailable marks a failed read from storage. It maps to a server error.
	ErrCollaboratorUnavailable = errors.New("storage collaborator unavailable")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
)

// CriteriaError lists every problem found while building search criteria.
type CriteriaError struct {
	Problems []string
}

func (e *CriteriaError) Error() string {
	return ErrInvalidCriteria.Error() + ": " + strings.Join(e.Problems, "; ")
}

// Is makes errors.Is(err, ErrInvalidCriteria) hold.
func (e *CriteriaError) Is(target error) bool {
	return target == ErrInvalidCriteria
}
