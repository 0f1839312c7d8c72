package services

import (
	"errors"
	"fmt"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrStoreFault = errors.New("store fault")
)

const (
	CollectionMatchScout = "matchscout"
	CollectionPitScout   = "pitscout"
	CollectionClaims     = "matchbuttons"
)

func storeFault(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreFault, op, err)
}

func badRequest(msg string) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, msg)
}
