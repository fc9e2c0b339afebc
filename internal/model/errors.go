package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")

	// ErrAlreadyDispatched is the programming misuse of dispatching a unit more than once.
	ErrAlreadyDispatched = errors.New("unit already dispatched")
	// ErrGroupStarted is the programming misuse of mutating a group once it started running.
	ErrGroupStarted = errors.New("group already started")
	// ErrManagerStarted is the programming misuse of mutating a manager once it started running.
	ErrManagerStarted = errors.New("manager already started")

	// ErrUnitFailed is returned when a unit work function marked its status as failed.
	ErrUnitFailed = errors.New("unit failed")
	// ErrIncomplete is returned when a unit work function returned without setting a terminal status.
	ErrIncomplete = errors.New("unit returned without a terminal status")
	// ErrUnitTimeout is returned when a unit exceeded the configured unit timeout.
	ErrUnitTimeout = errors.New("unit timed out")
)
