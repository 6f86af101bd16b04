package services

import "errors"

// Domain errors. Routes translate these to HTTP statuses in one place
// (utils.RespondError); services never touch status codes.
var (
	ErrValidation         = errors.New("invalid input")
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("not allowed to perform this action")
	ErrUnknownSport       = errors.New("unknown sport")
	ErrAlreadyParticipant = errors.New("already participating in this event")
	ErrNotParticipant     = errors.New("not participating in this event")
	ErrEventFull          = errors.New("event has reached its participant limit")
	ErrEventNotJoinable   = errors.New("event is not open for joining")
	ErrNotPending         = errors.New("event has already been reviewed")
)
