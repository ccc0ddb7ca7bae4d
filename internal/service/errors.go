package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConsultantNotFound = errors.New("consultant not found")
	ErrScheduledInPast    = errors.New("scheduled time must be in the future")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNothingToWithdraw  = errors.New("no earnings available for payout")
	ErrTerminalStatus     = errors.New("booking is already in a terminal status")
)
