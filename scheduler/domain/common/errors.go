package common

import "errors"

var (
	ErrScheduleNotFound    = errors.New("schedule not found")
	ErrConnectionNotFound  = errors.New("platform connection not found")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrUnsupportedPlatform = errors.New("unsupported platform type")
	ErrNotConnected        = errors.New("whatsapp client not connected")
	ErrAlreadyConnected    = errors.New("whatsapp already connecting or connected")
)
