package ws

import "time"

const (
	codeUsernameRequired = "username_required"
	codeInvalidUsername  = "invalid_username"
	codeInternalError    = "internal_error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)
