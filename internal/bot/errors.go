package bot

import "errors"

var (
	ErrChannelNotFound  = errors.New("channel not found")
	ErrDuplicateCommand = errors.New("command registered twice")
)
