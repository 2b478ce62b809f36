package scheduler

import "errors"

// ErrInvalidInterval is returned when a trigger is started without a positive interval
var ErrInvalidInterval = errors.New("scheduler: interval must be positive")
