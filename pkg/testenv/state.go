package testenv

import "errors"

// State is the lifecycle of one Environment's runtime instance.
type State int32

const (
	NotStarted State = iota
	Starting
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

var (
	ErrAlreadyRunning = errors.New("testenv: environment already started")
	ErrNotRunning     = errors.New("testenv: environment not running")
)
