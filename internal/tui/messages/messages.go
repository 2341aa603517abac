package messages

import (
	"jp2mi/internal/launch"
)

// ErrorMsg carries a failure from a background task
type ErrorMsg struct {
	Err error
}

// CodecExitMsg is sent when a launched codec process has been reaped
type CodecExitMsg struct {
	Result launch.Result
}

// OutputReadyMsg is sent when the output of a run appears on disk
type OutputReadyMsg struct {
	Path string
}
