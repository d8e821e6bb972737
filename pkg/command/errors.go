package command

import (
	"errors"
	"fmt"

	"github.com/yumyai/strainpipe/pkg/batch"
)

const (
	ExitOK          = 0
	ExitError       = 1
	ExitUsage       = 2
	ExitItemsFailed = 3
)

// ArgumentError is a command line that does not fit the command's usage.
type ArgumentError struct {
	Usage   string
	Message string
}

func (e *ArgumentError) Error() string {
	if e.Usage == "" {
		return e.Message
	}
	return fmt.Sprintf("%s\nUsage: %s", e.Message, e.Usage)
}

// ExitCode maps an error returned by the root command to a process status.
func ExitCode(err error) int {
	var argErr *ArgumentError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &argErr):
		return ExitUsage
	case errors.Is(err, batch.ErrItemsFailed):
		return ExitItemsFailed
	default:
		return ExitError
	}
}
