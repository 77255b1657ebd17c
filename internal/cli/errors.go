package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// usageError marks bad invocations. They exit with code 2.
type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func usageErr(msg string) error { return usageError{msg: msg} }

// reportedError wraps a failure that has already been printed.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// ExitCode maps a command error to the process exit status:
// 0 ok, 1 failure, 2 usage.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

// Reported reports whether err was already printed by the command.
func Reported(err error) bool {
	var re reportedError
	return errors.As(err, &re)
}

// parseIDs converts args to item ids in order. Repeated ids are kept once so
// a bulk command never runs two cycles against the same item.
func parseIDs(verb string, args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	seen := make(map[int]struct{}, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 0 {
			return nil, usageErr(fmt.Sprintf("%s: not an item id: %s", verb, a))
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		ids = append(ids, n)
	}
	return ids, nil
}

func argsAtLeast(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usageErr("usage: " + usage)
		}
		return nil
	}
}

func argsExactly(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErr("usage: " + usage)
		}
		return nil
	}
}
