package forwarding

import "fmt"

// Loop names one direction of a Forwarder.
type Loop int

const (
	AToB Loop = iota
	BToA
)

func (l Loop) String() string {
	switch l {
	case AToB:
		return "a->b"
	case BToA:
		return "b->a"
	default:
		return "unknown"
	}
}

// Op is the channel operation a loop was performing when it stopped.
type Op string

const (
	OpRead  Op = "read"
	OpWrite Op = "write"
)

// StopError reports which loop ended a Forwarder and why. Err is io.EOF when
// the loop's source was exhausted.
type StopError struct {
	Loop Loop
	Op   Op
	Err  error
}

func (e *StopError) Error() string {
	return fmt.Sprintf("forwarder: %s %s: %v", e.Loop, e.Op, e.Err)
}

func (e *StopError) Unwrap() error { return e.Err }
