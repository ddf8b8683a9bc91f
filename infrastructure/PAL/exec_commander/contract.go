package exec_commander

import "context"

// Commander runs platform network tools (ifconfig, netsh, ...).
type Commander interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
	// Run fails with the command's combined output in the error message.
	Run(ctx context.Context, name string, args ...string) error
}
