package configuration

import (
	"os"
	"path/filepath"
)

// Resolver resolves a configuration file path.
type Resolver interface {
	Resolve() (string, error)
}

// ArgsProvider supplies command line arguments without the binary name.
type ArgsProvider interface {
	Args() []string
}

type argsResolver struct {
	args ArgsProvider
}

// NewResolver returns a Resolver that takes the first argument as the path
// and falls back to DefaultPath.
func NewResolver(args ArgsProvider) Resolver {
	return &argsResolver{args: args}
}

func (r *argsResolver) Resolve() (string, error) {
	if a := r.args.Args(); len(a) > 0 && a[0] != "" {
		return filepath.Abs(a[0])
	}
	return DefaultPath(), nil
}

func DefaultPath() string {
	return filepath.Join(string(os.PathSeparator), "etc", "sealtun", "config.json")
}
