package args

import "os"

// Provider supplies command line arguments without the binary name.
type Provider interface {
	Args() []string
}

type DefaultProvider struct {
}

func NewDefaultProvider() *DefaultProvider {
	return &DefaultProvider{}
}

func (d *DefaultProvider) Args() []string {
	if len(os.Args) < 2 {
		return nil
	}
	return os.Args[1:]
}
