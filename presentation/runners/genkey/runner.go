package genkey

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"sealtun/application/logging"
	"sealtun/infrastructure/cryptography/keys"
)

var ErrKeyFileExists = errors.New("key file already exists")

// Runner writes a fresh random key to path. An existing file is never
// overwritten: both peers must hold the same key.
type Runner struct {
	path   string
	logger logging.Logger
}

func NewRunner(path string, logger logging.Logger) *Runner {
	return &Runner{path: path, logger: logger}
}

func (r *Runner) Run() error {
	if _, err := os.Stat(r.path); err == nil {
		return fmt.Errorf("%s: %w", r.path, ErrKeyFileExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	key, err := keys.Generate()
	if err != nil {
		return err
	}
	defer key.Zeroize()

	if err := keys.WriteFile(r.path, key); err != nil {
		return fmt.Errorf("failed to write key: %w", err)
	}
	r.logger.Printf("key written to %s; copy it to the peer over a trusted channel", r.path)
	return nil
}
