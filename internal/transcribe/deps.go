package transcribe

import "os"

// fileRemover removes files. Injectable so orchestrator tests can
// observe per-chunk deletion order.
type fileRemover interface {
	Remove(name string) error
}

// osFileRemover implements fileRemover using os.Remove.
type osFileRemover struct{}

func (osFileRemover) Remove(name string) error {
	return os.Remove(name)
}
