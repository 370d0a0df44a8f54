package executor

import "fmt"

// Kind classifies a per-path failure per the error-handling design: every
// such failure is a failure-isolation boundary, logged and skipped, never
// propagated to the aggregate response.
type Kind string

const (
	KindConfiguration  Kind = "configuration"
	KindNetwork        Kind = "network"
	KindProtocol       Kind = "protocol"
	KindIndexerReported Kind = "indexer_reported"
	KindParse          Kind = "parse"
	KindDownload       Kind = "download"
)

// Error wraps an underlying failure with its Kind and the path that
// produced it, for structured logging at the call site.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}
