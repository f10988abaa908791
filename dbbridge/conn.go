package dbbridge

// ConnStatus is the coarse health of a connection: usable or not.
type ConnStatus int

const (
	StatusOK ConnStatus = iota
	StatusBad
)

// Conn is the non-blocking connection primitive the bridge depends on, and
// nothing more. Context is written against this interface alone so its
// state machine is testable without a live Postgres server; PgxConn is the
// one real implementation.
type Conn interface {
	// Status reports whether the connection is still usable.
	Status() ConnStatus

	// Socket returns the underlying readable/writable file descriptor, if
	// the platform and connection expose one. ok is false when the bridge
	// must fall back to its periodic polling timer.
	Socket() (fd int, ok bool)

	// SendQuery issues a statement with no parameters (the simple query
	// protocol). Returns once the send has been attempted; does not wait
	// for a reply.
	SendQuery(sql string) error

	// SendQueryParams issues a parameterized statement (the extended query
	// protocol: Parse/Bind/Describe/Execute/Sync).
	SendQueryParams(sql string, params []string) error

	// ConsumeInput reads any data currently available without blocking.
	ConsumeInput() error

	// IsBusy reports whether a full result is not yet buffered.
	IsBusy() bool

	// GetResult returns the next buffered result for the statement in
	// flight, or (nil, nil) once the statement's result stream is
	// exhausted.
	GetResult() (*Result, error)

	// Cancel issues a best-effort cancellation of the statement in flight.
	Cancel() error

	// ErrorMessage returns the text of the most recent connection-level
	// error, if any.
	ErrorMessage() string

	// Close releases the connection. Idempotent.
	Close() error
}

// ResultStatus mirrors PGRES_COMMAND_OK / PGRES_TUPLES_OK / PGRES_FATAL_ERROR
// collapsed to the two outcomes the drain loop distinguishes.
type ResultStatus int

const (
	ResultOK ResultStatus = iota
	ResultError
)

// Result is one statement result delivered to a callback.
type Result struct {
	Status     ResultStatus
	Columns    []string
	Rows       [][]string
	CommandTag string
	ErrorMsg   string
}
