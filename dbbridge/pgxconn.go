package dbbridge

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgproto3"
	"golang.org/x/sys/unix"

	"github.com/yourusername/ecewo/kinderr"
)

// cancelRequestCode is Postgres's fixed protocol version for a
// CancelRequest startup packet (not a real protocol version number).
const cancelRequestCode = 80877102

// maxFlushAttempts/flushRetryDelay bound the send side's retry loop when
// the raw socket reports would-block on write. Only the receive side is
// driven through the readiness handle; a queued statement's send is small
// enough in practice that a short bounded retry, rather than a second
// write-readiness state, covers it.
const (
	maxFlushAttempts = 50
	flushRetryDelay  = time.Millisecond
)

// rawFD is a non-blocking io.Reader/io.Writer over a hijacked connection's
// raw file descriptor. pgx normally hides the socket behind Go's runtime
// netpoller; bypassing that via syscall.RawConn and driving unix.Read/Write
// directly is what lets PgxConn surface EAGAIN to the caller instead of
// having it silently parked by the runtime, which is what the DB bridge's
// readiness-driven state machine needs to observe.
type rawFD struct {
	fd int
}

func (r *rawFD) Read(p []byte) (int, error) {
	n, err := unix.Read(r.fd, p)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (r *rawFD) Write(p []byte) (int, error) {
	return unix.Write(r.fd, p)
}

func isWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

// PgxConn is the one real Conn implementation: a pgx/v5 connection taken
// over via PgConn.Hijack and driven by hand through pgproto3.Frontend, the
// Go equivalent of libpq's PQconsumeInput/PQisBusy/PQgetResult model.
type PgxConn struct {
	hijacked *pgconn.HijackedConn
	raw      *rawFD
	fe       *pgproto3.Frontend

	status  ConnStatus
	lastErr string

	pending pgproto3.BackendMessage
	busy    bool
	done    bool

	pendingCols []string
	pendingRows [][]string
	commandTag  string
}

// DialPgx connects to dsn, hijacks the resulting connection, and sets its
// socket non-blocking so the bridge can drive it from the event loop.
func DialPgx(ctx context.Context, dsn string) (*PgxConn, error) {
	pc, err := pgconn.Connect(ctx, dsn)
	if err != nil {
		return nil, kinderr.Wrap(kinderr.IO, "dbbridge: connect", err)
	}

	hijacked, err := pc.Hijack()
	if err != nil {
		return nil, kinderr.Wrap(kinderr.IO, "dbbridge: hijack", err)
	}

	fd, err := extractFD(hijacked.Conn)
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, kinderr.Wrap(kinderr.IO, "dbbridge: set socket non-blocking", err)
	}

	raw := &rawFD{fd: fd}
	return &PgxConn{
		hijacked: hijacked,
		raw:      raw,
		fe:       pgproto3.NewFrontend(raw, raw),
		status:   StatusOK,
	}, nil
}

func extractFD(conn net.Conn) (int, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return 0, kinderr.New(kinderr.Internal, "dbbridge: hijacked connection exposes no raw descriptor")
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return 0, kinderr.Wrap(kinderr.Internal, "dbbridge: syscall conn", err)
	}
	var fd int
	if err := rc.Control(func(f uintptr) { fd = int(f) }); err != nil {
		return 0, kinderr.Wrap(kinderr.Internal, "dbbridge: control", err)
	}
	return fd, nil
}

func (pc *PgxConn) Status() ConnStatus { return pc.status }

func (pc *PgxConn) Socket() (int, bool) { return pc.raw.fd, true }

func (pc *PgxConn) SendQuery(sql string) error {
	pc.resetResultState()
	pc.fe.Send(&pgproto3.Query{String: sql})
	return pc.flush()
}

func (pc *PgxConn) SendQueryParams(sql string, params []string) error {
	pc.resetResultState()
	values := make([][]byte, len(params))
	for i, p := range params {
		values[i] = []byte(p)
	}
	pc.fe.Send(&pgproto3.Parse{Query: sql})
	pc.fe.Send(&pgproto3.Bind{Parameters: values, ResultFormatCodes: []int16{0}})
	pc.fe.Send(&pgproto3.Describe{ObjectType: 'P'})
	pc.fe.Send(&pgproto3.Execute{})
	pc.fe.Send(&pgproto3.Sync{})
	return pc.flush()
}

func (pc *PgxConn) flush() error {
	for attempt := 0; attempt < maxFlushAttempts; attempt++ {
		err := pc.fe.Flush()
		if err == nil {
			return nil
		}
		if isWouldBlock(err) {
			time.Sleep(flushRetryDelay)
			continue
		}
		pc.status = StatusBad
		pc.lastErr = err.Error()
		return kinderr.Wrap(kinderr.IO, "dbbridge: send failed", err)
	}
	return kinderr.New(kinderr.TransientIO, "dbbridge: send buffer did not drain")
}

// ConsumeInput attempts to read the next protocol message without blocking.
// A would-block result is not an error: IsBusy will report true and the
// bridge waits for the next readiness callback.
func (pc *PgxConn) ConsumeInput() error {
	if pc.pending != nil || pc.done {
		pc.busy = false
		return nil
	}
	msg, err := pc.fe.Receive()
	if err != nil {
		if isWouldBlock(err) {
			pc.busy = true
			return nil
		}
		pc.status = StatusBad
		pc.lastErr = err.Error()
		return err
	}
	pc.busy = false
	pc.pending = msg
	return nil
}

func (pc *PgxConn) IsBusy() bool { return pc.busy }

// GetResult drains buffered messages for the statement in flight, returning
// one *Result per statement and nil once its result stream is exhausted.
func (pc *PgxConn) GetResult() (*Result, error) {
	if pc.done {
		pc.done = false
		return nil, nil
	}

	for {
		msg := pc.pending
		pc.pending = nil
		if msg == nil {
			var err error
			msg, err = pc.fe.Receive()
			if err != nil {
				if isWouldBlock(err) {
					// Caller is expected to have checked IsBusy first;
					// nothing buffered yet.
					return nil, nil
				}
				pc.status = StatusBad
				pc.lastErr = err.Error()
				return nil, err
			}
		}

		switch m := msg.(type) {
		case *pgproto3.RowDescription:
			pc.pendingCols = pc.pendingCols[:0]
			for _, f := range m.Fields {
				pc.pendingCols = append(pc.pendingCols, string(f.Name))
			}
		case *pgproto3.DataRow:
			row := make([]string, len(m.Values))
			for i, v := range m.Values {
				row[i] = string(v)
			}
			pc.pendingRows = append(pc.pendingRows, row)
		case *pgproto3.CommandComplete:
			pc.commandTag = string(m.CommandTag)
		case *pgproto3.ErrorResponse:
			res := &Result{Status: ResultError, ErrorMsg: m.Message}
			pc.lastErr = m.Message
			pc.resetResultState()
			return res, nil
		case *pgproto3.ReadyForQuery:
			res := &Result{
				Status:     ResultOK,
				Columns:    append([]string(nil), pc.pendingCols...),
				Rows:       pc.pendingRows,
				CommandTag: pc.commandTag,
			}
			pc.resetResultState()
			pc.done = true
			return res, nil
		default:
			// ParseComplete, BindComplete, ParameterDescription, NoData
			// and similar carry no data the bridge surfaces to callers.
		}
	}
}

func (pc *PgxConn) resetResultState() {
	pc.pendingCols = nil
	pc.pendingRows = nil
	pc.commandTag = ""
}

// Cancel issues a best-effort out-of-band CancelRequest on a fresh
// connection, per the Postgres wire protocol — the same mechanism libpq
// uses, since a cancellation cannot be sent on the connection it targets
// while that connection is mid-statement.
func (pc *PgxConn) Cancel() error {
	cfg := pc.hijacked.Config
	if cfg == nil {
		return nil
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port)))
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()

	buf := make([]byte, 16)
	binary.BigEndian.PutUint32(buf[0:4], 16)
	binary.BigEndian.PutUint32(buf[4:8], cancelRequestCode)
	binary.BigEndian.PutUint32(buf[8:12], pc.hijacked.PID)
	binary.BigEndian.PutUint32(buf[12:16], pc.hijacked.SecretKey)
	_, err = conn.Write(buf)
	return err
}

func (pc *PgxConn) ErrorMessage() string { return pc.lastErr }

func (pc *PgxConn) Close() error {
	pc.status = StatusBad
	return unix.Close(pc.raw.fd)
}

var _ Conn = (*PgxConn)(nil)
