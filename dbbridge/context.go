// Package dbbridge sequentially executes a FIFO of parameterized statements
// on one non-blocking database connection, delivering each result to its
// callback in enqueue order without ever blocking the event loop goroutine.
//
// Context is written entirely against the Conn interface (conn.go), not
// against pgx directly, so the state machine itself is exercised by tests
// with a fake connection; PgxConn (pgxconn.go) is the one real
// implementation, grounded on hijacking a pgx/v5 connection's wire
// protocol.
package dbbridge

import (
	"time"

	"github.com/sirupsen/logrus"

	arenapkg "github.com/yourusername/ecewo/arena"
	"github.com/yourusername/ecewo/kinderr"
	"github.com/yourusername/ecewo/loop"
)

// fallbackPollInterval is the polling cadence used on platforms where the
// connection cannot expose its underlying socket for readiness watching.
const fallbackPollInterval = 10 * time.Millisecond

// ResultCallback receives the outcome of one queued statement. err is
// non-nil only for connection-level or statement-level failures; a
// statement returning zero rows is still delivered as a successful Result.
type ResultCallback func(*Result, error)

type statement struct {
	sql       string
	params    []string
	hasParams bool
	cb        ResultCallback
}

// Context is one async DB bridge context: bound to the request that created
// it, holding a reference on that request's arena while work is in flight,
// never outliving the request. A Context is single-use — once its queue
// drains to empty or it fails, it transitions to Closed and must be
// abandoned along with its arena.
type Context struct {
	conn  Conn
	lp    *loop.Loop
	arena *arenapkg.Arena
	log   *logrus.Entry

	state   State
	queue   []*statement
	current *statement

	fd         int
	registered bool
	timer      *loop.Timer
	retained   bool

	lastErr string
}

// NewContext builds a DB bridge context bound to conn, driven by lp, holding
// buffers in the request arena a. The context borrows conn; it does not own
// its lifetime.
func NewContext(conn Conn, lp *loop.Loop, a *arenapkg.Arena, log *logrus.Logger) *Context {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Context{
		conn:  conn,
		lp:    lp,
		arena: a,
		log:   log.WithField("component", "dbbridge"),
		state: Idle,
	}
}

// State returns the context's current state machine position.
func (c *Context) State() State { return c.state }

// Queue appends a simple (non-parameterized) statement to the FIFO. No I/O
// occurs; the statement is only sent once Execute is called.
func (c *Context) Queue(sql string, cb ResultCallback) error {
	return c.enqueue(sql, nil, false, cb)
}

// QueueParams appends a parameterized statement to the FIFO.
func (c *Context) QueueParams(sql string, params []string, cb ResultCallback) error {
	return c.enqueue(sql, params, true, cb)
}

func (c *Context) enqueue(sql string, params []string, hasParams bool, cb ResultCallback) error {
	if c.state == Closed || c.state == Cancelling {
		return kinderr.New(kinderr.Internal, "dbbridge: queue called on a closed context")
	}
	c.queue = append(c.queue, &statement{sql: sql, params: params, hasParams: hasParams, cb: cb})
	return nil
}

// Execute checks invariants, issues the first queued statement's send, and
// arms the readiness handle. Calling Execute while a previous Execute is
// still in flight is rejected rather than queued again.
func (c *Context) Execute() error {
	if c.state == Armed || c.state == Draining {
		return kinderr.New(kinderr.Internal, "dbbridge: execute called while already in flight")
	}
	if c.state == Closed || c.state == Cancelling {
		return kinderr.New(kinderr.Internal, "dbbridge: execute called on a closed context")
	}
	if c.conn.Status() != StatusOK {
		return kinderr.New(kinderr.IO, "dbbridge: connection is not open")
	}
	if len(c.queue) == 0 {
		return kinderr.New(kinderr.Internal, "dbbridge: execute called with an empty queue")
	}

	c.lp.IncrementAsyncWork()
	c.arena.Retain()
	c.retained = true

	c.current, c.queue = c.queue[0], c.queue[1:]
	if err := c.send(c.current); err != nil {
		c.failConnection(err)
		return err
	}

	c.state = Armed
	if err := c.arm(); err != nil {
		c.failConnection(err)
		return err
	}
	return nil
}

func (c *Context) send(st *statement) error {
	if st.hasParams {
		return c.conn.SendQueryParams(st.sql, st.params)
	}
	return c.conn.SendQuery(st.sql)
}

// arm registers the readiness handle: a real socket poller when the
// connection exposes one, otherwise the periodic fallback timer.
func (c *Context) arm() error {
	if fd, ok := c.conn.Socket(); ok {
		c.fd = fd
		if err := c.lp.RegisterFD(fd, loop.EventRead, c.onReady); err != nil {
			return kinderr.Wrap(kinderr.IO, "dbbridge: register readiness handle", err)
		}
		c.registered = true
		return nil
	}

	c.timer = c.lp.AddInterval(fallbackPollInterval, func() { c.onReady(loop.EventRead) })
	return nil
}

func (c *Context) disarm() {
	if c.registered {
		_ = c.lp.UnregisterFD(c.fd)
		c.registered = false
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// onReady runs on the loop goroutine whenever the readiness handle fires
// (or, on the timer fallback path, every fallbackPollInterval).
func (c *Context) onReady(events loop.IOEvents) {
	if !c.lp.Running() {
		// The server stopped between readiness callbacks: release the
		// handle and the outstanding-work accounting, invoke no user
		// callback.
		c.disarm()
		c.settle()
		c.state = Closed
		return
	}

	if events&loop.EventError != 0 || events&loop.EventHangup != 0 {
		c.failConnection(kinderr.New(kinderr.IO, "dbbridge: connection reported error/hangup"))
		return
	}

	if err := c.conn.ConsumeInput(); err != nil {
		c.failConnection(kinderr.Wrap(kinderr.IO, "dbbridge: consume_input failed", err))
		return
	}
	if c.conn.IsBusy() {
		return // await the next readiness callback
	}

	c.state = Draining
	c.disarm()
	c.drain()
}

// drain loops GetResult until it returns nil, delivering each result to the
// current statement's callback. A non-OK result delivers the failure and
// tears the context down; the rest of the queue is abandoned.
func (c *Context) drain() {
	for {
		res, err := c.conn.GetResult()
		if err != nil {
			c.failConnection(kinderr.Wrap(kinderr.IO, "dbbridge: get_result failed", err))
			return
		}
		if res == nil {
			break
		}
		if res.Status != ResultOK {
			c.lastErr = res.ErrorMsg
			cb := c.current.cb
			c.current = nil
			if cb != nil {
				cb(nil, kinderr.New(kinderr.Protocol, "dbbridge: "+res.ErrorMsg))
			} else {
				c.log.WithField("error", res.ErrorMsg).Warn("unhandled statement failure")
			}
			c.transitionCancelling()
			return
		}
		if cb := c.current.cb; cb != nil {
			cb(res, nil)
		}
	}
	c.advance()
}

// advance moves to the next queued statement, or — if the queue is empty —
// settles the outstanding-work accounting and closes the handle.
func (c *Context) advance() {
	if len(c.queue) == 0 {
		c.settle()
		c.state = Closed
		return
	}

	c.current, c.queue = c.queue[0], c.queue[1:]
	if err := c.send(c.current); err != nil {
		c.failConnection(err)
		return
	}
	c.state = Armed
	if err := c.arm(); err != nil {
		c.failConnection(err)
	}
}

// failConnection terminates the context on a connection-level failure: the
// current statement's callback is delivered the error and not retried, the
// remaining queue is abandoned, the outstanding-work counter is decremented
// exactly once. Callers that need at-least-once semantics wrap Queue in
// their own retry.
func (c *Context) failConnection(err error) {
	c.disarm()
	if c.current != nil && c.current.cb != nil {
		cb := c.current.cb
		c.current = nil
		cb(nil, err)
	}
	c.queue = nil
	c.transitionCancelling()
}

// transitionCancelling issues a best-effort cancel, stops and closes the
// handle, and enters Closed.
func (c *Context) transitionCancelling() {
	c.state = Cancelling
	_ = c.conn.Cancel()
	c.disarm()
	c.settle()
	c.state = Closed
}

// settle undoes Execute's accounting exactly once: the outstanding-work
// counter goes down, and the arena reference taken at Execute is dropped.
// The readiness handle is always disarmed before settle runs, so the arena's
// terminal release can never race a pending callback.
func (c *Context) settle() {
	if c.retained {
		c.lp.DecrementAsyncWork()
		c.arena.Release()
		c.retained = false
	}
}

// Shutdown requests that an in-flight context stop cleanly, as if the
// server's running flag had flipped false between readiness callbacks. Used
// by the owning request path when the worker begins draining for exit.
func (c *Context) Shutdown() {
	if c.state == Idle || c.state == Closed {
		c.state = Closed
		return
	}
	c.failConnection(kinderr.New(kinderr.ShutdownRace, "dbbridge: shutdown requested"))
}
