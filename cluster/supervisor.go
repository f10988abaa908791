package cluster

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/ecewo/kinderr"
	"github.com/yourusername/ecewo/loop"
)

// Supervisor is the master process: it spawns and watches
// N worker processes sharing one listening port, respawning crashed
// workers (subject to throttling) and coordinating cooperative shutdown
// and graceful restart via signals marshalled onto the event loop.
type Supervisor struct {
	cfg      Config
	execPath string
	argvBase []string

	lp  *loop.Loop
	log *logrus.Entry

	workers []*workerRecord

	shuttingDown    atomic.Bool
	gracefulRestart atomic.Bool

	sigHandles []*loop.SignalHandle

	// execCommand builds the *exec.Cmd for a worker's argv. Overridden in
	// tests so the respawn/throttle state machine can be exercised against
	// trivial real child processes instead of re-executing this binary.
	execCommand func(argv []string) *exec.Cmd
}

// NewSupervisor validates cfg and resolves the current executable's path,
// ready to run as a master.
func NewSupervisor(cfg Config, lp *loop.Loop, log *logrus.Logger) (*Supervisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	execPath, err := os.Executable()
	if err != nil {
		return nil, kinderr.Wrap(kinderr.Config, "cluster: resolve executable path", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, kinderr.Wrap(kinderr.Config, "cluster: resolve executable symlinks", err)
	}

	_, _, _, rest := DetectRole(os.Args[1:])

	s := &Supervisor{
		cfg:      cfg,
		execPath: execPath,
		argvBase: rest,
		lp:       lp,
		log:      log.WithField("component", "cluster"),
	}
	s.execCommand = func(argv []string) *exec.Cmd {
		return exec.Command(argv[0], argv[1:]...)
	}
	return s, nil
}

func (s *Supervisor) workerPort(id int) int {
	if SupportsReusePort() {
		return s.cfg.Port
	}
	return s.cfg.Port + id
}

// RunMaster performs master initialization: sets the process title,
// registers signal handlers, allocates the worker record array, and spawns
// each worker 100ms apart. A failed spawn is logged and the master proceeds
// with the remaining workers; startup aborts only when more than half of
// the initial spawns fail.
func (s *Supervisor) RunMaster() error {
	setProcTitle(filepath.Base(s.execPath) + ":master")
	s.registerSignals()

	failed := 0
	s.workers = make([]*workerRecord, s.cfg.Workers)
	for i := 0; i < s.cfg.Workers; i++ {
		w := &workerRecord{id: i, port: s.workerPort(i)}
		s.workers[i] = w
		if err := s.spawnWorker(w); err != nil {
			s.log.WithError(err).WithField("worker", i).Error("initial spawn failed")
			failed++
		}
		if i < s.cfg.Workers-1 {
			time.Sleep(100 * time.Millisecond)
		}
	}
	if failed > s.cfg.Workers/2 {
		return kinderr.New(kinderr.Internal, "cluster: more than half of the initial worker spawns failed")
	}
	return nil
}

func (s *Supervisor) registerSignals() {
	s.sigHandles = append(s.sigHandles, s.lp.OnSignal(func(os.Signal) {
		s.Shutdown()
	}, syscall.SIGINT, syscall.SIGTERM))
	s.registerRestartSignal()
}

// spawnWorker builds the worker's argv, starts it with stdin discarded and
// stdout/stderr inherited, and hands its exit to the loop goroutine via a
// dedicated goroutine around cmd.Wait.
func (s *Supervisor) spawnWorker(w *workerRecord) error {
	argv := buildWorkerArgv(s.execPath, s.argvBase, w.id, w.port)
	cmd := s.execCommand(argv)
	cmd.Env = append(append([]string(nil), os.Environ()...), "ECEWO_CLUSTER_WORKER=1")
	cmd.Stdin = nil
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return kinderr.Wrap(kinderr.Internal, "cluster: spawn worker", err)
	}
	w.setActive(cmd)
	s.log.WithFields(logrus.Fields{"worker": w.id, "port": w.port, "pid": cmd.Process.Pid}).Info("worker spawned")

	go func() {
		err := cmd.Wait()
		s.lp.Post(func() { s.handleExit(w, err) })
	}()
	return nil
}

// handleExit runs on the loop goroutine (marshalled via Post) whenever a
// worker process exits, driving respawn throttling, shutdown, and
// graceful-restart transitions.
func (s *Supervisor) handleExit(w *workerRecord, waitErr error) {
	w.markExited()

	if s.shuttingDown.Load() {
		// Exits during shutdown are not crashes: no respawn, no throttle
		// counting.
		return
	}

	if s.gracefulRestart.Load() {
		if err := s.spawnWorker(w); err != nil {
			s.log.WithError(err).WithField("worker", w.id).Error("graceful restart respawn failed")
		}
		if s.allActive() {
			s.gracefulRestart.Store(false)
		}
		return
	}

	code := exitCodeOf(waitErr)
	if code != 0 {
		disabled := w.recordCrash(time.Now())
		s.log.WithFields(logrus.Fields{"worker": w.id, "exit_code": code}).Warn("worker crashed")
		if disabled {
			s.log.WithField("worker", w.id).Error("respawn disabled: worker crashed three times within five seconds")
			return
		}
	}

	if !w.respawnAllowed() {
		return
	}

	s.lp.AddTimer(respawnCooloff, func() {
		if err := s.spawnWorker(w); err != nil {
			s.log.WithError(err).WithField("worker", w.id).Error("respawn failed")
		}
	})
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func (s *Supervisor) allActive() bool {
	for _, w := range s.workers {
		if !w.isActive() {
			return false
		}
	}
	return true
}

func (s *Supervisor) allExited() bool {
	for _, w := range s.workers {
		if w.isActive() {
			return false
		}
	}
	return true
}

func (s *Supervisor) signalAll(sig os.Signal) {
	for _, w := range s.workers {
		cmd := w.process()
		if cmd != nil && w.isActive() {
			_ = cmd.Process.Signal(sig)
		}
	}
}

// Shutdown requests cooperative shutdown: sets the shutting-down flag (if
// not already set) and terminates every active worker.
func (s *Supervisor) Shutdown() {
	if !s.shuttingDown.CompareAndSwap(false, true) {
		return
	}
	s.log.Info("shutdown requested")
	s.signalAll(syscall.SIGTERM)
}

func (s *Supervisor) requestGracefulRestart() {
	if s.shuttingDown.Load() {
		return
	}
	s.log.Info("graceful restart requested")
	s.gracefulRestart.Store(true)
	s.signalAll(syscall.SIGTERM)
}

// ShuttingDown reports whether Shutdown has been requested.
func (s *Supervisor) ShuttingDown() bool { return s.shuttingDown.Load() }

// Wait blocks the calling goroutine until every worker has exited or the
// graceWindow shutdown grace window elapses, after which survivors are
// sent SIGKILL.
func (s *Supervisor) Wait(graceWindow time.Duration) {
	deadline := time.Now().Add(graceWindow)
	for !s.allExited() {
		if time.Now().After(deadline) {
			s.signalAll(syscall.SIGKILL)
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// Cleanup stops and closes every loop-registered signal handle. Safe to
// call more than once, and intended to be deferred at process exit as well
// as called explicitly from the master's Wait path.
func (s *Supervisor) Cleanup() {
	for _, h := range s.sigHandles {
		h.Stop()
	}
	s.sigHandles = nil
}
