//go:build linux

package loop

import (
	"sync"

	"golang.org/x/sys/unix"
)

const maxEpollEvents = 256

// epollPoller is the primary readiness mechanism: a direct epoll binding,
// used whenever the host platform exposes the DB bridge's connection
// socket.
type epollPoller struct {
	epfd int

	mu  sync.Mutex
	fds map[int]struct {
		events IOEvents
		cb     IOCallback
	}

	eventBuf [maxEpollEvents]unix.EpollEvent
	closed   bool
}

func newPoller() (Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{
		epfd: epfd,
		fds: make(map[int]struct {
			events IOEvents
			cb     IOCallback
		}),
	}, nil
}

func toEpollMask(events IOEvents) uint32 {
	var m uint32
	if events&EventRead != 0 {
		m |= unix.EPOLLIN
	}
	if events&EventWrite != 0 {
		m |= unix.EPOLLOUT
	}
	return m
}

func fromEpollMask(mask uint32) IOEvents {
	var events IOEvents
	if mask&unix.EPOLLIN != 0 {
		events |= EventRead
	}
	if mask&unix.EPOLLOUT != 0 {
		events |= EventWrite
	}
	if mask&unix.EPOLLERR != 0 {
		events |= EventError
	}
	if mask&unix.EPOLLHUP != 0 {
		events |= EventHangup
	}
	return events
}

func (p *epollPoller) Add(fd int, events IOEvents, cb IOCallback) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return unix.EBADF
	}
	p.fds[fd] = struct {
		events IOEvents
		cb     IOCallback
	}{events, cb}

	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: toEpollMask(events),
		Fd:     int32(fd),
	})
}

func (p *epollPoller) Modify(fd int, events IOEvents) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.fds[fd]
	if !ok {
		return unix.ENOENT
	}
	entry.events = events
	p.fds[fd] = entry

	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{
		Events: toEpollMask(events),
		Fd:     int32(fd),
	})
}

func (p *epollPoller) Remove(fd int) error {
	p.mu.Lock()
	delete(p.fds, fd)
	p.mu.Unlock()
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *epollPoller) Poll(timeoutMs int) error {
	n, err := unix.EpollWait(p.epfd, p.eventBuf[:], timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return err
	}
	for i := 0; i < n; i++ {
		fd := int(p.eventBuf[i].Fd)
		p.mu.Lock()
		entry, ok := p.fds[fd]
		p.mu.Unlock()
		if !ok || entry.cb == nil {
			continue
		}
		entry.cb(fromEpollMask(p.eventBuf[i].Events))
	}
	return nil
}

func (p *epollPoller) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return unix.Close(p.epfd)
}
