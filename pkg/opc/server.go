package opc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/golang/glog"
)

// ReadBufferSize is the size of the per-connection read buffer.
const ReadBufferSize = 4096

// Server accepts OPC clients over raw TCP and WebSocket.
// All parsing and handler calls happen on a single dispatch goroutine,
// so handlers never run concurrently with each other.
type Server struct {
	addrs    []string
	handlers map[Command]Handler

	lock      sync.Mutex
	listeners []net.Listener
	conns     map[*client]struct{}
	started   bool

	events chan event
	stopCh chan struct{}
	doneCh chan struct{}
	wg     sync.WaitGroup
}

type client struct {
	conn   net.Conn
	parser Parser
	ackCh  chan struct{}
	closed bool
}

type eventKind int

const (
	eventAccept eventKind = iota
	eventData
	eventClosed
)

type event struct {
	kind   eventKind
	client *client
	data   []byte
	err    error
}

// NewServer creates a Server listening on addrs, e.g. ":7890".
func NewServer(addrs ...string) *Server {
	return &Server{
		addrs:    addrs,
		handlers: make(map[Command]Handler),
		conns:    make(map[*client]struct{}),
	}
}

// Handle registers the handler of a command. Only CmdSetPixels and
// CmdSysEx are accepted. Handlers must be registered before Start.
func (s *Server) Handle(cmd Command, handler Handler) error {
	switch cmd {
	case CmdSetPixels, CmdSysEx:
		s.handlers[cmd] = handler
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnknownCommand, cmd)
}

// HandleFunc registers a func as the handler of a command.
func (s *Server) HandleFunc(cmd Command, fn func(*Message)) error {
	return s.Handle(cmd, HandlerFunc(fn))
}

// Start binds all addresses and starts serving. Addresses failing to bind
// are skipped; ErrNoListener is returned if none could be bound.
func (s *Server) Start() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.started {
		return ErrServerStarted
	}
	for _, addr := range s.addrs {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			glog.Warningf("listen %s failed: %v", addr, err)
			continue
		}
		glog.Infof("listening on %s", ln.Addr())
		s.listeners = append(s.listeners, ln)
	}
	if len(s.listeners) == 0 {
		return ErrNoListener
	}
	s.started = true
	s.events = make(chan event)
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	for _, ln := range s.listeners {
		s.wg.Add(1)
		go s.accept(ln)
	}
	go s.dispatch()
	return nil
}

// Stop closes all listeners and connections, and waits for the dispatch
// goroutine to exit.
func (s *Server) Stop() error {
	s.lock.Lock()
	if !s.started {
		s.lock.Unlock()
		return nil
	}
	s.started = false
	close(s.stopCh)
	for _, ln := range s.listeners {
		ln.Close()
	}
	s.listeners = nil
	s.lock.Unlock()

	<-s.doneCh
	s.wg.Wait()
	return nil
}

// Run starts the server and stops it when ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return ctx.Err()
}

// Addrs returns the bound addresses.
func (s *Server) Addrs() []net.Addr {
	s.lock.Lock()
	defer s.lock.Unlock()
	addrs := make([]net.Addr, len(s.listeners))
	for n, ln := range s.listeners {
		addrs[n] = ln.Addr()
	}
	return addrs
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.conns)
}

func (s *Server) post(ev event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.stopCh:
		return false
	}
}

func (s *Server) accept(ln net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
			default:
				glog.Errorf("accept on %s: %v", ln.Addr(), err)
			}
			return
		}
		c := &client{conn: conn, ackCh: make(chan struct{}, 1)}
		if !s.post(event{kind: eventAccept, client: c}) {
			conn.Close()
			return
		}
		s.wg.Add(1)
		go s.read(c)
	}
}

// read forwards received chunks to the dispatcher. The buffer is reused
// after the dispatcher acknowledges a chunk.
func (s *Server) read(c *client) {
	defer s.wg.Done()
	buf := make([]byte, ReadBufferSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			if !s.post(event{kind: eventData, client: c, data: buf[:n]}) {
				return
			}
			select {
			case <-c.ackCh:
			case <-s.stopCh:
				return
			}
		}
		if err != nil {
			s.post(event{kind: eventClosed, client: c, err: err})
			return
		}
	}
}

func (s *Server) dispatch() {
	defer close(s.doneCh)
	for {
		select {
		case <-s.stopCh:
			s.lock.Lock()
			for c := range s.conns {
				c.conn.Close()
			}
			s.conns = make(map[*client]struct{})
			s.lock.Unlock()
			return
		case ev := <-s.events:
			s.handleEvent(ev)
		}
	}
}

func (s *Server) handleEvent(ev event) {
	c := ev.client
	switch ev.kind {
	case eventAccept:
		glog.Infof("client %s connected", c.conn.RemoteAddr())
		s.lock.Lock()
		s.conns[c] = struct{}{}
		s.lock.Unlock()
	case eventData:
		if !c.closed {
			s.receive(c, ev.data)
		}
		c.ackCh <- struct{}{}
	case eventClosed:
		if !c.closed {
			if ev.err == io.EOF {
				s.drop(c, nil)
			} else {
				s.drop(c, ev.err)
			}
		}
	}
}

func (s *Server) receive(c *client, data []byte) {
	reply, err := c.parser.Parse(data, s.dispatchMessage)
	if len(reply) > 0 {
		if _, werr := c.conn.Write(reply); werr != nil && err == nil {
			err = werr
		}
	}
	if err != nil {
		s.drop(c, err)
	}
}

func (s *Server) drop(c *client, err error) {
	c.closed = true
	c.conn.Close()
	s.lock.Lock()
	delete(s.conns, c)
	s.lock.Unlock()
	var perr *ProtocolError
	switch {
	case err == nil || errors.Is(err, ErrPeerClosed):
		glog.Infof("client %s disconnected", c.conn.RemoteAddr())
	case errors.As(err, &perr):
		glog.Errorf("client %s dropped: %v", c.conn.RemoteAddr(), err)
	default:
		glog.Warningf("client %s: %v", c.conn.RemoteAddr(), err)
	}
}

func (s *Server) dispatchMessage(msg *Message) {
	handler, ok := s.handlers[msg.Command]
	if !ok {
		glog.V(4).Infof("ignored %v on channel %d, %d bytes", msg.Command, msg.Channel, len(msg.Data))
		return
	}
	glog.V(4).Infof("%v on channel %d, %d bytes", msg.Command, msg.Channel, len(msg.Data))
	handler.HandleMessage(msg)
}
