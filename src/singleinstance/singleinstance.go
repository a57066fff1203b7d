// Package singleinstance keeps one picker on screen at a time. The owner
// holds a loopback TCP port and answers PING probes from later launches.
package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"sync"
	"time"
)

const (
	residentHost = "127.0.0.1"
	pingRequest  = "PING\n"
	pongResponse = "PONG\n"
)

// ErrAlreadyRunning is returned by Acquire when another picker owns the lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Lock is held for the lifetime of one picker run.
type Lock struct {
	lis  net.Listener
	port int
	once sync.Once
}

// Acquire binds the first free port of the configured range. Ports that are
// taken are probed on the way, and after binding the rest of the range is
// probed too; a live picker anywhere in the range yields ErrAlreadyRunning.
func Acquire(ctx context.Context) (*Lock, error) {
	timeout := probeTimeout(ctx)
	start, end := getPortRange()

	for port := start; port <= end; port++ {
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			if ping(addr, timeout) {
				return nil, fmt.Errorf("%w (port %d)", ErrAlreadyRunning, port)
			}
			log.Printf("singleinstance: port %d busy, trying next", port)
			continue
		}

		if other, ok := detectResident(port+1, end, timeout); ok {
			lis.Close()
			return nil, fmt.Errorf("%w (port %d)", ErrAlreadyRunning, other)
		}

		l := &Lock{lis: lis, port: port}
		log.Printf("singleinstance: listening on %s", addr)
		go l.acceptLoop()
		return l, nil
	}
	return nil, fmt.Errorf("no free port in %d-%d", start, end)
}

// Port returns the bound port.
func (l *Lock) Port() int { return l.port }

func (l *Lock) acceptLoop() {
	for {
		c, err := l.lis.Accept()
		if err != nil {
			return
		}
		go func(c net.Conn) {
			defer c.Close()
			_ = c.SetDeadline(time.Now().Add(3 * time.Second))
			line, _ := bufio.NewReader(c).ReadString('\n')
			if line != pingRequest {
				return
			}
			log.Printf("singleinstance: PING from %s -> PONG", c.RemoteAddr())
			_, _ = c.Write([]byte(pongResponse))
		}(c)
	}
}

// Release stops answering probes and frees the port. Safe to call twice.
func (l *Lock) Release() error {
	var err error
	l.once.Do(func() {
		err = l.lis.Close()
	})
	return err
}

// detectResident returns the first port in [from, to] where a picker
// answers PING.
func detectResident(from, to int, timeout time.Duration) (int, bool) {
	for port := from; port <= to; port++ {
		if ping(net.JoinHostPort(residentHost, strconv.Itoa(port)), timeout) {
			return port, true
		}
	}
	return 0, false
}

func probeTimeout(ctx context.Context) time.Duration {
	timeout := 300 * time.Millisecond
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < timeout {
			timeout = d
		}
	}
	return timeout
}

func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(pingRequest); err != nil {
		return false
	}
	if err := w.Flush(); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
