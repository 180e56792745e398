package wire

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
)

// socketTransport speaks newline-delimited JSON-RPC over a TCP connection.
type socketTransport struct {
	mu     sync.Mutex
	nc     net.Conn
	recvCh chan Message
	errCh  chan error
	closed bool
}

func newSocketTransport(ctx context.Context, address string) (*socketTransport, error) {
	if strings.TrimSpace(address) == "" {
		return nil, errors.New("socket address is required")
	}

	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	t := &socketTransport{
		nc:     nc,
		recvCh: make(chan Message, 64),
		errCh:  make(chan error, 1),
	}
	go t.readLoop()
	return t, nil
}

func (t *socketTransport) readLoop() {
	scanner := bufio.NewScanner(t.nc)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var msg Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			t.sendErr(fmt.Errorf("decode response line: %w", err))
			return
		}
		select {
		case t.recvCh <- msg:
		default:
			t.sendErr(errors.New("receive queue is full"))
			return
		}
	}

	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return
	}
	if err := scanner.Err(); err != nil {
		t.sendErr(fmt.Errorf("read socket: %w", err))
		return
	}
	t.sendErr(errors.New("connection closed by peer"))
}

// Send writes one message as a single line.
func (t *socketTransport) Send(ctx context.Context, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errClosed
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	data = append(data, '\n')

	if deadline, ok := ctx.Deadline(); ok {
		_ = t.nc.SetWriteDeadline(deadline)
	}
	if _, err := t.nc.Write(data); err != nil {
		return fmt.Errorf("write request: %w", err)
	}
	return nil
}

// Receive returns the next message read from the socket.
func (t *socketTransport) Receive(ctx context.Context) (Message, error) {
	select {
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case err := <-t.errCh:
		return Message{}, err
	case msg := <-t.recvCh:
		return msg, nil
	}
}

// Close tears down the TCP connection.
func (t *socketTransport) Close(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	return t.nc.Close()
}

func (t *socketTransport) sendErr(err error) {
	select {
	case t.errCh <- err:
	default:
	}
}
