package wire

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync"
)

// maxLineBytes bounds a single JSON-RPC line from a subprocess or socket
// peer. Large tool results stay well below this.
const maxLineBytes = 16 << 20

// stdioTransportConfig configures a subprocess transport.
type stdioTransportConfig struct {
	Command string
	Args    []string
	Env     map[string]string
}

// stdioTransport speaks newline-delimited JSON-RPC with a spawned
// subprocess over its stdin/stdout. The subprocess's stderr is drained and
// discarded so a chatty provider cannot block.
type stdioTransport struct {
	mu     sync.Mutex
	cfg    stdioTransportConfig
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	recvCh chan Message
	errCh  chan error
	waitCh chan struct{}
	closed bool
}

func newStdioTransport(ctx context.Context, cfg stdioTransportConfig) (*stdioTransport, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New("stdio command is required")
	}

	t := &stdioTransport{
		cfg:    cfg,
		recvCh: make(chan Message, 64),
		errCh:  make(chan error, 1),
		waitCh: make(chan struct{}),
	}
	if err := t.start(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *stdioTransport) start(ctx context.Context) error {
	args := slices.Clone(t.cfg.Args)
	// #nosec G204 -- command/args come from validated provider configuration.
	cmd := exec.CommandContext(ctx, t.cfg.Command, args...)
	if len(t.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), flattenEnv(t.cfg.Env)...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("open stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("open stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %q: %w", t.cfg.Command, err)
	}

	t.cmd = cmd
	t.stdin = stdin

	go t.readLoop(stdout)
	go t.waitLoop(stderr)

	return nil
}

// readLoop delivers one message per line of subprocess stdout.
func (t *stdioTransport) readLoop(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
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
	if err := scanner.Err(); err != nil {
		t.sendErr(fmt.Errorf("read stdout: %w", err))
		return
	}
	t.sendErr(io.EOF)
}

func (t *stdioTransport) waitLoop(stderr io.Reader) {
	defer close(t.waitCh)

	_, _ = io.Copy(io.Discard, stderr)

	t.mu.Lock()
	cmd := t.cmd
	t.mu.Unlock()

	if cmd == nil {
		return
	}
	err := cmd.Wait()

	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()

	if err != nil && !closed {
		t.sendErr(fmt.Errorf("process exited: %w", err))
	}
}

// Send writes one message as a single line on subprocess stdin.
func (t *stdioTransport) Send(ctx context.Context, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errClosed
	}
	if t.stdin == nil {
		return errors.New("stdin is not available")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	data = append(data, '\n')

	if _, err := t.stdin.Write(data); err != nil {
		return fmt.Errorf("write request: %w", err)
	}
	return nil
}

// Receive returns the next message from subprocess stdout.
func (t *stdioTransport) Receive(ctx context.Context) (Message, error) {
	select {
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case err := <-t.errCh:
		return Message{}, err
	case msg := <-t.recvCh:
		return msg, nil
	}
}

// Close terminates the subprocess and waits for it to be reaped, so a
// timed-out call never leaks a child process.
func (t *stdioTransport) Close(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	stdin := t.stdin
	cmd := t.cmd
	waitCh := t.waitCh
	t.mu.Unlock()

	if stdin != nil {
		_ = stdin.Close()
	}
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	if waitCh != nil {
		select {
		case <-waitCh:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (t *stdioTransport) sendErr(err error) {
	select {
	case t.errCh <- err:
	default:
	}
}

func flattenEnv(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	out := make([]string, 0, len(values))
	for _, key := range keys {
		out = append(out, key+"="+values[key])
	}
	return out
}
