// Package lirc reads button events from the LIRC daemon and turns them into
// remote codes through a keymap.
package lirc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/remote"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/logging"
)

// DefaultSocket is where lircd listens on most distributions.
const DefaultSocket = "/var/run/lirc/lircd"

// ErrDisconnected is reported when lircd closes the connection.
var ErrDisconnected = errors.New("lircd closed the connection")

// DecodeError reports an event or binding that could not be decoded.
type DecodeError struct {
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode lirc event %q: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Event is one line broadcast by lircd.
type Event struct {
	Code   string
	Repeat int
	Button string
	Remote string
}

// ParseEvent parses "<code> <repeat-hex> <button> <remote>".
func ParseEvent(line string) (Event, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Event{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}
	repeat, err := strconv.ParseUint(fields[1], 16, 31)
	if err != nil {
		return Event{}, fmt.Errorf("invalid repeat count %q", fields[1])
	}
	return Event{Code: fields[0], Repeat: int(repeat), Button: fields[2], Remote: fields[3]}, nil
}

// Client is a remote.Source fed by a lircd connection.
type Client struct {
	conn    net.Conn
	keymap  *Keymap
	logger  *logging.Logger
	batches chan remote.Batch

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Dial connects to the lircd socket.
func Dial(ctx context.Context, socket string, keymap *Keymap, logger *logging.Logger) (*Client, error) {
	if socket == "" {
		socket = DefaultSocket
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socket)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to lircd at %s: %w", socket, err)
	}
	return NewClient(conn, keymap, logger), nil
}

// NewClient starts reading events from conn.
func NewClient(conn net.Conn, keymap *Keymap, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Nop()
	}
	c := &Client{
		conn:    conn,
		keymap:  keymap,
		logger:  logger.Named("lirc"),
		batches: make(chan remote.Batch),
		done:    make(chan struct{}),
	}
	c.wg.Add(1)
	go c.read()
	return c
}

// Batches implements remote.Source. After an error batch nothing more is
// delivered.
func (c *Client) Batches() <-chan remote.Batch { return c.batches }

// Close disconnects and waits for the reader to stop.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
		c.wg.Wait()
	})
	return err
}

func (c *Client) read() {
	defer c.wg.Done()

	scanner := bufio.NewScanner(c.conn)
	inReply := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "BEGIN":
			inReply = true
			continue
		case line == "END":
			inReply = false
			continue
		case inReply:
			continue
		}

		batch, ok := c.decode(line)
		if !ok {
			continue
		}
		if !c.deliver(batch) || batch.Err != nil {
			return
		}
	}

	select {
	case <-c.done:
		return
	default:
	}
	err := scanner.Err()
	if err == nil {
		err = ErrDisconnected
	}
	c.deliver(remote.Batch{Err: err})
}

// decode maps one event line to a batch. ok is false when the event is not
// bound to anything.
func (c *Client) decode(line string) (remote.Batch, bool) {
	event, err := ParseEvent(line)
	if err != nil {
		return remote.Batch{Err: &DecodeError{Line: line, Err: err}}, true
	}

	configs := c.keymap.Lookup(event.Remote, event.Button, event.Repeat)
	if len(configs) == 0 {
		c.logger.Debug("Unbound button", zap.String("button", event.Button), zap.Int("repeat", event.Repeat))
		return remote.Batch{}, false
	}

	codes := make([]remote.Code, 0, len(configs))
	for _, config := range configs {
		code, err := remote.Parse(config, event.Repeat)
		if err != nil {
			return remote.Batch{Err: &DecodeError{Line: line, Err: err}}, true
		}
		codes = append(codes, code)
	}
	return remote.Batch{Codes: codes}, true
}

func (c *Client) deliver(batch remote.Batch) bool {
	select {
	case c.batches <- batch:
		return true
	case <-c.done:
		return false
	}
}
