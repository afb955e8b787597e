package lirc

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/remote"
)

var testKeymap = &Keymap{Program: "browser", Bindings: []Binding{
	{Button: "KEY_OK", Config: "CLICK"},
	{Button: "KEY_UP", Config: "MOUSE 0 -1", Repeat: 1},
	{Button: "KEY_2", Config: "MULTITAP a b c 2"},
	{Button: "KEY_2", Config: "KEY ctrl+l"},
	{Button: "KEY_BAD", Config: `KEY "unterminated`},
}}

func newPipeClient(t *testing.T) (*Client, net.Conn) {
	t.Helper()
	server, conn := net.Pipe()
	client := NewClient(conn, testKeymap, nil)
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	return client, server
}

func receive(t *testing.T, c *Client) remote.Batch {
	t.Helper()
	select {
	case b := <-c.Batches():
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("no batch received")
		return remote.Batch{}
	}
}

func TestParseEvent(t *testing.T) {
	event, err := ParseEvent("000000037ff07bee 0a KEY_UP mceusb")
	require.NoError(t, err)
	assert.Equal(t, Event{Code: "000000037ff07bee", Repeat: 10, Button: "KEY_UP", Remote: "mceusb"}, event)

	_, err = ParseEvent("000000037ff07bee zz KEY_UP mceusb")
	assert.Error(t, err)
	_, err = ParseEvent("SIGHUP")
	assert.Error(t, err)
}

func TestClientDeliversCodes(t *testing.T) {
	client, server := newPipeClient(t)

	go func() {
		_, _ = server.Write([]byte("0000000000000001 00 KEY_OK mceusb\n"))
		_, _ = server.Write([]byte("0000000000000002 03 KEY_UP mceusb\n"))
	}()

	b := receive(t, client)
	require.NoError(t, b.Err)
	require.Len(t, b.Codes, 1)
	assert.Equal(t, remote.CommandClick, b.Codes[0].Command)

	b = receive(t, client)
	require.Len(t, b.Codes, 1)
	assert.Equal(t, remote.CommandMouse, b.Codes[0].Command)
	assert.Equal(t, 3, b.Codes[0].Repeat)
}

func TestClientBatchesAllMatchingBindings(t *testing.T) {
	client, server := newPipeClient(t)
	go func() { _, _ = server.Write([]byte("0000000000000003 00 KEY_2 mceusb\n")) }()

	b := receive(t, client)
	require.Len(t, b.Codes, 2)
	assert.Equal(t, remote.CommandMultitap, b.Codes[0].Command)
	assert.Equal(t, remote.CommandKey, b.Codes[1].Command)
}

func TestClientSkipsRepliesAndFilteredRepeats(t *testing.T) {
	client, server := newPipeClient(t)
	go func() {
		_, _ = server.Write([]byte("BEGIN\nSIGHUP\nEND\n"))
		_, _ = server.Write([]byte("0000000000000001 01 KEY_OK mceusb\n"))
		_, _ = server.Write([]byte("0000000000000001 00 KEY_RED mceusb\n"))
		_, _ = server.Write([]byte("0000000000000001 00 KEY_OK mceusb\n"))
	}()

	b := receive(t, client)
	require.Len(t, b.Codes, 1)
	assert.Equal(t, 0, b.Codes[0].Repeat)
}

func TestClientDecodeErrorIsTerminal(t *testing.T) {
	client, server := newPipeClient(t)
	go func() { _, _ = server.Write([]byte("0000000000000001 00 KEY_BAD mceusb\n")) }()

	b := receive(t, client)
	var decodeErr *DecodeError
	require.ErrorAs(t, b.Err, &decodeErr)
	assert.Contains(t, decodeErr.Line, "KEY_BAD")
}

func TestClientReportsDisconnect(t *testing.T) {
	client, server := newPipeClient(t)
	require.NoError(t, server.Close())

	b := receive(t, client)
	assert.ErrorIs(t, b.Err, ErrDisconnected)
}

func TestDialUnixSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "lircd")
	listener, err := net.Listen("unix", socket)
	if err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	defer listener.Close()

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = conn.Write([]byte("0000000000000001 00 KEY_OK mceusb\n"))
		time.Sleep(100 * time.Millisecond)
	}()

	client, err := Dial(context.Background(), socket, testKeymap, nil)
	require.NoError(t, err)
	defer client.Close()

	b := receive(t, client)
	require.Len(t, b.Codes, 1)
	assert.Equal(t, remote.CommandClick, b.Codes[0].Command)
}

func TestDialMissingSocket(t *testing.T) {
	_, err := Dial(context.Background(), filepath.Join(t.TempDir(), "absent"), testKeymap, nil)
	assert.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	client, _ := newPipeClient(t)
	_ = client.Close()
	assert.NotPanics(t, func() { _ = client.Close() })
}
