package xdotool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/input"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/command/commandtest"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		in   input.Input
		want []string
	}{
		{"deselect", input.Deselect, []string{"key", "--clearmodifiers", "--", "Right"}},
		{"close", input.CloseWindow, []string{"key", "--", "Alt+F4"}},
		{"multitap", input.Keys{Keys: []string{"b", "Shift+Left"}, ClearModifiers: true},
			[]string{"key", "--clearmodifiers", "--", "b", "Shift+Left"}},
		{"click", input.LeftClick, []string{"click", "--clearmodifiers", "1"}},
		{"move", input.Move{DX: -4, DY: 9}, []string{"mousemove_relative", "--", "-4", "9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Args(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSend(t *testing.T) {
	runner := commandtest.NewMockRunner(t)
	runner.On("Output", "/usr/bin/xdotool", []string{"key", "--", "Return"}).Return([]byte(nil), nil)

	client := New("/usr/bin/xdotool", runner, nil)
	require.NoError(t, client.Send(context.Background(), input.Keys{Keys: []string{"Return"}}))
	runner.AssertExpectations(t)
}

func TestSendPropagatesFailure(t *testing.T) {
	runner := commandtest.NewMockRunner(t)
	runner.On("Output", DefaultPath, mock.Anything).Return([]byte(nil), errors.New("no display"))

	client := New("", runner, nil)
	err := client.Send(context.Background(), input.LeftClick)
	assert.EqualError(t, err, "no display")
}

func TestSearchWindows(t *testing.T) {
	runner := commandtest.NewMockRunner(t)
	runner.On("Stream", DefaultPath, []string{"search", "--sync", "--onlyvisible", "--pid", "1234"}).
		Return([]string{"41943041", "41943057"}, nil)

	var ids []string
	client := New("", runner, nil)
	err := client.SearchWindows(context.Background(), 1234, func(id string) { ids = append(ids, id) })

	require.NoError(t, err)
	assert.Equal(t, []string{"41943041", "41943057"}, ids)
}

func TestActivateWindow(t *testing.T) {
	runner := commandtest.NewMockRunner(t)
	runner.On("Output", DefaultPath, []string{"windowactivate", "41943041"}).Return([]byte(nil), nil)

	client := New("", runner, nil)
	require.NoError(t, client.ActivateWindow(context.Background(), "41943041"))
	runner.AssertExpectations(t)
}
