//go:build darwin || linux || freebsd || netbsd || openbsd

package process

import (
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestSpawnNaturalExit(t *testing.T) {
	requireBinary(t, "true")
	sup := NewSupervisor(NewTreeTracker(), nil, time.Second, nil)

	child, err := sup.Spawn([]string{"true"})
	require.NoError(t, err)

	select {
	case <-child.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("child did not exit")
	}
	child.Wait()
	assert.NoError(t, child.Err())

	report := sup.Shutdown(child)
	assert.True(t, report.AlreadyExited)
}

func TestShutdownTerminatesRealProcess(t *testing.T) {
	requireBinary(t, "sleep")
	sup := NewSupervisor(NewTreeTracker(), nil, 5*time.Second, nil)

	child, err := sup.Spawn([]string{"sleep", "30"})
	require.NoError(t, err)

	report := sup.Shutdown(child)

	assert.False(t, report.Forced)
	assert.Contains(t, report.Terminated, child.Pid())
	assert.Error(t, child.Err())
}

func TestShutdownKillsProcessIgnoringTerm(t *testing.T) {
	requireBinary(t, "sh")
	sup := NewSupervisor(NewTreeTracker(), nil, 200*time.Millisecond, nil)

	child, err := sup.Spawn([]string{"sh", "-c", `trap "" TERM; sleep 30 & wait`})
	require.NoError(t, err)

	// Give the shell time to install the trap and fork.
	time.Sleep(300 * time.Millisecond)

	report := sup.Shutdown(child)

	assert.True(t, report.Forced)
	assert.Contains(t, report.Killed, child.Pid())
	assert.GreaterOrEqual(t, len(report.Killed), 2, "the backgrounded sleep is part of the tree")
}

func TestTreeTrackerSeesChildren(t *testing.T) {
	requireBinary(t, "sleep")
	sup := NewSupervisor(nil, nil, time.Second, nil)

	child, err := sup.Spawn([]string{"sleep", "30"})
	require.NoError(t, err)
	defer sup.Shutdown(child)

	pids := NewTreeTracker().Descendants(os.Getpid())
	require.NotEmpty(t, pids)
	assert.Equal(t, os.Getpid(), pids[0])
	assert.Contains(t, pids, child.Pid())
}

func TestTreeTrackerExitedRoot(t *testing.T) {
	requireBinary(t, "true")
	sup := NewSupervisor(nil, nil, time.Second, nil)

	child, err := sup.Spawn([]string{"true"})
	require.NoError(t, err)
	child.Wait()

	assert.Empty(t, NewTreeTracker().Descendants(child.Pid()))
}
