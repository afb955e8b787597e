package process

import (
	"context"

	gopsprocess "github.com/shirou/gopsutil/v3/process"
)

// Tracker enumerates a process and its descendants at the moment of the
// query. Implementations never fail: when enumeration is impossible they
// return a narrower result.
type Tracker interface {
	// Descendants returns root followed by every descendant pid. It returns
	// only root when the tree cannot be walked, and nothing when root itself
	// is gone.
	Descendants(root int) []int
}

// TreeTracker walks the process table through gopsutil.
type TreeTracker struct {
	// listProcesses is swapped out in tests.
	listProcesses func(ctx context.Context) ([]*gopsprocess.Process, error)
	pidExists     func(ctx context.Context, pid int32) (bool, error)
}

// NewTreeTracker creates a tracker backed by the live process table.
func NewTreeTracker() *TreeTracker {
	return &TreeTracker{
		listProcesses: gopsprocess.ProcessesWithContext,
		pidExists:     gopsprocess.PidExistsWithContext,
	}
}

// Descendants implements Tracker.
func (t *TreeTracker) Descendants(root int) []int {
	ctx := context.Background()

	exists, err := t.pidExists(ctx, int32(root))
	if err != nil {
		return []int{root}
	}
	if !exists {
		return nil
	}

	procs, err := t.listProcesses(ctx)
	if err != nil {
		return []int{root}
	}

	children := make(map[int32][]int32, len(procs))
	found := false
	for _, p := range procs {
		if p.Pid == int32(root) {
			found = true
		}
		ppid, err := p.PpidWithContext(ctx)
		if err != nil {
			// Exited between listing and reading its stat.
			continue
		}
		children[ppid] = append(children[ppid], p.Pid)
	}
	if !found {
		return nil
	}

	return walk(int32(root), children)
}

// walk returns root and its descendants in breadth-first order. A pid seen
// twice (pid reuse racing the listing) is skipped so cycles cannot loop.
func walk(root int32, children map[int32][]int32) []int {
	pids := []int{int(root)}
	seen := map[int32]bool{root: true}
	queue := []int32{root}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, child := range children[parent] {
			if seen[child] {
				continue
			}
			seen[child] = true
			pids = append(pids, int(child))
			queue = append(queue, child)
		}
	}
	return pids
}

// RootTracker is the degraded tracker: it only knows the root pid.
type RootTracker struct{}

// Descendants implements Tracker.
func (RootTracker) Descendants(root int) []int {
	return []int{root}
}
