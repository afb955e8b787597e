// Package id generates sortable identifiers for browser sessions.
//
// IDs are ULIDs with a short type prefix ("sess_01J...") and sort by
// creation time.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionID identifies one browser session.
type SessionID string

// SessionPrefix starts every SessionID.
const SessionPrefix = "sess"

// Generator produces monotonic ULIDs.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the shared generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(nil, nil)
	})
	return defaultGenerator
}

// NewGenerator creates a generator. Nil arguments select crypto/rand and
// time.Now; tests pass fixed ones for reproducible IDs.
func NewGenerator(entropy io.Reader, now func() time.Time) *Generator {
	if entropy == nil {
		entropy = rand.Reader
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{entropy: ulid.Monotonic(entropy, 0), now: now}
}

// Generate returns a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// WithPrefix returns "<prefix>_<ulid>".
func (g *Generator) WithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate())
}

// NewSessionID returns a fresh session ID.
func NewSessionID() SessionID {
	return SessionID(Default().WithPrefix(SessionPrefix))
}

func (id SessionID) String() string { return string(id) }

// Timestamp extracts the creation time of a prefixed or bare ID.
func Timestamp(id string) (time.Time, error) {
	if _, rest, ok := strings.Cut(id, "_"); ok {
		id = rest
	}
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid id %q: %w", id, err)
	}
	return ulid.Time(parsed.Time()), nil
}
