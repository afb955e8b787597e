package remote

// Batch is what a Source delivers each time it becomes ready: the codes
// decoded from one read, or the error that stopped decoding.
type Batch struct {
	Codes []Code
	Err   error
}

// Source produces remote-control codes. The channel is closed when the
// source stops; after a Batch with a non-nil Err nothing more is delivered.
type Source interface {
	Batches() <-chan Batch
}

// NopSource never produces anything. It stands in when no remote-control
// daemon is available.
type NopSource struct{}

// Batches returns a nil channel, which is never ready.
func (NopSource) Batches() <-chan Batch { return nil }

// ChanSource adapts a channel to Source.
type ChanSource chan Batch

// Batches implements Source.
func (c ChanSource) Batches() <-chan Batch { return c }
