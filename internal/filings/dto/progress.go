package dto

// Progress is one update of a running ingestion.
// Fraction never decreases within a run; Done marks the terminal status.
type Progress struct {
	Fraction float64 `json:"fraction"`
	Status   string  `json:"status"`
	Stage    Stage   `json:"stage,omitempty"`
	Done     bool    `json:"done"`
}

// ProgressObserver receives progress updates. Implementations must not block for long.
type ProgressObserver interface {
	OnProgress(p Progress)
}

// ProgressFunc adapts a function to ProgressObserver.
type ProgressFunc func(p Progress)

// OnProgress implements ProgressObserver.
func (f ProgressFunc) OnProgress(p Progress) { f(p) }

// ChannelObserver forwards updates to a channel, dropping them when the channel is full
// so a slow subscriber cannot stall the pipeline. The terminal update never blocks either:
// when the buffer is full, the oldest pending update is discarded to make room for it.
type ChannelObserver struct {
	C chan Progress
}

// NewChannelObserver creates a ChannelObserver with the given buffer, at least one.
func NewChannelObserver(buffer int) *ChannelObserver {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelObserver{C: make(chan Progress, buffer)}
}

// OnProgress implements ProgressObserver.
func (o *ChannelObserver) OnProgress(p Progress) {
	for {
		select {
		case o.C <- p:
			return
		default:
		}
		if !p.Done {
			return
		}
		select {
		case <-o.C:
		default:
		}
	}
}

// NopObserver ignores all updates.
type NopObserver struct{}

// OnProgress implements ProgressObserver.
func (NopObserver) OnProgress(Progress) {}
