// Package input carries discrete user signals from the window loop to the
// components that consume them.
package input

// Signal is a named discrete input.
type Signal uint8

const (
	SelectPaletteA Signal = iota + 1
	SelectPaletteB
)

func (s Signal) String() string {
	switch s {
	case SelectPaletteA:
		return "select-palette-a"
	case SelectPaletteB:
		return "select-palette-b"
	}
	return "unknown"
}

// Source delivers pending signals without blocking. ok is false when
// nothing is queued.
type Source interface {
	Poll() (sig Signal, ok bool)
}

// Channel is a buffered Source. Send drops the signal when the buffer is
// full so the window loop never stalls on a slow consumer.
type Channel struct {
	ch chan Signal
}

// NewChannel creates a channel source holding up to buf pending signals.
func NewChannel(buf int) *Channel {
	if buf < 1 {
		buf = 1
	}
	return &Channel{ch: make(chan Signal, buf)}
}

// Send queues sig. It reports false if the signal was dropped.
func (c *Channel) Send(sig Signal) bool {
	select {
	case c.ch <- sig:
		return true
	default:
		return false
	}
}

// Poll implements Source.
func (c *Channel) Poll() (Signal, bool) {
	select {
	case sig := <-c.ch:
		return sig, true
	default:
		return 0, false
	}
}
