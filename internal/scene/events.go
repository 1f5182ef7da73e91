package scene

import "strings"

// Priority controls the color of an entry in the HUD log.
type Priority uint8

const (
	PriorityInfo   Priority = iota // cyan
	PriorityJump                   // yellow
	PriorityArrive                 // green
)

// Entry is a single line in the event log.
type Entry struct {
	Text     string
	Priority Priority
}

// EventLog is a bounded FIFO of HUD lines.
type EventLog struct {
	Entries []Entry
	maxSize int
	width   int
}

// NewEventLog creates a log that keeps the most recent maxSize lines,
// wrapping text at width characters. maxSize is at least one.
func NewEventLog(maxSize, width int) *EventLog {
	maxSize = max(maxSize, 1)
	return &EventLog{
		Entries: make([]Entry, 0, maxSize),
		maxSize: maxSize,
		width:   width,
	}
}

// Add appends text, evicting the oldest lines if full.
func (l *EventLog) Add(text string, priority Priority) {
	for _, line := range wrapText(text, l.width) {
		e := Entry{Text: line, Priority: priority}
		if len(l.Entries) >= l.maxSize {
			copy(l.Entries, l.Entries[1:])
			l.Entries[len(l.Entries)-1] = e
		} else {
			l.Entries = append(l.Entries, e)
		}
	}
}

// Recent returns up to n of the newest lines, oldest first.
func (l *EventLog) Recent(n int) []Entry {
	if n >= len(l.Entries) {
		return l.Entries
	}
	return l.Entries[len(l.Entries)-n:]
}

// wrapText splits text into lines no longer than width.
func wrapText(s string, width int) []string {
	if width <= 0 || len(s) <= width {
		return []string{s}
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	return append(lines, line)
}
