// Package status provides the status bar with a bounded message queue.
package status

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// maxQueued bounds how many pending messages are kept; older ones are
// dropped first so a burst of warnings cannot back the bar up for minutes.
const maxQueued = 5

// defaultDisplay is how long a message stays visible unless a duration is
// given with it.
const defaultDisplay = 4 * time.Second

type message struct {
	text string
	dur  time.Duration
}

// Bar shows transient messages one at a time, in arrival order.
type Bar struct {
	mu      sync.Mutex
	label   *widget.Label
	queue   []message
	showing bool
	timer   *time.Timer
}

// NewBar creates an idle status bar.
func NewBar() *Bar {
	return &Bar{label: widget.NewLabel("Ready")}
}

// Widget returns the bar's canvas object.
func (b *Bar) Widget() fyne.CanvasObject {
	return b.label
}

// Push queues a message for the default display time. When the queue is
// full the oldest pending message is dropped.
func (b *Bar) Push(msg string) {
	b.PushFor(msg, defaultDisplay)
}

// PushFor queues a message with its own display time.
func (b *Bar) PushFor(msg string, dur time.Duration) {
	if dur <= 0 {
		dur = defaultDisplay
	}
	b.mu.Lock()
	if len(b.queue) == maxQueued {
		b.queue = b.queue[1:]
	}
	b.queue = append(b.queue, message{text: msg, dur: dur})
	start := !b.showing
	b.showing = true
	b.mu.Unlock()

	if start {
		b.next()
	}
}

// Clear drops pending messages and resets the bar.
func (b *Bar) Clear() {
	b.mu.Lock()
	b.queue = nil
	b.showing = false
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()
	b.label.SetText("Ready")
}

func (b *Bar) next() {
	b.mu.Lock()
	if len(b.queue) == 0 {
		b.showing = false
		b.mu.Unlock()
		b.label.SetText("Ready")
		return
	}
	msg := b.queue[0]
	b.queue = b.queue[1:]
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(msg.dur, b.next)
	b.mu.Unlock()

	b.label.SetText(msg.text)
}
