package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

type seatsMsg struct {
	seatsLeft int
	live      int
}

type notifyMsg struct {
	text    string
	isError bool
}

type submitMsg struct {
	enabled bool
	label   string
}

type dismissMsg struct{}

type brochureMsg struct {
	show bool
}

// Bridge forwards controller rendering calls into the bubbletea event loop.
// Calls made before Attach are dropped.
type Bridge struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

func NewBridge() *Bridge {
	return &Bridge{}
}

func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = p.Send
}

func (b *Bridge) dispatch(msg tea.Msg) {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (b *Bridge) Notify(message string, isError bool) {
	b.dispatch(notifyMsg{text: message, isError: isError})
}

func (b *Bridge) ShowSeats(seatsLeft, live int) {
	b.dispatch(seatsMsg{seatsLeft: seatsLeft, live: live})
}

func (b *Bridge) SetSubmit(enabled bool, label string) {
	b.dispatch(submitMsg{enabled: enabled, label: label})
}

func (b *Bridge) DismissEnrollment() {
	b.dispatch(dismissMsg{})
}

func (b *Bridge) ShowBrochure() {
	b.dispatch(brochureMsg{show: true})
}

func (b *Bridge) HideBrochure() {
	b.dispatch(brochureMsg{show: false})
}
