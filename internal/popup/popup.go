// Package popup is the transient success/error banner shown after an action.
package popup

import "sync"

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type State struct {
	Visible bool
	Message string
	Kind    Kind
}

// Popup is safe for use from the goroutines that finish requests.
type Popup struct {
	mu    sync.Mutex
	state State
}

func (p *Popup) Success(msg string) {
	p.show(KindSuccess, msg)
}

func (p *Popup) Error(msg string) {
	p.show(KindError, msg)
}

func (p *Popup) Dismiss() {
	p.mu.Lock()
	p.state = State{}
	p.mu.Unlock()
}

func (p *Popup) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Popup) show(kind Kind, msg string) {
	p.mu.Lock()
	p.state = State{Visible: true, Message: msg, Kind: kind}
	p.mu.Unlock()
}
