// Package notify delivers short, dismissible notices to the owner, for example
// "Property approved successfully".
package notify

import (
	"context"
	"sync"

	"github.com/relabs-tech/aqaar/core/logger"
)

// Level of a notice
type Level string

// Notice levels
const (
	Success Level = "success"
	Error   Level = "error"
	Info    Level = "info"
)

// Notice is a localized message for the owner. Key is the catalog key the message was
// created from, it is empty for messages coming from the backend.
type Notice struct {
	Level   Level
	Key     string
	Message string
}

// Notifier delivers notices
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(ctx context.Context, notice Notice)

// Notify calls f
func (f NotifierFunc) Notify(ctx context.Context, notice Notice) {
	f(ctx, notice)
}

// Discard drops every notice
var Discard Notifier = NotifierFunc(func(context.Context, Notice) {})

// Log writes notices to the context logger
type Log struct{}

// Notify logs the notice
func (Log) Notify(ctx context.Context, notice Notice) {
	rlog := logger.FromContext(ctx).WithField("notice", notice.Key)
	switch notice.Level {
	case Error:
		rlog.Errorln(notice.Message)
	default:
		rlog.Infoln(notice.Message)
	}
}

// Multi delivers every notice to all notifiers
type Multi []Notifier

// Notify forwards the notice
func (m Multi) Notify(ctx context.Context, notice Notice) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, notice)
		}
	}
}

// Recorder keeps all notices in memory. It is safe for concurrent use.
type Recorder struct {
	mutex   sync.Mutex
	notices []Notice
}

// Notify records the notice
func (r *Recorder) Notify(ctx context.Context, notice Notice) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.notices = append(r.notices, notice)
}

// Notices returns a copy of all recorded notices
func (r *Recorder) Notices() []Notice {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice
func (r *Recorder) Last() (Notice, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Keys returns the catalog keys of all recorded notices
func (r *Recorder) Keys() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	keys := make([]string, len(r.notices))
	for i, n := range r.notices {
		keys[i] = n.Key
	}
	return keys
}

// Reset forgets all notices
func (r *Recorder) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.notices = nil
}
