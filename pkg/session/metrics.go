package session

import "github.com/cuemby/syncd/pkg/types"

// Metrics receives session-lifecycle observations. pkg/metrics' Recorder
// implements this against Prometheus collectors; tests use a no-op or a
// counting fake.
type Metrics interface {
	SessionConnected()
	SessionDenied()
	SessionClosed()
	BroadcastMessage()
	BroadcastLagged()
	EditRecorded(editType types.EditType)
	FrameError()
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) SessionConnected()              {}
func (NopMetrics) SessionDenied()                 {}
func (NopMetrics) SessionClosed()                 {}
func (NopMetrics) BroadcastMessage()              {}
func (NopMetrics) BroadcastLagged()               {}
func (NopMetrics) EditRecorded(_ types.EditType)  {}
func (NopMetrics) FrameError()                    {}
