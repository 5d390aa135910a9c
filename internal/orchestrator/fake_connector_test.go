package orchestrator

import (
	"context"
	"time"

	"github.com/hyperifyio/retrievalcore/internal/connectors"
	"github.com/hyperifyio/retrievalcore/internal/model"
)

// fakeConnector is a scripted Connector for orchestrator tests: it returns
// a fixed item list (or a disabled/failed result) and, when SleepFor is
// set, waits for either that duration or ctx cancellation before replying —
// exercising the deadline-containment and disabled-connector paths without
// touching the network.
type fakeConnector struct {
	provider model.Provider
	items    []model.Candidate
	disabled bool
	failed   bool
	errMsg   string
	sleepFor time.Duration
}

var _ connectors.Connector = (*fakeConnector)(nil)

func (f *fakeConnector) Provider() model.Provider { return f.provider }

func (f *fakeConnector) Fetch(ctx context.Context, opt connectors.Options) connectors.Result {
	if f.sleepFor > 0 {
		select {
		case <-time.After(f.sleepFor):
		case <-ctx.Done():
			return connectors.Result{Provider: f.provider, FetchedAt: time.Now(), Metrics: connectors.Metrics{Failed: true, Error: ctx.Err().Error()}}
		}
	}
	if f.disabled {
		return connectors.Result{Provider: f.provider, FetchedAt: time.Now(), Metrics: connectors.Metrics{Disabled: true}}
	}
	if f.failed {
		return connectors.Result{Provider: f.provider, FetchedAt: time.Now(), Metrics: connectors.Metrics{Failed: true, Error: f.errMsg}}
	}
	return connectors.Result{Provider: f.provider, FetchedAt: time.Now(), Query: "q", Items: f.items}
}
