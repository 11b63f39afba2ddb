// Package netmw instruments outbound HTTP calls: one timed networkRequest
// record per request, fed into the event store. It ships as a heimdall
// client plugin and as a plain http.RoundTripper for stdlib clients.
package netmw

import (
	"context"
	"net/http"
	"time"

	"github.com/calvingit/performance-tracker/internal/event"
	"github.com/calvingit/performance-tracker/internal/eventstore"
)

type contextKey struct{}

var startedAtKey contextKey

// TimingPlugin implements heimdall.Plugin. Attach it with client.AddPlugin
// to time every request the client issues.
type TimingPlugin struct {
	store *eventstore.Store
}

func NewTimingPlugin(store *eventstore.Store) *TimingPlugin {
	return &TimingPlugin{store: store}
}

func (p *TimingPlugin) OnRequestStart(req *http.Request) {
	ctx := context.WithValue(req.Context(), startedAtKey, time.Now())
	*req = *req.WithContext(ctx)
}

func (p *TimingPlugin) OnRequestEnd(req *http.Request, res *http.Response) {
	startedAt, ok := req.Context().Value(startedAtKey).(time.Time)
	if !ok {
		return
	}
	p.store.Add(requestRecord(req, time.Since(startedAt), event.Attributes{
		"statusCode": res.StatusCode,
		"success":    res.StatusCode < http.StatusBadRequest,
	}))
}

func (p *TimingPlugin) OnError(req *http.Request, err error) {
	startedAt, ok := req.Context().Value(startedAtKey).(time.Time)
	if !ok {
		return
	}
	p.store.Add(requestRecord(req, time.Since(startedAt), event.Attributes{
		"success": false,
		"error":   err.Error(),
	}))
}

func requestRecord(req *http.Request, d time.Duration, attrs event.Attributes) event.Record {
	attrs["method"] = req.Method
	attrs["url"] = req.URL.String()
	return event.NewTimed(event.NetworkRequest, req.URL.Path, d, attrs)
}

// Transport is the same instrumentation for a plain *http.Client. Base
// defaults to http.DefaultTransport.
type Transport struct {
	Base  http.RoundTripper
	Store *eventstore.Store
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	startedAt := time.Now()
	res, err := base.RoundTrip(req)
	if err != nil {
		t.Store.Add(requestRecord(req, time.Since(startedAt), event.Attributes{
			"success": false,
			"error":   err.Error(),
		}))
		return nil, err
	}
	t.Store.Add(requestRecord(req, time.Since(startedAt), event.Attributes{
		"statusCode": res.StatusCode,
		"success":    res.StatusCode < http.StatusBadRequest,
	}))
	return res, nil
}
