package netmw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gojek/heimdall/v7/httpclient"

	"github.com/calvingit/performance-tracker/internal/event"
	"github.com/calvingit/performance-tracker/internal/eventstore"
)

func TestTimingPluginRecordsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := eventstore.New(0)
	client := httpclient.NewClient(httpclient.WithHTTPTimeout(5 * time.Second))
	client.AddPlugin(NewTimingPlugin(store))

	res, err := client.Get(srv.URL+"/api/users", nil)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()

	records := store.ByKind(event.NetworkRequest)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	r := records[0]
	if r.Name != "/api/users" {
		t.Fatalf("got name %q, want /api/users", r.Name)
	}
	if r.Duration == nil || *r.Duration < 20 {
		t.Fatalf("got duration %v, want >= 20ms", r.Duration)
	}
	if r.Attributes["statusCode"] != http.StatusOK || r.Attributes["success"] != true {
		t.Fatalf("got attributes %v", r.Attributes)
	}
}

func TestTransportRecordsFailure(t *testing.T) {
	store := eventstore.New(0)
	client := &http.Client{Transport: &Transport{Store: store}}

	// Connecting to a closed server fails at the transport level.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := client.Get(url + "/down"); err == nil {
		t.Fatal("expected a transport error")
	}

	records := store.ByKind(event.NetworkRequest)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Attributes["success"] != false {
		t.Fatalf("got attributes %v, want success=false", records[0].Attributes)
	}
	if _, ok := records[0].Attributes["error"].(string); !ok {
		t.Fatalf("got attributes %v, want an error attribute", records[0].Attributes)
	}
}

func TestTransportRecordsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := eventstore.New(0)
	client := &http.Client{Transport: &Transport{Store: store}}
	res, err := client.Get(srv.URL + "/boom")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()

	records := store.ByKind(event.NetworkRequest)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	attrs := records[0].Attributes
	if attrs["statusCode"] != http.StatusInternalServerError || attrs["success"] != false {
		t.Fatalf("got attributes %v", attrs)
	}
}
