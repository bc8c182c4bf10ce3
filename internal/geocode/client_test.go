package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientReverse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/geocode/json" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("latlng") == "" {
			t.Fatalf("missing latlng query param")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"OK","results":[{"address_components":[
			{"long_name":"Market Street","types":["route"]},
			{"long_name":"1","types":["street_number"]},
			{"long_name":"San Francisco","types":["locality","political"]},
			{"long_name":"California","types":["administrative_area_level_1","political"]},
			{"long_name":"94103","types":["postal_code"]}
		]}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	addr, err := client.Reverse(context.Background(), 37.77, -122.41)
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	if addr.Street != "Market Street 1" {
		t.Fatalf("unexpected street: %q", addr.Street)
	}
	if addr.City != "San Francisco" || addr.Province != "California" || addr.PostalCode != "94103" {
		t.Fatalf("unexpected address: %+v", addr)
	}
}

func TestClientReverseMissingComponents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"OK","results":[{"address_components":[
			{"long_name":"Somewhere","types":["locality"]}
		]}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	addr, err := client.Reverse(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	if addr.Street != "" || addr.City != "Somewhere" {
		t.Fatalf("unexpected address: %+v", addr)
	}
}

func TestClientReverseZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	if _, err := client.Reverse(context.Background(), 0, 0); err == nil {
		t.Fatalf("expected error for ZERO_RESULTS")
	}
}

func TestClientReverseServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	if _, err := client.Reverse(context.Background(), 0, 0); err == nil {
		t.Fatalf("expected error")
	}
}
