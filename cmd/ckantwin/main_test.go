package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// ===================== datasetFlags =====================

func TestDatasetFlags(t *testing.T) {
	var d datasetFlags
	if err := d.Set("rivers=Rivers of Europe|Jane Doe|3"); err != nil {
		t.Fatal(err)
	}
	if err := d.Set("lakes=Lakes|Ann|1"); err != nil {
		t.Fatal(err)
	}
	if len(d) != 2 || d[0].ID != "rivers" || d[1].Resources != 1 {
		t.Errorf("datasets = %+v", d)
	}
	if d.String() != "2" {
		t.Errorf("String() = %q", d.String())
	}

	if err := d.Set("no-separator"); err == nil {
		t.Error("Set(bad) = nil, want error")
	}
}

// ===================== delay =====================

func TestDelay(t *testing.T) {
	h := delay(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), 30*time.Millisecond)

	start := time.Now()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
	if time.Since(start) < 30*time.Millisecond {
		t.Error("response was not delayed")
	}
}
