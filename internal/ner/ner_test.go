package ner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/privasee/footprint/internal/models"
	"github.com/privasee/footprint/internal/pii"
)

func TestClientRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want Bearer tok", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"entity_group":"PER","word":"John Smith","score":0.98,"start":0,"end":10},
			{"entity_group":"ORG","word":"Acme Corp","score":0.91,"start":20,"end":29}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 5*time.Second)
	entities, err := c.Recognize(context.Background(), "John Smith works at Acme Corp")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}

	if len(entities) != 2 {
		t.Fatalf("got %d entities, want 2", len(entities))
	}
	if entities[0].Label != "person" || entities[0].Category != "Person Name" {
		t.Errorf("first entity = (%q, %q), want (person, Person Name)", entities[0].Label, entities[0].Category)
	}
	if entities[1].Label != "organization" || entities[1].RiskTier != models.RiskLow {
		t.Errorf("second entity = (%q, %s), want (organization, low)", entities[1].Label, entities[1].RiskTier)
	}
}

func TestClientRecognizeBIOTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"entity":"B-LOC","word":"Paris","score":0.99,"start":0,"end":5}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	entities, err := c.Recognize(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if len(entities) != 1 || entities[0].Label != "location" {
		t.Fatalf("got %v, want one location entity", entities)
	}
}

func TestAnalyzerFiltersLowConfidence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"entity_group":"PER","word":"John","score":0.3,"start":0,"end":4},
			{"entity_group":"ORG","word":"Acme","score":0.9,"start":10,"end":14}
		]`))
	}))
	defer srv.Close()

	a := NewAnalyzer(NewClient(srv.URL, "", 5*time.Second), pii.New(), 0.5, nil)
	entities, source := a.Analyze(context.Background(), "John from Acme")

	if source != SourceModel {
		t.Errorf("source = %q, want %q", source, SourceModel)
	}
	if len(entities) != 1 || entities[0].Label != "organization" {
		t.Errorf("entities = %v, want only the high-confidence organization", entities)
	}
}

func TestAnalyzerFallsBackToPatterns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := NewAnalyzer(NewClient(srv.URL, "", 5*time.Second), pii.New(), 0.5, nil)
	entities, source := a.Analyze(context.Background(), "mail me at a@b.com")

	if source != SourcePattern {
		t.Errorf("source = %q, want %q", source, SourcePattern)
	}
	if len(entities) != 1 || entities[0].Label != "email" {
		t.Errorf("entities = %v, want one email entity from the pattern path", entities)
	}
}

func TestAnalyzerNoRemoteUsesPatterns(t *testing.T) {
	a := NewAnalyzer(nil, pii.New(), 0.5, nil)

	entities, source := a.Analyze(context.Background(), "SSN: 123-45-6789")
	if source != SourcePattern {
		t.Errorf("source = %q, want %q", source, SourcePattern)
	}
	if len(entities) != 1 || entities[0].Label != "ssn" {
		t.Errorf("entities = %v, want one ssn entity", entities)
	}
}
