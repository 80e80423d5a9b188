package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCareerSitePagedFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `{"jobs": [
				{"id": 101, "title": "Footwear Designer", "location": "Boston, MA", "url": "/careers/101"},
				{"id": "102", "title": "Marketing Coordinator", "location": "Remote"}
			]}`)
		case "2":
			fmt.Fprint(w, `{"jobs": [{"id": 103, "title": "Merchandising Analyst"}]}`)
		default:
			fmt.Fprint(w, `{"jobs": []}`)
		}
	}))
	defer server.Close()

	spec := CareerSiteSpec{
		Company:     "New Balance",
		Slug:        "newbalance",
		Endpoint:    server.URL + "/api/jobs?page={page}",
		MaxPages:    5,
		IDField:     "id",
		TitleField:  "title",
		LocField:    "location",
		URLField:    "url",
		URLTemplate: "https://jobs.example.com/{id}",
	}
	a := NewCareerSiteAdapter(spec, matchAll{}, testClient(), testLimiter(), testLogger())

	postings, err := a.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("FetchPostings: %v", err)
	}
	if len(postings) != 3 {
		t.Fatalf("got %d postings, want 3", len(postings))
	}

	// Numeric IDs come through as JSON numbers and still key cleanly.
	if postings[0].ID != "newbalance-101" {
		t.Errorf("ID = %q, want newbalance-101", postings[0].ID)
	}
	// Relative URLs resolve against the endpoint origin.
	if postings[0].URL != server.URL+"/careers/101" {
		t.Errorf("URL = %q", postings[0].URL)
	}
	// Records without a URL field fall back to the template.
	if postings[1].URL != "https://jobs.example.com/102" {
		t.Errorf("template URL = %q", postings[1].URL)
	}
}

func TestCareerSiteSinglePageWithoutPlaceholder(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"data": [{"id": "a", "title": "Coordinator"}]}`)
	}))
	defer server.Close()

	spec := CareerSiteSpec{
		Company:    "Brooks",
		Slug:       "brooks",
		Endpoint:   server.URL + "/jobs",
		IDField:    "id",
		TitleField: "title",
	}
	a := NewCareerSiteAdapter(spec, matchAll{}, testClient(), testLimiter(), testLogger())

	postings, err := a.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("FetchPostings: %v", err)
	}
	if calls != 1 {
		t.Errorf("made %d requests, want 1 for an unpaged endpoint", calls)
	}
	if len(postings) != 1 {
		t.Errorf("got %d postings, want 1", len(postings))
	}
}

func TestCareerSiteNotFoundIsEmptyBoard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	spec := CareerSiteSpec{Company: "Gone", Slug: "gone", Endpoint: server.URL, IDField: "id", TitleField: "title"}
	a := NewCareerSiteAdapter(spec, matchAll{}, testClient(), testLimiter(), testLogger())

	postings, err := a.FetchPostings(context.Background())
	if err != nil {
		t.Errorf("404 should read as an empty board, got %v", err)
	}
	if len(postings) != 0 {
		t.Errorf("got %d postings, want 0", len(postings))
	}
}

func TestCareerSiteDropsMalformedRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jobs": [
			{"id": "1", "title": "Good Coordinator"},
			{"title": "No ID"},
			{"id": "3"}
		]}`)
	}))
	defer server.Close()

	spec := CareerSiteSpec{Company: "X", Slug: "x", Endpoint: server.URL, IDField: "id", TitleField: "title"}
	a := NewCareerSiteAdapter(spec, matchAll{}, testClient(), testLimiter(), testLogger())

	postings, err := a.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("FetchPostings: %v", err)
	}
	if len(postings) != 1 {
		t.Errorf("got %d postings, want 1 surviving record", len(postings))
	}
}

func TestStringField(t *testing.T) {
	record := map[string]any{
		"s":     "text",
		"whole": float64(42),
		"frac":  float64(1.5),
	}
	if got := stringField(record, "s"); got != "text" {
		t.Errorf("string: %q", got)
	}
	if got := stringField(record, "whole"); got != "42" {
		t.Errorf("whole number: %q", got)
	}
	if got := stringField(record, "frac"); got != "1.5" {
		t.Errorf("fractional: %q", got)
	}
	if got := stringField(record, "missing"); got != "" {
		t.Errorf("missing key: %q", got)
	}
	if got := stringField(record, ""); got != "" {
		t.Errorf("empty key: %q", got)
	}
}

func TestOriginOf(t *testing.T) {
	cases := map[string]string{
		"https://example.com/api/jobs?page=2": "https://example.com",
		"https://example.com":                 "https://example.com",
		"not-a-url":                           "not-a-url",
	}
	for in, want := range cases {
		if got := originOf(in); got != want {
			t.Errorf("originOf(%q) = %q, want %q", in, got, want)
		}
	}
}
