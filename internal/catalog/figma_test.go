package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseFigmaLocator(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://www.figma.com/file/AbC123/My-Design", "AbC123", false},
		{"https://www.figma.com/design/XyZ789/Promo?node-id=1-2", "XyZ789", false},
		{"figma.com/file/Key1", "Key1", false},
		{"https://example.com/file/AbC123", "", true},
		{"not a url", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFigmaLocator(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFigmaLocator(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidLocator) {
			t.Errorf("ParseFigmaLocator(%q) error = %v, want ErrInvalidLocator", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFigmaLocator(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitFigmaTargetID(t *testing.T) {
	fileKey, nodeID, err := splitFigmaTargetID("AbC123/12:34")
	if err != nil {
		t.Fatalf("splitFigmaTargetID() error = %v", err)
	}
	if fileKey != "AbC123" || nodeID != "12:34" {
		t.Errorf("splitFigmaTargetID() = %q, %q", fileKey, nodeID)
	}

	for _, bad := range []string{"", "nokey", "/12:34", "AbC123/"} {
		if _, _, err := splitFigmaTargetID(bad); !errors.Is(err, ErrInvalidLocator) {
			t.Errorf("splitFigmaTargetID(%q) error = %v, want ErrInvalidLocator", bad, err)
		}
	}
}

func newTestFigma(srv *httptest.Server, token string) *Figma {
	f := NewFigma(StaticToken(token))
	f.baseURL = srv.URL
	return f
}

func TestFigmaListTargets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Figma-Token") != "figd_token" {
			t.Errorf("missing auth header")
		}
		if r.URL.Path != "/files/AbC123" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("depth") != "2" {
			t.Errorf("depth = %s", r.URL.Query().Get("depth"))
		}
		w.Write([]byte(`{
			"name": "Marketing",
			"document": {"children": [
				{"id": "0:1", "name": "Page 1", "children": [
					{"id": "1:2", "name": "Hero Frame", "type": "FRAME"},
					{"id": "1:3", "name": "Button", "type": "COMPONENT"},
					{"id": "1:4", "name": "Vector", "type": "VECTOR"}
				]},
				{"id": "0:2", "name": "Page 2", "children": [
					{"id": "2:1", "name": "Variants", "type": "COMPONENT_SET"}
				]}
			]}
		}`))
	}))
	defer srv.Close()

	f := newTestFigma(srv, "figd_token")
	targets, err := f.ListTargets(context.Background(), "https://www.figma.com/file/AbC123/Marketing")
	if err != nil {
		t.Fatalf("ListTargets() error = %v", err)
	}

	if len(targets) != 3 {
		t.Fatalf("len(targets) = %d, want 3 (VECTOR excluded)", len(targets))
	}
	if targets[0].ID != "AbC123/1:2" || targets[0].Name != "Hero Frame" || targets[0].Page != "Page 1" {
		t.Errorf("unexpected first target: %+v", targets[0])
	}
	if targets[2].ID != "AbC123/2:1" || targets[2].Page != "Page 2" {
		t.Errorf("unexpected last target: %+v", targets[2])
	}
}

func TestFigmaListSlots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/AbC123/nodes" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("ids") != "1:2" {
			t.Errorf("ids = %s", r.URL.Query().Get("ids"))
		}
		w.Write([]byte(`{"nodes": {"1:2": {"document": {
			"id": "1:2", "name": "Hero Frame", "type": "FRAME",
			"children": [
				{"id": "10:1", "name": "Title", "type": "TEXT", "characters": "Hello"},
				{"id": "10:2", "name": "Art", "type": "RECTANGLE", "children": [
					{"id": "10:3", "name": "Caption", "type": "TEXT", "characters": "World"}
				]}
			]
		}}}}`))
	}))
	defer srv.Close()

	f := newTestFigma(srv, "figd_token")
	slots, err := f.ListSlots(context.Background(), "AbC123/1:2")
	if err != nil {
		t.Fatalf("ListSlots() error = %v", err)
	}

	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}
	if slots[0].ID != "10:1" || slots[0].Name != "Title" || slots[0].Sample != "Hello" {
		t.Errorf("unexpected first slot: %+v", slots[0])
	}
	if slots[1].ID != "10:3" || slots[1].Name != "Caption" {
		t.Errorf("unexpected nested slot: %+v", slots[1])
	}
}

func TestFigmaListSlotsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"nodes": {"1:2": {"document": {"id": "1:2", "name": "Empty", "type": "FRAME"}}}}`))
	}))
	defer srv.Close()

	f := newTestFigma(srv, "figd_token")
	slots, err := f.ListSlots(context.Background(), "AbC123/1:2")
	if err != nil {
		t.Fatalf("ListSlots() error = %v", err)
	}
	if slots == nil || len(slots) != 0 {
		t.Errorf("ListSlots() = %v, want empty non-nil slice", slots)
	}
}

func TestFigmaErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		token  string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, "expired", ErrNotConnected},
		{"forbidden", http.StatusForbidden, "expired", ErrNotConnected},
		{"server error", http.StatusInternalServerError, "ok", ErrUpstream},
		{"rate limited", http.StatusTooManyRequests, "ok", ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			f := newTestFigma(srv, tt.token)
			_, err := f.ListSlots(context.Background(), "AbC123/1:2")
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFigmaNoToken(t *testing.T) {
	f := NewFigma(StaticToken(""))

	connected, err := f.IsConnected(context.Background())
	if err != nil || connected {
		t.Errorf("IsConnected() = %v, %v; want false, nil", connected, err)
	}

	_, err = f.ListSlots(context.Background(), "AbC123/1:2")
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("ListSlots() error = %v, want ErrNotConnected", err)
	}
}
