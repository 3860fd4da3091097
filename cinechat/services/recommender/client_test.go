package recommender

import (
	"cinechat/cinechat/utils/logging"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	logging.InitLogger(t.TempDir())
	return httptest.NewServer(handler)
}

func TestProcessQueryDecodesObjectResponse(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/process_query/sci-fi%20classics" {
			t.Errorf("unexpected path %q", r.URL.EscapedPath())
		}
		w.Write([]byte(`{"recommendations":[{"Title":"Dune","Reason":"classic"}],"message":"Here you go"}`))
	})
	defer srv.Close()

	resp, err := NewClient(srv.URL).ProcessQuery(context.Background(), "sci-fi classics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.BotText() != "Here you go" {
		t.Errorf("expected message text, got %q", resp.BotText())
	}
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].Title != "Dune" {
		t.Errorf("unexpected recommendations: %+v", resp.Recommendations)
	}
	if resp.Recommendations[0].Reason != "classic" {
		t.Errorf("expected reason decoded, got %q", resp.Recommendations[0].Reason)
	}
	if len(resp.Raw) == 0 {
		t.Errorf("expected raw payload retained")
	}
}

func TestProcessQueryAcceptsBareStringBody(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"Just watch Stalker."`))
	})
	defer srv.Close()

	resp, err := NewClient(srv.URL).ProcessQuery(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.BotText() != "Just watch Stalker." {
		t.Errorf("expected string body as text, got %q", resp.BotText())
	}
	if len(resp.Recommendations) != 0 {
		t.Errorf("expected no recommendations for string body")
	}
}

func TestProcessQueryToleratesNonListRecommendations(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"recommendations":"none today","message":"Here you go"}`))
	})
	defer srv.Close()

	resp, err := NewClient(srv.URL).ProcessQuery(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.BotText() != "Here you go" {
		t.Errorf("expected message text, got %q", resp.BotText())
	}
	if len(resp.Recommendations) != 0 {
		t.Errorf("expected empty recommendations, got %+v", resp.Recommendations)
	}
}

func TestProcessQueryNonSuccessStatusIsError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	})
	defer srv.Close()

	if _, err := NewClient(srv.URL).ProcessQuery(context.Background(), "anything"); err == nil {
		t.Errorf("expected error for non-success status")
	}
}

func TestProcessQueryGarbageBodyIsError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	})
	defer srv.Close()

	if _, err := NewClient(srv.URL).ProcessQuery(context.Background(), "anything"); err == nil {
		t.Errorf("expected error for unparseable body")
	}
}
