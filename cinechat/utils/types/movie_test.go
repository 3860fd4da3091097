package types

import (
	"encoding/json"
	"testing"
)

func TestRecommendationDecodesBackendCasing(t *testing.T) {
	payload := `{
		"Title": "Dune",
		"Director": "Denis Villeneuve",
		"Star_Cast": "Chalamet, Ferguson",
		"Genre": "Sci-Fi",
		"Overview": "Desert planet politics",
		"Reason": "You liked Arrival",
		"Image_URL": "https://img.example/dune.jpg"
	}`
	var r Recommendation
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Dune" || r.Director != "Denis Villeneuve" {
		t.Errorf("unexpected decode: %+v", r)
	}
	if r.StarCast != "Chalamet, Ferguson" {
		t.Errorf("expected Star_Cast mapped, got %q", r.StarCast)
	}
	if r.Image != "https://img.example/dune.jpg" {
		t.Errorf("expected Image_URL mapped, got %q", r.Image)
	}
}

func TestRecommendationDecodesLowercaseAndAliases(t *testing.T) {
	payload := `{
		"title": "Alien",
		"cast": "Weaver",
		"description": "Space horror",
		"image": "https://img.example/alien.jpg",
		"trailer": "https://yt.example/alien"
	}`
	var r Recommendation
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.StarCast != "Weaver" {
		t.Errorf("expected cast alias mapped, got %q", r.StarCast)
	}
	if r.Overview != "Space horror" {
		t.Errorf("expected description alias mapped, got %q", r.Overview)
	}
	if r.Image != "https://img.example/alien.jpg" || r.Trailer != "https://yt.example/alien" {
		t.Errorf("unexpected assets: %+v", r)
	}
}

func TestRecommendationRoundTripsOwnEncoding(t *testing.T) {
	in := Recommendation{Title: "Heat", StarCast: "Pacino, De Niro", Image: "https://img.example/heat.jpg"}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var out Recommendation
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out != in {
		t.Errorf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestQueryResponseToleratesNonListRecommendations(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"string field", `{"recommendations":"none today","message":"Here you go"}`},
		{"object field", `{"recommendations":{"oops":true},"message":"Here you go"}`},
		{"number field", `{"recommendations":42,"message":"Here you go"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var resp QueryResponse
			if err := json.Unmarshal([]byte(c.body), &resp); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if resp.Message != "Here you go" {
				t.Errorf("expected message kept, got %q", resp.Message)
			}
			if len(resp.Recommendations) != 0 {
				t.Errorf("expected empty recommendations, got %+v", resp.Recommendations)
			}
		})
	}
}

func TestBotTextPriority(t *testing.T) {
	cases := []struct {
		name string
		resp QueryResponse
		want string
	}{
		{"message wins", QueryResponse{Message: "m", Response: "r", EmotionResponse: "e"}, "m"},
		{"response next", QueryResponse{Response: "r", EmotionResponse: "e"}, "r"},
		{"emotion last", QueryResponse{EmotionResponse: "e"}, "e"},
		{"all empty", QueryResponse{}, ""},
	}
	for _, tc := range cases {
		if got := tc.resp.BotText(); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

