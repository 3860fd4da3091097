// cinechat/utils/types/movie.go
package types

import "encoding/json"

// Recommendation is one movie suggestion as rendered. Every field is
// optional; image and trailer are filled in by asset enrichment.
type Recommendation struct {
	Title    string `json:"title,omitempty"`
	Director string `json:"director,omitempty"`
	StarCast string `json:"starCast,omitempty"`
	Genre    string `json:"genre,omitempty"`
	Overview string `json:"overview,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Image    string `json:"image,omitempty"`
	Trailer  string `json:"trailer,omitempty"`
}

// The backend is loose about field casing: the same payload may carry
// Title or title, Star_Cast or cast, Image_URL or image. recommendationWire
// captures the variants; encoding/json already matches keys
// case-insensitively, so one tag per spelling is enough.
type recommendationWire struct {
	Title         string `json:"title"`
	Director      string `json:"director"`
	StarCastSnake string `json:"star_cast"`
	StarCast      string `json:"starCast"`
	Cast          string `json:"cast"`
	Genre         string `json:"genre"`
	Overview      string `json:"overview"`
	Description   string `json:"description"`
	Reason        string `json:"reason"`
	ImageURL      string `json:"image_url"`
	Image         string `json:"image"`
	Trailer       string `json:"trailer"`
}

func (r *Recommendation) UnmarshalJSON(data []byte) error {
	var w recommendationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Title = w.Title
	r.Director = w.Director
	r.StarCast = firstNonEmpty(w.StarCastSnake, w.StarCast, w.Cast)
	r.Genre = w.Genre
	r.Overview = firstNonEmpty(w.Overview, w.Description)
	r.Reason = w.Reason
	r.Image = firstNonEmpty(w.ImageURL, w.Image)
	r.Trailer = w.Trailer
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// QueryResponse is the recommendation endpoint's success shape. Raw holds
// the undecoded payload for the fallback dump when the response carries
// neither text nor recommendations.
type QueryResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Message         string           `json:"message"`
	Response        string           `json:"response"`
	EmotionResponse string           `json:"emotion_response"`

	Raw json.RawMessage `json:"-"`
}

type queryResponseWire struct {
	Recommendations json.RawMessage `json:"recommendations"`
	Message         string          `json:"message"`
	Response        string          `json:"response"`
	EmotionResponse string          `json:"emotion_response"`
}

// The backend occasionally puts a string or object where the
// recommendations list belongs. Anything that is not a decodable list
// is treated as no recommendations; the text fields still apply.
func (q *QueryResponse) UnmarshalJSON(data []byte) error {
	var w queryResponseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	q.Message = w.Message
	q.Response = w.Response
	q.EmotionResponse = w.EmotionResponse
	q.Recommendations = nil
	if len(w.Recommendations) > 0 {
		var recs []Recommendation
		if err := json.Unmarshal(w.Recommendations, &recs); err == nil {
			q.Recommendations = recs
		}
	}
	return nil
}

// BotText picks the display text: message, then response, then
// emotion_response, first non-empty wins.
func (q QueryResponse) BotText() string {
	return firstNonEmpty(q.Message, q.Response, q.EmotionResponse)
}
