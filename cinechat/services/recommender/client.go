// cinechat/services/recommender/client.go
package recommender

import (
	httputils "cinechat/cinechat/utils/http"
	"cinechat/cinechat/utils/logging"
	"cinechat/cinechat/utils/types"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

// Client talks to the recommendation backend's query endpoint.
type Client struct {
	baseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

// ProcessQuery submits the raw user query and decodes the response.
// The backend sometimes answers with a bare JSON string instead of an
// object; that string becomes the bot text directly. The undecoded
// payload is retained on Raw for the fallback dump.
func (c *Client) ProcessQuery(ctx context.Context, query string) (types.QueryResponse, error) {
	defer logging.LogDuration(ctx, "recommender_process_query")()

	endpoint := fmt.Sprintf("%s/process_query/%s", c.baseURL, url.PathEscape(query))
	logging.RequestLogger.Info("process_query", zap.String("query", query))

	var raw json.RawMessage
	if err := httputils.GetJSON(endpoint, &raw); err != nil {
		return types.QueryResponse{}, err
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return types.QueryResponse{Message: text, Raw: raw}, nil
	}

	var resp types.QueryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return types.QueryResponse{}, err
	}
	resp.Raw = raw
	return resp, nil
}
