// cinechat/pipeline/pipeline.go
package pipeline

import (
	"cinechat/cinechat/sessions"
	"cinechat/cinechat/utils/jsonutils"
	"cinechat/cinechat/utils/logging"
	"cinechat/cinechat/utils/types"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FailureText is the fixed user-facing message for a failed query.
const FailureText = "Sorry, we could not fetch recommendations. Please try again later."

type Recommender interface {
	ProcessQuery(ctx context.Context, query string) (types.QueryResponse, error)
}

type Enricher interface {
	EnrichAll(ctx context.Context, recs []types.Recommendation) []types.Recommendation
}

// Pipeline runs the full lifecycle of one user query: the two-phase
// optimistic append, the recommendation call, the enrichment join, and
// the in-place resolution or failure of the placeholder. At most one
// pipeline may be in flight per session.
type Pipeline struct {
	store    *sessions.Store
	rec      Recommender
	enricher Enricher

	mu       sync.Mutex
	inFlight map[string]bool
	now      func() time.Time
}

func New(store *sessions.Store, rec Recommender, enricher Enricher) *Pipeline {
	return &Pipeline{
		store:    store,
		rec:      rec,
		enricher: enricher,
		inFlight: make(map[string]bool),
		now:      time.Now,
	}
}

// InFlight reports whether a pipeline is pending for the session. The
// rendering layer uses it to disable submission.
func (p *Pipeline) InFlight(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight[sessionID]
}

// Submit runs one query through to resolution. It returns false without
// touching any state when the query is blank, the session id is empty or
// unknown, or a pipeline is already pending for the session. The user
// message and its pending bot counterpart land in a single store update,
// strictly before any network call.
func (p *Pipeline) Submit(ctx context.Context, sessionID, query string) bool {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" || sessionID == "" {
		return false
	}

	p.mu.Lock()
	if p.inFlight[sessionID] {
		p.mu.Unlock()
		return false
	}
	p.inFlight[sessionID] = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.inFlight, sessionID)
		p.mu.Unlock()
	}()

	ts := p.now().UnixMilli()
	userMsg := types.NewUserMessage(ts, trimmed)
	pending := types.NewPendingBotMessage(ts)
	ok := p.store.UpdateMessages(sessionID, func(msgs []types.Message) []types.Message {
		return append(msgs, userMsg, pending)
	})
	if !ok {
		return false
	}

	logging.AppLogger.Info("query dispatched",
		zap.String("session_id", sessionID), zap.String("message_id", pending.ID))

	resp, err := p.rec.ProcessQuery(ctx, trimmed)
	if err != nil {
		logging.ErrorLogger.Error("query failed",
			zap.String("session_id", sessionID), zap.Error(err))
		p.store.UpdateMessages(sessionID, replaceMessage(pending.ID, func(m types.Message) types.Message {
			return m.Failed(FailureText)
		}))
		return true
	}

	recs := resp.Recommendations
	if recs == nil {
		recs = []types.Recommendation{}
	}
	enriched := p.enricher.EnrichAll(ctx, recs)

	text := resp.BotText()
	if text == "" && len(recs) == 0 {
		text = rawDump(resp.Raw)
	}

	p.store.UpdateMessages(sessionID, replaceMessage(pending.ID, func(m types.Message) types.Message {
		return m.Resolved(text, enriched)
	}))
	return true
}

// rawDump stringifies the whole response payload so the user always sees
// something when the backend returned neither text nor recommendations.
func rawDump(raw json.RawMessage) string {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	if dump := jsonutils.Compact(v); dump != "" {
		return dump
	}
	return string(raw)
}

func replaceMessage(id string, f func(types.Message) types.Message) func([]types.Message) []types.Message {
	return func(msgs []types.Message) []types.Message {
		out := make([]types.Message, len(msgs))
		for i, m := range msgs {
			if m.ID == id {
				m = f(m)
			}
			out[i] = m
		}
		return out
	}
}
