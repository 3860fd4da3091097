// cinechat/sources/remote/store.go
package remote

import (
	httputils "cinechat/cinechat/utils/http"
	"cinechat/cinechat/utils/logging"
	"cinechat/cinechat/utils/types"
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

// Store is the remote session mirror. Every call carries the full
// session snapshot (create/replace) or just the id (delete); there is no
// conflict resolution and no versioning, last writer wins.
type Store struct {
	baseURL string
}

func NewStore(baseURL string) *Store {
	return &Store{baseURL: baseURL}
}

func (s *Store) chatsURL(username string) string {
	return fmt.Sprintf("%s/users/%s/chats", s.baseURL, url.PathEscape(username))
}

// ListSessions is the read-once load at login.
func (s *Store) ListSessions(ctx context.Context, username string) ([]types.Session, error) {
	defer logging.LogDuration(ctx, "remote_list_sessions")()
	logging.RequestLogger.Info("list sessions", zap.String("username", username))

	var sessions []types.Session
	if err := httputils.GetJSON(s.chatsURL(username), &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *Store) CreateSession(ctx context.Context, username string, session types.Session) error {
	logging.RequestLogger.Info("create session",
		zap.String("username", username), zap.String("session_id", session.ID))
	return httputils.PostJSON(s.chatsURL(username), session, nil)
}

func (s *Store) ReplaceSession(ctx context.Context, username string, session types.Session) error {
	logging.RequestLogger.Info("replace session",
		zap.String("username", username), zap.String("session_id", session.ID))
	return httputils.PutJSON(s.chatsURL(username)+"/"+url.PathEscape(session.ID), session)
}

func (s *Store) DeleteSession(ctx context.Context, username, id string) error {
	logging.RequestLogger.Info("delete session",
		zap.String("username", username), zap.String("session_id", id))
	return httputils.Delete(s.chatsURL(username) + "/" + url.PathEscape(id))
}
