// cinechat/routes/notifier.go
package routes

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Notifier pushes a state-changed event to every connected rendering
// layer whenever the controller or session store mutates. Clients that
// hear it re-read GET /state; the event carries no payload on purpose.
type Notifier struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{conns: make(map[*websocket.Conn]struct{})}
}

func (n *Notifier) add(conn *websocket.Conn) {
	n.mu.Lock()
	n.conns[conn] = struct{}{}
	n.mu.Unlock()
}

func (n *Notifier) remove(conn *websocket.Conn) {
	n.mu.Lock()
	delete(n.conns, conn)
	n.mu.Unlock()
}

// Broadcast fans the event out; a write failure drops the connection.
func (n *Notifier) Broadcast() {
	n.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(n.conns))
	for conn := range n.conns {
		conns = append(conns, conn)
	}
	n.mu.Unlock()

	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"state_changed"}`))
		cancel()
		if err != nil {
			n.remove(conn)
			conn.Close(websocket.StatusNormalClosure, "")
		}
	}
}
