package dashboard

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 대시보드는 모든 출처를 허용한다
		return true
	},
}

// Hub는 웹소켓 클라이언트를 관리하고 이벤트를 전파합니다
type Hub struct {
	log logrus.FieldLogger

	mu      sync.RWMutex
	clients map[*wsClient]bool
}

// NewHub는 새로운 허브를 생성합니다
func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		log:     log,
		clients: make(map[*wsClient]bool),
	}
}

// HandleWS는 HTTP 연결을 웹소켓으로 업그레이드하고 클라이언트를 등록합니다
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &wsClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.log.WithField("clients", count).Debug("웹소켓 클라이언트 연결")

	greeting, _ := json.Marshal(map[string]interface{}{
		"type": "connected",
		"data": "Connected to trading bot",
	})
	client.send <- greeting

	go client.writePump()
	go client.readPump()

	return nil
}

// Broadcast는 연결된 모든 클라이언트에 이벤트를 전파합니다.
// 송신 버퍼가 가득 찬 클라이언트는 건너뜁니다.
func (h *Hub) Broadcast(event string, data interface{}) {
	envelope, err := json.Marshal(map[string]interface{}{
		"type": event,
		"data": data,
		"ts":   time.Now().Format(time.RFC3339),
	})
	if err != nil {
		h.log.WithError(err).Error("이벤트 마샬 실패")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- envelope:
		default:
		}
	}
}

// ClientCount는 연결된 클라이언트 수를 반환합니다
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// remove는 클라이언트를 허브에서 제거합니다
func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	h.log.Debug("웹소켓 클라이언트 연결 해제")
}
