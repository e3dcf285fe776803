package dashboard

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// 쓰기 제한 시간
	writeWait = 10 * time.Second
	// 퐁 응답 대기 시간
	pongWait = 60 * time.Second
	// 핑 전송 주기. pongWait보다 짧아야 한다.
	pingPeriod = 30 * time.Second
	// 수신 메시지 크기 제한
	maxMessageSize = 512
)

// wsClient는 접속한 웹소켓 피어 하나를 나타냅니다
type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// writePump는 send 채널의 메시지를 연결로 내보내고 주기적으로 핑을 보냅니다
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump는 연결이 살아 있는 동안 수신 메시지를 소비합니다.
// 대시보드 클라이언트가 보내는 메시지는 없으므로 내용은 버립니다.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
