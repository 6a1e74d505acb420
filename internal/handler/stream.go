// 대시보드 실시간 이벤트 스트림 핸들러 (웹소켓)
//
// 처리 흐름:
//  1. 클라이언트가 GET /api/v1/stream으로 접속하면 웹소켓으로 업그레이드
//  2. 서비스 레이어가 Publish한 StreamEvent를 접속 중인 모든 클라이언트에 브로드캐스트
//  3. 전송 버퍼가 가득 찬 느린 클라이언트는 연결 종료 (전체 스트림을 막지 않음)

package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/data-sentry/backend/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const streamWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

type StreamHub struct {
	mu      sync.Mutex
	clients map[*streamClient]struct{}
}

func NewStreamHub() *StreamHub {
	return &StreamHub{
		clients: make(map[*streamClient]struct{}),
	}
}

// Publish - 상태 변경 이벤트를 접속 중인 모든 클라이언트에 전송
// 서비스 레이어의 publish 훅으로 주입됨 (호출 측을 절대 블로킹하지 않음)
func (h *StreamHub) Publish(event model.StreamEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal stream event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			// 느린 클라이언트 정리
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// ClientCount - 접속 중인 클라이언트 수
func (h *StreamHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve - 웹소켓 업그레이드 후 클라이언트 등록
func (h *StreamHub) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &streamClient{
		conn: conn,
		send: make(chan []byte, 64),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	log.Printf("Stream client connected (total=%d)", h.ClientCount())

	go h.writePump(client)
	go h.readPump(client)
}

func (h *StreamHub) writePump(client *streamClient) {
	defer client.conn.Close()

	for payload := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.remove(client)
			return
		}
	}
}

// readPump - 클라이언트 메시지는 사용하지 않지만 연결 종료 감지를 위해 필요
func (h *StreamHub) readPump(client *streamClient) {
	defer func() {
		h.remove(client)
		client.conn.Close()
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHub) remove(client *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}
