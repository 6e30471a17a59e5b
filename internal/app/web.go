package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/inertialab/tiltd/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local dashboard, no cross-origin concerns
	},
}

// webHub fans incoming tilt payloads out to connected WebSocket clients and
// keeps the latest one for the JSON endpoint.
type webHub struct {
	mu       sync.RWMutex
	lastTilt []byte
	clients  map[*websocket.Conn]chan []byte
}

func newWebHub() *webHub {
	return &webHub{clients: make(map[*websocket.Conn]chan []byte)}
}

func (h *webHub) publish(payload []byte) {
	h.mu.Lock()
	h.lastTilt = payload
	for conn, ch := range h.clients {
		select {
		case ch <- payload:
		default:
			// Slow client; drop this update rather than stall the rest.
			_ = conn
		}
	}
	h.mu.Unlock()
}

func (h *webHub) latest() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastTilt
}

func (h *webHub) add(conn *websocket.Conn) chan []byte {
	ch := make(chan []byte, 16)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	return ch
}

func (h *webHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(ch)
	}
	h.mu.Unlock()
}

// RunWeb serves the dashboard: latest estimate as JSON, a live WebSocket
// stream, and a control channel that forwards dashboard actions to the
// daemon over MQTT.
func RunWeb() error {
	cfg := config.Get()
	hub := newWebHub()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID(cfg.MQTT.ClientID + "-web")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTT.Broker)

	token := client.Subscribe(cfg.MQTT.TopicTilt, 0, func(_ mqtt.Client, msg mqtt.Message) {
		hub.publish(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.MQTT.TopicTilt)

	http.HandleFunc("/api/tilt", func(w http.ResponseWriter, r *http.Request) {
		payload := hub.latest()
		if payload == nil {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
	})

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleWS(w, r, hub, client, cfg)
	})

	// Static files from ./web as the root
	http.Handle("/", http.FileServer(http.Dir("web")))

	addr := fmt.Sprintf(":%d", cfg.Web.Port)
	log.Printf("web: dashboard listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}

// wsWriter serializes outgoing frames on one connection. gorilla/websocket
// supports only a single concurrent writer, and both the hub fan-out
// goroutine and the reader's error replies need to send.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) write(payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, payload)
}

// handleWS streams estimates to one dashboard client and relays its control
// actions onto the MQTT control topic.
func handleWS(w http.ResponseWriter, r *http.Request, hub *webHub, client mqtt.Client, cfg *config.Config) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	wr := &wsWriter{conn: conn}
	ch := hub.add(conn)
	defer hub.remove(conn)

	// Writer: push tilt updates as they arrive.
	go func() {
		for payload := range ch {
			if err := wr.write(payload); err != nil {
				return
			}
		}
	}()

	// Reader: control actions from the dashboard.
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("web: websocket error: %v", err)
			}
			return
		}

		ctrl, err := parseControl(payload)
		if err != nil {
			log.Printf("web: bad control message: %v", err)
			resp, _ := json.Marshal(map[string]string{"error": err.Error()})
			wr.write(resp)
			continue
		}

		out, _ := json.Marshal(ctrl)
		if token := client.Publish(cfg.MQTT.TopicControl, 0, false, out); token.Wait() && token.Error() != nil {
			log.Printf("web: control publish error: %v", token.Error())
		} else {
			log.Printf("web: forwarded control action %q", ctrl.Action)
		}
	}
}
