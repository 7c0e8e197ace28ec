package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/imu"
	"github.com/relabs-tech/orientation_computer/internal/orientation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const wsWriteTimeout = time.Second

// webState keeps the latest message per topic and fans poses out to
// websocket clients.
type webState struct {
	mu         sync.RWMutex
	pose       orientation.Pose
	havePose   bool
	sample     imu.Sample
	haveSample bool
	status     StatusMessage
	haveStatus bool

	subsMu sync.Mutex
	subs   map[chan orientation.Pose]struct{}
}

func newWebState() *webState {
	return &webState{subs: make(map[chan orientation.Pose]struct{})}
}

func (s *webState) setPose(p orientation.Pose) {
	s.mu.Lock()
	s.pose = p
	s.havePose = true
	s.mu.Unlock()

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		// Slow clients drop poses rather than stall the MQTT callback.
		select {
		case ch <- p:
		default:
		}
	}
}

func (s *webState) setSample(v imu.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sample = v
	s.haveSample = true
}

func (s *webState) setStatus(v StatusMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = v
	s.haveStatus = true
}

func (s *webState) subscribe() chan orientation.Pose {
	ch := make(chan orientation.Pose, 8)
	s.subsMu.Lock()
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()
	return ch
}

func (s *webState) unsubscribe(ch chan orientation.Pose) {
	s.subsMu.Lock()
	delete(s.subs, ch)
	s.subsMu.Unlock()
}

func writeJSON(w http.ResponseWriter, have bool, v interface{}) {
	if !have {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func (s *webState) handleOrientation(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, s.havePose, s.pose)
}

func (s *webState) handleIMU(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, s.haveSample, s.sample)
}

func (s *webState) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, s.haveStatus, s.status)
}

// handleWS streams every pose to the client until it disconnects.
func (s *webState) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	// Reader goroutine notices the close frame.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	s.mu.RLock()
	initial, have := s.pose, s.havePose
	s.mu.RUnlock()
	if have {
		if err := conn.WriteJSON(initial); err != nil {
			return
		}
	}

	for {
		select {
		case p := <-ch:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(p); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("web: websocket write error: %v", err)
				}
				return
			}
		case <-closed:
			return
		}
	}
}

func (s *webState) routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/orientation", s.handleOrientation)
	mux.HandleFunc("/api/imu", s.handleIMU)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWS)
}

func RunWeb() error {
	cfg := config.Get()
	state := newWebState()

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Keep the latest message of each topic
	if err := subscribeJSON(client, cfg.TopicPose, state.setPose); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicIMU, state.setSample); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicStatus, state.setStatus); err != nil {
		return err
	}

	// 3) API, websocket and static files from ./web as the root
	mux := http.NewServeMux()
	state.routes(mux)
	mux.Handle("/", http.FileServer(http.Dir("web")))

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
