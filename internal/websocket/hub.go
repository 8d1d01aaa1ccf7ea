package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ToyoKou0322/my-sns-app/internal/realtime"
)

// Hub groups clients by scope and fans snapshots out to them. It also tells
// the bridge when a scope gains its first watcher or loses its last one, so
// exactly one feed runs per watched scope no matter how many clients share
// it.
type Hub struct {
	scopes map[string]map[*Client]struct{}
	mu     sync.RWMutex

	events chan realtime.ScopeEvent

	ctx    context.Context
	cancel context.CancelFunc

	stats   HubStats
	statsMu sync.RWMutex

	cleanupTicker *time.Ticker
}

type HubStats struct {
	TotalScopes      int       `json:"total_scopes"`
	TotalClients     int       `json:"total_clients"`
	TotalConnections int64     `json:"total_connections"`
	MessageSent      int64     `json:"message_sent"`
	LastReset        time.Time `json:"last_reset"`
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	hub := &Hub{
		scopes: make(map[string]map[*Client]struct{}),
		events: make(chan realtime.ScopeEvent, 64),
		ctx:    ctx,
		cancel: cancel,
		stats: HubStats{
			LastReset: time.Now(),
		},
		cleanupTicker: time.NewTicker(1 * time.Minute),
	}

	go hub.cleanupRoutine()

	return hub
}

// ScopeEvents is consumed by the bridge.
func (h *Hub) ScopeEvents() <-chan realtime.ScopeEvent {
	return h.events
}

// Register adds a client to its scope and starts its pumps.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	first := h.scopes[client.Scope] == nil || len(h.scopes[client.Scope]) == 0
	if h.scopes[client.Scope] == nil {
		h.scopes[client.Scope] = make(map[*Client]struct{})
	}
	h.scopes[client.Scope][client] = struct{}{}
	size := len(h.scopes[client.Scope])
	h.mu.Unlock()

	h.updateStats(func(stats *HubStats) {
		stats.TotalConnections++
	})

	if first {
		h.emit(realtime.ScopeEvent{Scope: client.Scope, Active: true})
	}

	client.Start()

	log.Info().Str("scope", client.Scope).Str("clientID", client.ID).Str("userID", client.UserID).Int("scopeSize", size).Msg("ws: client registered")
}

// Unregister removes a client from its scope.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	last := false
	if clients, ok := h.scopes[client.Scope]; ok {
		if _, member := clients[client]; member {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.scopes, client.Scope)
				last = true
			}
		}
	}
	h.mu.Unlock()

	if last {
		h.emit(realtime.ScopeEvent{Scope: client.Scope, Active: false})
	}

	log.Info().Str("scope", client.Scope).Str("clientID", client.ID).Str("userID", client.UserID).Msg("ws: client unregistered")
}

// Broadcast pushes one snapshot to every active client of a scope.
func (h *Hub) Broadcast(scope string, payload any) {
	message := OutgoingMessage{
		Type:      TypeSnapshot,
		Scope:     scope,
		Data:      payload,
		Timestamp: time.Now().Unix(),
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("scope", scope).Msg("ws: failed to marshal snapshot")
		return
	}

	h.mu.RLock()
	var targets []*Client
	if clients, ok := h.scopes[scope]; ok {
		targets = make([]*Client, 0, len(clients))
		for client := range clients {
			if client.IsClientActive() {
				targets = append(targets, client)
			}
		}
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	for _, client := range targets {
		select {
		case client.Send <- data:
		case <-client.ctx.Done():
		default:
			// slow consumer; a fresh snapshot arrives with the next change
			// anyway, so drop rather than block the fan-out
			log.Warn().Str("scope", scope).Str("clientID", client.ID).Msg("ws: slow consumer, dropping snapshot")
		}
	}

	h.updateStats(func(stats *HubStats) {
		stats.MessageSent += int64(len(targets))
	})

	log.Debug().Str("scope", scope).Int("targets", len(targets)).Msg("ws: broadcast completed")
}

// CountClients returns the number of active clients across all scopes.
func (h *Hub) CountClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.scopes {
		for client := range clients {
			if client.IsClientActive() {
				total++
			}
		}
	}
	return total
}

// GetHubStats returns overall hub statistics.
func (h *Hub) GetHubStats() HubStats {
	h.statsMu.RLock()
	defer h.statsMu.RUnlock()

	stats := h.stats

	h.mu.RLock()
	stats.TotalScopes = len(h.scopes)
	h.mu.RUnlock()
	stats.TotalClients = h.CountClients()

	return stats
}

func (h *Hub) emit(ev realtime.ScopeEvent) {
	select {
	case h.events <- ev:
	default:
		log.Warn().Str("scope", ev.Scope).Bool("active", ev.Active).Msg("ws: scope event dropped, bridge not keeping up")
	}
}

func (h *Hub) updateStats(fn func(*HubStats)) {
	h.statsMu.Lock()
	fn(&h.stats)
	h.statsMu.Unlock()
}

func (h *Hub) cleanupRoutine() {
	defer h.cleanupTicker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.cleanupTicker.C:
			h.performCleanup()
		}
	}
}

func (h *Hub) performCleanup() {
	now := time.Now()
	inactiveThreshold := 2 * time.Minute

	var toRemove []*Client

	h.mu.RLock()
	for _, clients := range h.scopes {
		for client := range clients {
			if client.Conn == nil {
				continue
			}
			if !client.IsClientActive() || now.Sub(client.GetLastSeen()) > inactiveThreshold {
				toRemove = append(toRemove, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range toRemove {
		log.Info().Str("clientID", client.ID).Str("scope", client.Scope).Msg("ws: cleaning up inactive client")
		client.Close()
	}

	log.Debug().Int("cleaned", len(toRemove)).Msg("ws: cleanup routine completed")
}

// Close gracefully shuts down the hub.
func (h *Hub) Close() {
	log.Info().Msg("ws: shutting down hub")

	h.mu.RLock()
	var allClients []*Client
	for _, clients := range h.scopes {
		for client := range clients {
			allClients = append(allClients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range allClients {
		client.Close()
	}

	h.cancel()
	close(h.events)

	log.Info().Int("clients", len(allClients)).Msg("ws: hub shutdown completed")
}
