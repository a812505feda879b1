package controller

import (
	"log"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"renovision/models"
)

// LeadHub fans newly captured leads out to connected dashboard sockets so
// the "new lead" toast appears without a refresh. Subscribers are keyed by
// company so tenants only see their own leads.
type LeadHub struct {
	mu   sync.RWMutex
	subs map[string]map[*websocket.Conn]chan *models.Lead
}

func NewLeadHub() *LeadHub {
	return &LeadHub{
		subs: make(map[string]map[*websocket.Conn]chan *models.Lead),
	}
}

func (h *LeadHub) subscribe(companyID string, conn *websocket.Conn) chan *models.Lead {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[companyID] == nil {
		h.subs[companyID] = make(map[*websocket.Conn]chan *models.Lead)
	}
	ch := make(chan *models.Lead, 8)
	h.subs[companyID][conn] = ch
	return ch
}

func (h *LeadHub) unsubscribe(companyID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.subs[companyID]; ok {
		if ch, ok := conns[conn]; ok {
			close(ch)
			delete(conns, conn)
		}
		if len(conns) == 0 {
			delete(h.subs, companyID)
		}
	}
}

// Broadcast delivers a lead to that company's connected dashboards. Slow
// consumers are skipped rather than blocking capture.
func (h *LeadHub) Broadcast(lead *models.Lead) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[lead.CompanyID] {
		select {
		case ch <- lead:
		default:
		}
	}
}

// HandleLeadStreamWS streams new leads for the authenticated company.
func (h *LeadHub) HandleLeadStreamWS(c *websocket.Conn) {
	companyID, _ := c.Locals("companyID").(string)
	if companyID == "" {
		c.Close()
		return
	}

	ch := h.subscribe(companyID, c)
	defer h.unsubscribe(companyID, c)
	defer c.Close()

	// Reader goroutine detects the client going away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case lead, ok := <-ch:
			if !ok {
				return
			}
			if err := c.WriteJSON(fiber.Map{
				"event": "lead.created",
				"lead":  lead,
			}); err != nil {
				log.Printf("Error writing lead event: %v", err)
				return
			}
		}
	}
}
