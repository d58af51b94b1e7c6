package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "ecobazaar/internal/kafka"
	"ecobazaar/internal/orders"
	"ecobazaar/internal/users"
)

// Producers groups the per-topic lifecycle event producers.
type Producers struct {
	Created        *kafkax.Producer
	Delivered      *kafkax.Producer
	Cancelled      *kafkax.Producer
	ReturnResolved *kafkax.Producer
}

type OrdersHandler struct {
	Repo      *orders.Repo
	Producers *Producers
	Service   string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders/checkout", h.checkout)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/cancel", h.cancelOrder)
	r.Put("/orders/{id}/status", h.updateStatus)
	r.Post("/orders/{id}/return", h.requestReturn)
	r.Post("/orders/{id}/return/approve", h.resolveReturn(true))
	r.Post("/orders/{id}/return/reject", h.resolveReturn(false))
	r.Get("/seller/orders", h.sellerOrders)
	r.Get("/admin/orders", h.adminOrders)
}

// publish wraps a payload in the v1 envelope and hands it to the topic
// producer. A nil producer disables publishing (tests, worker-less dev).
func (h *OrdersHandler) publish(r *http.Request, p *kafkax.Producer, eventType, orderID string, payload any) {
	if p == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) checkout(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.Checkout(ctx, actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.publish(r, h.Producers.Created, orders.EventOrderCreated, o.ID, orders.OrderCreatedPayload{
		OrderID:     o.ID,
		UserID:      o.UserID,
		TotalPrice:  o.TotalPrice,
		TotalCarbon: o.TotalCarbon,
		TotalItems:  o.TotalItems,
	})

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	os, err := h.Repo.ListByUser(ctx, actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	orderID := urlParam(r, "id")

	// Admins and sellers see any order they are party to; buyers only
	// their own.
	if actor.Role == users.RoleAdmin {
		o, err := h.Repo.FindByID(ctx, orderID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, o)
		return
	}
	if actor.Role == users.RoleSeller {
		o, err := h.Repo.FindByID(ctx, orderID)
		if err != nil {
			writeError(w, err)
			return
		}
		if !o.ContainsSeller(actor.ID) && o.UserID != actor.ID {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "not your order"})
			return
		}
		writeJSON(w, http.StatusOK, o)
		return
	}
	o, err := h.Repo.FindForUser(ctx, orderID, actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.Cancel(ctx, urlParam(r, "id"), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.publish(r, h.Producers.Cancelled, orders.EventOrderCancelled, o.ID, orders.OrderCancelledPayload{
		OrderID: o.ID,
		UserID:  o.UserID,
	})

	writeJSON(w, http.StatusOK, o)
}

type updateStatusReq struct {
	Status orders.Status `json:"status"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if actor.Role != users.RoleSeller && actor.Role != users.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "seller or admin only"})
		return
	}
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if !req.Status.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, change, err := h.Repo.UpdateStatus(ctx, urlParam(r, "id"), actor.ID, actor.Role, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	if o.Status == orders.StatusDelivered && change != nil {
		h.publish(r, h.Producers.Delivered, orders.EventOrderDelivered, o.ID, orders.OrderDeliveredPayload{
			OrderID:     o.ID,
			UserID:      o.UserID,
			ScoreAward:  change.Delta,
			NewEcoScore: change.NewScore,
		})
	}

	writeJSON(w, http.StatusOK, o)
}

type returnReq struct {
	Reason string `json:"reason"`
}

func (h *OrdersHandler) requestReturn(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req returnReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Reason == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reason required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.RequestReturn(ctx, urlParam(r, "id"), actor.ID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) resolveReturn(approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		o, change, err := h.Repo.ResolveReturn(ctx, urlParam(r, "id"), actor.ID, approve)
		if err != nil {
			writeError(w, err)
			return
		}

		payload := orders.ReturnResolvedPayload{
			OrderID:    o.ID,
			UserID:     o.UserID,
			Resolution: o.ReturnStatus,
		}
		if change != nil {
			payload.ScoreReturn = change.Delta
			payload.NewEcoScore = change.NewScore
		}
		h.publish(r, h.Producers.ReturnResolved, orders.EventReturnResolved, o.ID, payload)

		writeJSON(w, http.StatusOK, o)
	}
}

func (h *OrdersHandler) sellerOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if actor.Role != users.RoleSeller && actor.Role != users.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "seller or admin only"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	os, err := h.Repo.ListBySeller(ctx, actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *OrdersHandler) adminOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if actor.Role != users.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin only"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var (
		os  []orders.Order
		err error
	)
	if s := r.URL.Query().Get("status"); s != "" {
		status := orders.Status(s)
		if !status.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
			return
		}
		os, err = h.Repo.ListByStatus(ctx, status)
	} else {
		os, err = h.Repo.ListAll(ctx)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}
