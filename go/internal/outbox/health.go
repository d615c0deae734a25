package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type HealthStatus struct {
	Healthy           bool     `json:"healthy"`
	PendingEvents     int      `json:"pending_events"`
	DatabaseConnected bool     `json:"database_connected"`
	NATSConnected     bool     `json:"nats_connected"`
	Errors            []string `json:"errors,omitempty"`
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConnStatus is satisfied by *nats.Conn.
type ConnStatus interface {
	IsConnected() bool
}

// PendingCounter is satisfied by *Repository.
type PendingCounter interface {
	CountUnsent(ctx context.Context) (int, error)
}

// LagRecorder receives the number of unsent outbox rows.
type LagRecorder interface {
	RecordOutboxLag(lag int)
}

type HealthChecker struct {
	db           Pinger
	nats         ConnStatus
	pending      PendingCounter
	metrics      LagRecorder
	maxPending   int
	checkTimeout time.Duration
}

// NewHealthChecker builds a checker. nats may be nil when the relay is disabled.
func NewHealthChecker(db Pinger, nats ConnStatus, pending PendingCounter, metrics LagRecorder, maxPending int) *HealthChecker {
	return &HealthChecker{
		db:           db,
		nats:         nats,
		pending:      pending,
		metrics:      metrics,
		maxPending:   maxPending,
		checkTimeout: 3 * time.Second,
	}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, h.checkTimeout)
	defer cancel()

	status := HealthStatus{Healthy: true}

	if err := h.db.PingContext(ctx); err != nil {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
	} else {
		status.DatabaseConnected = true
	}

	if h.nats != nil {
		status.NATSConnected = h.nats.IsConnected()
		if !status.NATSConnected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}

	if h.pending != nil && status.DatabaseConnected {
		count, err := h.pending.CountUnsent(ctx)
		if err != nil {
			status.Errors = append(status.Errors, fmt.Sprintf("failed to count pending events: %v", err))
		} else {
			status.PendingEvents = count
			if h.metrics != nil {
				h.metrics.RecordOutboxLag(count)
			}
			if h.maxPending > 0 && count > h.maxPending {
				status.Healthy = false
				status.Errors = append(status.Errors, fmt.Sprintf("too many pending events: %d", count))
			}
		}
	}

	return status
}

// ServeHTTP reports health as JSON, 503 when unhealthy.
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.Check(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}
