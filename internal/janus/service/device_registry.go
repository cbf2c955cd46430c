package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/janus-access/server/internal/janus/store"
)

// DeviceRegistry answers whether a reader device has been commissioned
// and records when it was last heard from. Unknown devices never block
// a decision; their taps are flagged suspicious in the audit trail.
type DeviceRegistry struct {
	store  store.DeviceStore
	logger *log.Logger
}

func NewDeviceRegistry(st store.DeviceStore, logger *log.Logger) *DeviceRegistry {
	return &DeviceRegistry{store: st, logger: logger}
}

// Observe marks the device seen and reports whether it is known. An
// empty device id is treated as unknown without touching the store.
// A failed last-seen write is logged but does not block the decision.
func (r *DeviceRegistry) Observe(ctx context.Context, deviceID string) (bool, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return false, nil
	}
	known, err := r.store.IsKnown(ctx, deviceID)
	if err != nil {
		return false, err
	}
	if err := r.store.MarkSeen(ctx, deviceID, time.Now().UTC()); err != nil {
		r.logger.Printf("device %s: mark seen: %v", deviceID, err)
	}
	return known, nil
}
