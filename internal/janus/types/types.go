// Package types holds the wire-facing request and result shapes shared
// by the HTTP API and the hardware reader callback.
package types

import "github.com/janus-access/server/internal/janus/model"

// TapRequest is one presentation of a credential at a zone's reader,
// physical or simulated.
type TapRequest struct {
	UID      string `json:"uid"`
	ZoneID   int64  `json:"zone_id"`
	DeviceID string `json:"device_id,omitempty"`
}

// TapResult is the decision contract consumed by both the API layer and
// the hardware-loop callback. Reason is always at least as specific as
// Status.
type TapResult struct {
	Granted    bool               `json:"granted"`
	Status     model.AccessStatus `json:"status"`
	Reason     string             `json:"reason"`
	LogID      string             `json:"log_id"`
	User       string             `json:"user"` // display name, or "Unknown"
	ZoneID     int64              `json:"zone_id"`
	ServerTime string             `json:"server_time"`
}
