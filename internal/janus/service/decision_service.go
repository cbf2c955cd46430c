package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/janus-access/server/internal/janus/model"
	"github.com/janus-access/server/internal/janus/store"
	"github.com/janus-access/server/internal/janus/types"
)

var (
	ErrInvalidUID  = errors.New("uid is required")
	ErrLogNotFound = errors.New("access log entry not found")
)

// unknownUser is the display name reported when a tap never resolved to
// a user.
const unknownUser = "Unknown"

// DecisionConfig tunes the orchestrator.
type DecisionConfig struct {
	// UTCOffset is the fixed offset applied uniformly when comparing
	// operating hours and policy time windows. A single site-wide
	// offset, not per-zone timezones.
	UTCOffset time.Duration

	// Clock overrides time.Now for tests. Nil means real time.
	Clock func() time.Time
}

// DecisionService is the tap orchestrator: it sequences the card, zone
// and policy authorities over one transaction, applies the decision's
// side effects, and guarantees exactly one audit row per tap. Safe for
// concurrent use; taps on the same card or zone serialize, taps on
// distinct entities proceed in parallel.
type DecisionService struct {
	taps    store.TapStore
	devices *DeviceRegistry
	locks   *entityLocks
	offset  time.Duration
	now     func() time.Time
}

func NewDecisionService(taps store.TapStore, devices *DeviceRegistry, cfg DecisionConfig) *DecisionService {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &DecisionService{
		taps:    taps,
		devices: devices,
		locks:   newEntityLocks(),
		offset:  cfg.UTCOffset,
		now:     now,
	}
}

// ProcessTap decides one credential presentation. Validation failures
// come back as a denied TapResult, never as an error; a non-nil error
// means the tap could not be durably decided (nothing was committed,
// no audit row exists, and the caller should treat it as an internal
// fault distinct from a deny).
func (s *DecisionService) ProcessTap(ctx context.Context, req types.TapRequest) (types.TapResult, error) {
	start := time.Now()
	now := s.now().UTC()
	local := now.Add(s.offset)

	if req.UID == "" {
		return types.TapResult{}, ErrInvalidUID
	}
	normalized := model.NormalizeUID(req.UID)
	uidHash := model.HashUID(normalized)

	deviceKnown := true
	if s.devices != nil && req.DeviceID != "" {
		known, err := s.devices.Observe(ctx, req.DeviceID)
		if err != nil {
			return types.TapResult{}, fmt.Errorf("device registry: %w", err)
		}
		deviceKnown = known
	}

	// Serialize against other taps on the same card, then the same
	// zone. The key order is fixed (card before zone), so two taps can
	// never deadlock against each other.
	unlockCard := s.locks.lock("card:" + uidHash)
	defer unlockCard()
	unlockZone := s.locks.lock(fmt.Sprintf("zone:%d", req.ZoneID))
	defer unlockZone()

	var out types.TapResult
	err := s.taps.Tap(ctx, func(tx store.TapTx) error {
		var (
			zone *model.Zone
			card *model.Card
			user *model.User
			err  error
		)

		// Malformed zone ids are a validation outcome, not a fault: the
		// hardware loop must shrug off bad input.
		if req.ZoneID > 0 {
			if zone, err = tx.ZoneByID(req.ZoneID); err != nil {
				return err
			}
		}
		if card, err = tx.CardByUIDHash(uidHash); err != nil {
			return err
		}
		if card != nil {
			if user, err = tx.UserByID(card.UserID); err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("card %d references missing user %d", card.ID, card.UserID)
			}
		}

		status, reason, err := s.validate(tx, zone, card, user, req.ZoneID, now, local)
		if err != nil {
			return err
		}

		if status.IsSuccess() {
			card.RecordSuccess(now)
			card.ResetFailedAttempts()
			user.TouchLastAccess(now)
			zone.IncrementOccupancy(now)
			if err := tx.SaveCard(card); err != nil {
				return err
			}
			if err := tx.SaveUser(user); err != nil {
				return err
			}
			if err := tx.SaveZone(zone); err != nil {
				return err
			}
		} else if card != nil {
			// Failure accounting is per presented card, whatever the
			// denial's cause. A valid card denied for zone hours still
			// counts toward its lockout.
			card.RecordFailure(now)
			if err := tx.SaveCard(card); err != nil {
				return err
			}
		}

		entry := &model.LogEntry{
			ID:           uuid.NewString(),
			UIDAttempted: normalized,
			Status:       status,
			Reason:       reason,
			DeviceID:     req.DeviceID,
			DecisionTime: time.Since(start),
			Timestamp:    now,
			IsEntry:      true,
		}
		if card != nil {
			entry.CardID = &card.ID
			entry.UserID = &card.UserID
		}
		if zone != nil {
			entry.ZoneID = &zone.ID
		}
		if !deviceKnown && req.DeviceID != "" {
			entry.MarkSuspicious("unregistered device " + req.DeviceID)
		}
		if err := tx.AppendLog(entry); err != nil {
			return err
		}

		out = types.TapResult{
			Granted:    status.IsSuccess(),
			Status:     status,
			Reason:     reason,
			LogID:      entry.ID,
			User:       unknownUser,
			ZoneID:     req.ZoneID,
			ServerTime: now.Format(time.RFC3339Nano),
		}
		if user != nil {
			out.User = user.DisplayName()
		}
		return nil
	})
	if err != nil {
		// Rolled back: no side effects, no audit row, no silent grant.
		return types.TapResult{}, err
	}
	return out, nil
}

// validate walks the authorities in their fixed order, short-circuiting
// on the first structured (status, reason) failure.
func (s *DecisionService) validate(
	tx store.TapTx,
	zone *model.Zone,
	card *model.Card,
	user *model.User,
	zoneID int64,
	now, local time.Time,
) (model.AccessStatus, string, error) {
	if zone == nil {
		return model.StatusInvalidZone, fmt.Sprintf("Zone ID %d does not exist", zoneID), nil
	}
	if card == nil {
		return model.StatusInvalidCard, "Unregistered or invalid card", nil
	}

	hasGrant, err := tx.UserHasZoneGrant(user.ID, zone.ID)
	if err != nil {
		return "", "", err
	}

	if status, reason := card.ValidateForZone(user, zone, hasGrant, now); !status.IsSuccess() {
		return status, reason, nil
	}
	if status, reason := zone.CanEnter(hasGrant, true, local); !status.IsSuccess() {
		return status, reason, nil
	}

	policies, err := tx.ActivePoliciesForZone(zone.ID)
	if err != nil {
		return "", "", err
	}
	if status, reason := model.EvaluatePolicies(policies, user, now, local); !status.IsSuccess() {
		return status, reason, nil
	}

	return model.StatusGranted, "Access Granted", nil
}

// RecordExit closes out an entry tap: it stamps the exit time and
// duration on the audit row and releases the occupancy slot, in one
// transaction. Exits are not decisions and produce no new audit row.
func (s *DecisionService) RecordExit(ctx context.Context, logID string) error {
	now := s.now().UTC()
	return s.taps.Tap(ctx, func(tx store.TapTx) error {
		entry, err := tx.LogByID(logID)
		if err != nil {
			return err
		}
		if entry == nil {
			return ErrLogNotFound
		}
		if !entry.IsEntry || entry.ExitTime != nil {
			return nil // already closed out; idempotent
		}
		entry.RecordExit(now)
		if err := tx.UpdateLog(entry); err != nil {
			return err
		}
		if entry.ZoneID != nil && entry.Status.IsSuccess() {
			zone, err := tx.ZoneByID(*entry.ZoneID)
			if err != nil {
				return err
			}
			if zone != nil {
				zone.DecrementOccupancy()
				if err := tx.SaveZone(zone); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
