package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/janus-access/server/internal/janus/service"
	"github.com/janus-access/server/internal/janus/store/memory"
)

func TestDeviceRegistry_ObserveMarksSeen(t *testing.T) {
	ds := memory.NewDeviceStore([]string{"door-001"})
	r := service.NewDeviceRegistry(ds, log.New(io.Discard, "", 0))

	known, err := r.Observe(context.Background(), "door-001")
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if !known {
		t.Error("commissioned device reported unknown")
	}
	if _, ok := ds.LastSeen("door-001"); !ok {
		t.Error("known device not marked seen")
	}

	known, err = r.Observe(context.Background(), "rogue-007")
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if known {
		t.Error("uncommissioned device reported known")
	}
	if _, ok := ds.LastSeen("rogue-007"); !ok {
		t.Error("unknown device not marked seen")
	}
}

func TestDeviceRegistry_EmptyIDSkipsStore(t *testing.T) {
	ds := memory.NewDeviceStore(nil)
	r := service.NewDeviceRegistry(ds, log.New(io.Discard, "", 0))

	known, err := r.Observe(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if known {
		t.Error("blank device id reported known")
	}
	if _, ok := ds.LastSeen(""); ok {
		t.Error("blank device id reached the store")
	}
}

// markSeenFailStore fails every MarkSeen write.
type markSeenFailStore struct {
	*memory.DeviceStore
}

func (s markSeenFailStore) MarkSeen(context.Context, string, time.Time) error {
	return errors.New("disk full")
}

func TestDeviceRegistry_MarkSeenFailureIsLoggedNotFatal(t *testing.T) {
	var buf bytes.Buffer
	r := service.NewDeviceRegistry(
		markSeenFailStore{memory.NewDeviceStore([]string{"door-001"})},
		log.New(&buf, "", 0))

	known, err := r.Observe(context.Background(), "door-001")
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if !known {
		t.Error("device reported unknown after mark-seen failure")
	}
	if !strings.Contains(buf.String(), "mark seen") {
		t.Errorf("mark-seen failure not logged: %q", buf.String())
	}
}
