// Package memory holds in-memory store implementations for dev
// environments and tests.
package memory

import (
	"context"
	"sync"

	"github.com/janus-access/server/internal/janus/model"
	"github.com/janus-access/server/internal/janus/store"
)

// Store is an in-memory implementation of the tap, audit and directory
// stores. A tap transaction stages its writes and applies them only if
// the transaction function succeeds, so rollback semantics match the
// sqlite store. The store mutex is held for the whole transaction,
// which serializes taps. Fine for dev and tests.
type Store struct {
	mu sync.Mutex

	nextID int64

	users      map[int64]model.User
	zones      map[int64]model.Zone
	cards      map[int64]model.Card
	cardByHash map[string]int64
	grants     map[grantKey]struct{}
	policies   map[int64][]model.Policy // keyed by zone id

	logs     []model.LogEntry
	logIndex map[string]int
}

type grantKey struct{ userID, zoneID int64 }

func New() *Store {
	return &Store{
		nextID:     1,
		users:      make(map[int64]model.User),
		zones:      make(map[int64]model.Zone),
		cards:      make(map[int64]model.Card),
		cardByHash: make(map[string]int64),
		grants:     make(map[grantKey]struct{}),
		policies:   make(map[int64][]model.Policy),
		logIndex:   make(map[string]int),
	}
}

// ── Seeding helpers ──────────────────────────────────────────────────────────

// AddUser inserts a user, assigning an id when none is set.
func (s *Store) AddUser(u model.User) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.nextID
		s.nextID++
	}
	s.users[u.ID] = u
	return u.ID
}

func (s *Store) AddZone(z model.Zone) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if z.ID == 0 {
		z.ID = s.nextID
		s.nextID++
	}
	s.zones[z.ID] = z
	return z.ID
}

func (s *Store) AddCard(c model.Card) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.nextID
		s.nextID++
	}
	s.cards[c.ID] = c
	s.cardByHash[c.UIDHash] = c.ID
	return c.ID
}

func (s *Store) Grant(userID, zoneID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grantKey{userID, zoneID}] = struct{}{}
}

func (s *Store) AddPolicy(p model.Policy) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextID
		s.nextID++
	}
	s.policies[p.ZoneID] = append(s.policies[p.ZoneID], p)
	return p.ID
}

// Card returns a copy of the card with the given id. Test helper.
func (s *Store) Card(id int64) (model.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	return c, ok
}

// Zone returns a copy of the zone with the given id. Test helper.
func (s *Store) Zone(id int64) (model.Zone, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.zones[id]
	return z, ok
}

// Logs returns a copy of every audit entry, oldest first. Test helper.
func (s *Store) Logs() []model.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.LogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}

// ── TapStore ─────────────────────────────────────────────────────────────────

func (s *Store) Tap(ctx context.Context, fn func(tx store.TapTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		s:           s,
		stagedCards: make(map[int64]model.Card),
		stagedZones: make(map[int64]model.Zone),
		stagedUsers: make(map[int64]model.User),
		stagedLogUp: make(map[string]model.LogEntry),
	}
	if err := fn(tx); err != nil {
		return err
	}

	// Commit staged writes.
	for id, c := range tx.stagedCards {
		s.cards[id] = c
	}
	for id, z := range tx.stagedZones {
		s.zones[id] = z
	}
	for id, u := range tx.stagedUsers {
		s.users[id] = u
	}
	for id, e := range tx.stagedLogUp {
		s.logs[s.logIndex[id]] = e
	}
	for _, e := range tx.stagedAppends {
		s.logIndex[e.ID] = len(s.logs)
		s.logs = append(s.logs, e)
	}
	return nil
}

type memTx struct {
	s *Store

	stagedCards   map[int64]model.Card
	stagedZones   map[int64]model.Zone
	stagedUsers   map[int64]model.User
	stagedAppends []model.LogEntry
	stagedLogUp   map[string]model.LogEntry
}

func (t *memTx) CardByUIDHash(hash string) (*model.Card, error) {
	id, ok := t.s.cardByHash[hash]
	if !ok {
		return nil, nil
	}
	if c, ok := t.stagedCards[id]; ok {
		return &c, nil
	}
	c := t.s.cards[id]
	return &c, nil
}

func (t *memTx) ZoneByID(id int64) (*model.Zone, error) {
	if z, ok := t.stagedZones[id]; ok {
		return &z, nil
	}
	z, ok := t.s.zones[id]
	if !ok {
		return nil, nil
	}
	return &z, nil
}

func (t *memTx) UserByID(id int64) (*model.User, error) {
	if u, ok := t.stagedUsers[id]; ok {
		return &u, nil
	}
	u, ok := t.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (t *memTx) UserHasZoneGrant(userID, zoneID int64) (bool, error) {
	_, ok := t.s.grants[grantKey{userID, zoneID}]
	return ok, nil
}

func (t *memTx) ActivePoliciesForZone(zoneID int64) ([]model.Policy, error) {
	var out []model.Policy
	for _, p := range t.s.policies[zoneID] {
		if p.Active {
			out = append(out, p)
		}
	}
	// Descending priority, matching the sqlite query.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Priority > out[j-1].Priority; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (t *memTx) LogByID(id string) (*model.LogEntry, error) {
	if e, ok := t.stagedLogUp[id]; ok {
		return &e, nil
	}
	idx, ok := t.s.logIndex[id]
	if !ok {
		return nil, nil
	}
	e := t.s.logs[idx]
	return &e, nil
}

func (t *memTx) SaveCard(c *model.Card) error {
	t.stagedCards[c.ID] = *c
	return nil
}

func (t *memTx) SaveZone(z *model.Zone) error {
	t.stagedZones[z.ID] = *z
	return nil
}

func (t *memTx) SaveUser(u *model.User) error {
	t.stagedUsers[u.ID] = *u
	return nil
}

func (t *memTx) AppendLog(e *model.LogEntry) error {
	t.stagedAppends = append(t.stagedAppends, *e)
	return nil
}

func (t *memTx) UpdateLog(e *model.LogEntry) error {
	t.stagedLogUp[e.ID] = *e
	return nil
}
