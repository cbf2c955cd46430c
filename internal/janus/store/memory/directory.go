package memory

import (
	"context"
	"sort"

	"github.com/janus-access/server/internal/janus/model"
)

func (s *Store) ListZones(_ context.Context) ([]model.Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Zone, 0, len(s.zones))
	for _, z := range s.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListUsers(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
