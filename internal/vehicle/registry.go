package vehicle

import (
	"sync"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"

	"GroundLink/internal/logger"
)

// Registry is the append-only set of vehicles seen on the link.
// Records are created during discovery and never removed; insertion
// order is preserved for fan-out sweeps.
type Registry struct {
	mu      sync.RWMutex
	records map[uint8]*Record
	order   []uint8
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[uint8]*Record),
	}
}

// UpsertOnHeartbeat applies a heartbeat to the registry. When the system
// id is unknown and allowCreate is set (the discovery window), a record
// is created, subject to the class and component checks: heartbeats from
// components other than the autopilot or with an unmapped MAV_TYPE are
// ignored. Known system ids get their armed flag and flight mode
// updated. Returns the new record when one was created.
func (reg *Registry) UpsertOnHeartbeat(systemID, componentID uint8, hb *common.MessageHeartbeat, allowCreate bool) *Record {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if rec, ok := reg.records[systemID]; ok {
		rec.ApplyHeartbeat(hb)
		return nil
	}

	if !allowCreate {
		return nil
	}
	if componentID != uint8(common.MAV_COMP_ID_AUTOPILOT1) {
		logger.Debug("Ignoring heartbeat from %d:%d, not an autopilot component", systemID, componentID)
		return nil
	}
	if ClassFromMavType(hb.Type) == ClassUnknown {
		logger.Debug("Ignoring heartbeat from %d:%d, unknown vehicle type %d", systemID, componentID, hb.Type)
		return nil
	}

	rec := NewRecord(systemID, componentID, hb.Type)
	rec.ApplyHeartbeat(hb)
	reg.records[systemID] = rec
	reg.order = append(reg.order, systemID)
	return rec
}

// Get returns the record for a system id
func (reg *Registry) Get(systemID uint8) (*Record, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	rec, ok := reg.records[systemID]
	return rec, ok
}

// Contains reports whether a system id is known
func (reg *Registry) Contains(systemID uint8) bool {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	_, ok := reg.records[systemID]
	return ok
}

// List returns all records in insertion order
func (reg *Registry) List() []*Record {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	out := make([]*Record, 0, len(reg.order))
	for _, id := range reg.order {
		out = append(out, reg.records[id])
	}
	return out
}

// Len returns the number of known vehicles
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.records)
}
