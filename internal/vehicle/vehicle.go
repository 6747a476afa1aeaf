// Package vehicle tracks the per-system state derived from the
// telemetry stream: one Record per observed system id, collected in a
// Registry that is populated during discovery and updated by the router.
package vehicle

import (
	"fmt"
	"sync"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
)

// Record holds the most recent derived state for one vehicle.
// SystemID, ComponentID, TypeRaw, Class and the mode map are fixed at
// creation; the rest follows the telemetry stream.
type Record struct {
	SystemID    uint8
	ComponentID uint8
	TypeRaw     common.MAV_TYPE
	Class       Class

	modeMap map[uint32]string

	mu          sync.RWMutex
	armed       bool
	flightMode  uint32
	groundSpeed float64
	altitude    float64
	battVolts   float64
	battCurr    float64
	armedCh     chan struct{} // closed and replaced on every armed flip
}

// NewRecord creates a record for a discovered vehicle. The mode map is
// resolved once from the class and cached on the record.
func NewRecord(systemID, componentID uint8, typeRaw common.MAV_TYPE) *Record {
	class := ClassFromMavType(typeRaw)
	return &Record{
		SystemID:    systemID,
		ComponentID: componentID,
		TypeRaw:     typeRaw,
		Class:       class,
		modeMap:     ModeMap(class),
		armedCh:     make(chan struct{}),
	}
}

// ApplyHeartbeat updates the armed flag and flight mode from a heartbeat
func (r *Record) ApplyHeartbeat(hb *common.MessageHeartbeat) {
	armed := hb.BaseMode&common.MAV_MODE_FLAG_SAFETY_ARMED != 0

	r.mu.Lock()
	r.flightMode = hb.CustomMode
	if armed != r.armed {
		r.armed = armed
		close(r.armedCh)
		r.armedCh = make(chan struct{})
	}
	r.mu.Unlock()
}

// ApplyVfrHud updates ground speed and altitude from a VFR_HUD frame
func (r *Record) ApplyVfrHud(m *common.MessageVfrHud) {
	r.mu.Lock()
	r.groundSpeed = float64(m.Groundspeed)
	r.altitude = float64(m.Alt)
	r.mu.Unlock()
}

// ApplySysStatus updates battery voltage and current from SYS_STATUS
func (r *Record) ApplySysStatus(m *common.MessageSysStatus) {
	r.mu.Lock()
	r.battVolts = float64(m.VoltageBattery) / 1000.0
	r.battCurr = float64(m.CurrentBattery) / 100.0
	r.mu.Unlock()
}

// Armed reports the armed flag from the most recent heartbeat
func (r *Record) Armed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.armed
}

// FlightMode reports the custom mode from the most recent heartbeat
func (r *Record) FlightMode() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.flightMode
}

// GroundSpeed reports the most recent VFR_HUD ground speed in m/s
func (r *Record) GroundSpeed() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.groundSpeed
}

// Altitude reports the most recent VFR_HUD altitude in meters
func (r *Record) Altitude() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.altitude
}

// Battery reports the most recent SYS_STATUS voltage and current
func (r *Record) Battery() (volts, curr float64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.battVolts, r.battCurr
}

// WaitArmed blocks until the armed flag equals want or the timeout
// elapses. Returns true when the state was reached.
func (r *Record) WaitArmed(want bool, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		r.mu.RLock()
		armed, ch := r.armed, r.armedCh
		r.mu.RUnlock()

		if armed == want {
			return true
		}
		select {
		case <-ch:
		case <-deadline.C:
			return false
		}
	}
}

// ModeName resolves a custom-mode number through the class mode table
func (r *Record) ModeName(mode uint32) (string, bool) {
	name, ok := r.modeMap[mode]
	return name, ok
}

// ModeByName resolves a human mode name to its custom-mode number,
// case-insensitively
func (r *Record) ModeByName(name string) (uint32, bool) {
	return lookupModeByName(r.modeMap, name)
}

func (r *Record) String() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mode := fmt.Sprintf("mode %d", r.flightMode)
	if name, ok := r.modeMap[r.flightMode]; ok {
		mode = name
	}
	state := "disarmed"
	if r.armed {
		state = "armed"
	}
	return fmt.Sprintf("%s %d:%d (%s, %s)", r.Class, r.SystemID, r.ComponentID, mode, state)
}
