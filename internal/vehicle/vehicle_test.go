package vehicle

import (
	"testing"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
)

func heartbeat(t common.MAV_TYPE, armed bool, mode uint32) *common.MessageHeartbeat {
	hb := &common.MessageHeartbeat{
		Type:         t,
		Autopilot:    common.MAV_AUTOPILOT_ARDUPILOTMEGA,
		CustomMode:   mode,
		SystemStatus: common.MAV_STATE_ACTIVE,
	}
	if armed {
		hb.BaseMode = common.MAV_MODE_FLAG_SAFETY_ARMED
	}
	return hb
}

func TestRecordHeartbeat(t *testing.T) {
	rec := NewRecord(1, 1, common.MAV_TYPE_QUADROTOR)
	if rec.Class != ClassCopter {
		t.Fatalf("class = %s, want copter", rec.Class)
	}
	if rec.Armed() {
		t.Fatal("new record should be disarmed")
	}

	rec.ApplyHeartbeat(heartbeat(common.MAV_TYPE_QUADROTOR, true, 4))
	if !rec.Armed() {
		t.Error("armed bit not applied")
	}
	if rec.FlightMode() != 4 {
		t.Errorf("flight mode = %d, want 4", rec.FlightMode())
	}

	rec.ApplyHeartbeat(heartbeat(common.MAV_TYPE_QUADROTOR, false, 5))
	if rec.Armed() {
		t.Error("disarm not applied")
	}
}

func TestRecordTelemetry(t *testing.T) {
	rec := NewRecord(1, 1, common.MAV_TYPE_QUADROTOR)

	rec.ApplyVfrHud(&common.MessageVfrHud{Groundspeed: 12.5, Alt: 40})
	if rec.GroundSpeed() != 12.5 {
		t.Errorf("ground speed = %v, want 12.5", rec.GroundSpeed())
	}
	if rec.Altitude() != 40 {
		t.Errorf("altitude = %v, want 40", rec.Altitude())
	}

	rec.ApplySysStatus(&common.MessageSysStatus{VoltageBattery: 12600, CurrentBattery: 1550})
	volts, curr := rec.Battery()
	if volts != 12.6 {
		t.Errorf("volts = %v, want 12.6", volts)
	}
	if curr != 15.5 {
		t.Errorf("current = %v, want 15.5", curr)
	}
}

func TestWaitArmed(t *testing.T) {
	rec := NewRecord(1, 1, common.MAV_TYPE_QUADROTOR)

	// already satisfied: returns without waiting
	if !rec.WaitArmed(false, 10*time.Millisecond) {
		t.Fatal("WaitArmed(false) should succeed immediately on a disarmed record")
	}

	done := make(chan bool, 1)
	go func() {
		done <- rec.WaitArmed(true, time.Second)
	}()

	time.Sleep(20 * time.Millisecond)
	rec.ApplyHeartbeat(heartbeat(common.MAV_TYPE_QUADROTOR, true, 0))

	select {
	case ok := <-done:
		if !ok {
			t.Fatal("waiter should have seen the arm transition")
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never woke up")
	}

	// timeout path
	if rec.WaitArmed(false, 50*time.Millisecond) {
		t.Fatal("WaitArmed(false) should time out on an armed record")
	}
}

func TestModeLookups(t *testing.T) {
	rec := NewRecord(1, 1, common.MAV_TYPE_QUADROTOR)

	name, ok := rec.ModeName(4)
	if !ok || name != "GUIDED" {
		t.Errorf("ModeName(4) = %q,%v, want GUIDED", name, ok)
	}
	if _, ok := rec.ModeName(99); ok {
		t.Error("ModeName(99) should fail for copter")
	}

	mode, ok := rec.ModeByName("guided")
	if !ok || mode != 4 {
		t.Errorf("ModeByName(guided) = %d,%v, want 4", mode, ok)
	}
	if _, ok := rec.ModeByName("WARP"); ok {
		t.Error("ModeByName(WARP) should fail")
	}
}

func TestRegistryDiscovery(t *testing.T) {
	reg := NewRegistry()

	// autopilot component with a known class: created
	if rec := reg.UpsertOnHeartbeat(1, 1, heartbeat(common.MAV_TYPE_QUADROTOR, false, 0), true); rec == nil {
		t.Fatal("expected a record for a quadrotor heartbeat")
	}
	// non-autopilot component: rejected
	if rec := reg.UpsertOnHeartbeat(3, 190, heartbeat(common.MAV_TYPE_QUADROTOR, false, 0), true); rec != nil {
		t.Error("non-autopilot component should be rejected")
	}
	// unknown class: rejected
	if rec := reg.UpsertOnHeartbeat(4, 1, heartbeat(common.MAV_TYPE_GCS, false, 0), true); rec != nil {
		t.Error("unknown vehicle class should be rejected")
	}
	// outside the discovery window: no creation
	if rec := reg.UpsertOnHeartbeat(5, 1, heartbeat(common.MAV_TYPE_FIXED_WING, false, 0), false); rec != nil {
		t.Error("creation outside the discovery window should be refused")
	}
	if reg.Contains(5) {
		t.Error("vehicle 5 should not have been added")
	}

	// same system id again: update, not another record
	reg.UpsertOnHeartbeat(1, 1, heartbeat(common.MAV_TYPE_QUADROTOR, true, 6), true)
	if reg.Len() != 1 {
		t.Fatalf("registry len = %d, want 1", reg.Len())
	}
	rec, _ := reg.Get(1)
	if !rec.Armed() || rec.FlightMode() != 6 {
		t.Error("update heartbeat not applied to existing record")
	}
	if rec.Class != ClassCopter {
		t.Error("class must not change after creation")
	}
}

func TestRegistryOrder(t *testing.T) {
	reg := NewRegistry()
	reg.UpsertOnHeartbeat(7, 1, heartbeat(common.MAV_TYPE_QUADROTOR, false, 0), true)
	reg.UpsertOnHeartbeat(2, 1, heartbeat(common.MAV_TYPE_FIXED_WING, false, 0), true)
	reg.UpsertOnHeartbeat(5, 1, heartbeat(common.MAV_TYPE_GROUND_ROVER, false, 0), true)

	got := reg.List()
	want := []uint8{7, 2, 5}
	if len(got) != len(want) {
		t.Fatalf("list len = %d, want %d", len(got), len(want))
	}
	for i, rec := range got {
		if rec.SystemID != want[i] {
			t.Errorf("list[%d] = %d, want %d", i, rec.SystemID, want[i])
		}
	}
}
