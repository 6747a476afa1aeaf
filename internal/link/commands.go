package link

import (
	"fmt"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"

	"GroundLink/internal/logger"
	"GroundLink/internal/metrics"
	"GroundLink/internal/transport"
	"GroundLink/internal/vehicle"
)

// forceMagic is the ArduPilot magic value for param2 of
// COMPONENT_ARM_DISARM that bypasses the arming checks.
const forceMagic = 21196

var notReady = Result{Message: "Link not ready"}

// awaitAck sends a COMMAND_LONG to a vehicle and waits for the matching
// COMMAND_ACK. The caller must hold the COMMAND_ACK reservation. A nil
// ack with a nil error means the wait timed out.
func (l *Link) awaitAck(systemID uint8, cmd common.MAV_CMD, p [7]float32) (*common.MessageCommandAck, error) {
	msg := &common.MessageCommandLong{
		TargetSystem:    systemID,
		TargetComponent: uint8(common.MAV_COMP_ID_AUTOPILOT1),
		Command:         cmd,
		Confirmation:    0,
		Param1:          p[0],
		Param2:          p[1],
		Param3:          p[2],
		Param4:          p[3],
		Param5:          p[4],
		Param6:          p[5],
		Param7:          p[6],
	}
	if err := l.transport.Send(msg); err != nil {
		logger.Error("Failed to send command %d to vehicle %d: %v", cmd, systemID, err)
		return nil, err
	}

	frame := l.res.wait(msgCommandAck, l.controllerID, l.commandTimeout, func(f *transport.Frame) bool {
		ack, ok := f.Message.(*common.MessageCommandAck)
		return ok && f.SystemID == systemID && ack.Command == cmd
	})
	if frame == nil {
		return nil, nil
	}
	return frame.Message.(*common.MessageCommandAck), nil
}

// ackAccepted requires a present response for the same command with
// MAV_RESULT_ACCEPTED; everything else reads as rejection.
func ackAccepted(ack *common.MessageCommandAck, cmd common.MAV_CMD) bool {
	if ack == nil {
		logger.Warn("No response, cannot check if command %d accepted", cmd)
		return false
	}
	if ack.Command != cmd {
		logger.Warn("Command %d does not match response command %d", cmd, ack.Command)
		return false
	}
	if ack.Result != common.MAV_RESULT_ACCEPTED {
		logger.Warn("Command %d not accepted, result: %d", cmd, ack.Result)
		return false
	}
	return true
}

// ArmVehicle arms one vehicle and waits for its heartbeat to confirm
func (l *Link) ArmVehicle(systemID uint8, force bool) Result {
	res := l.armDisarm(systemID, force, true)
	metrics.Global.IncCommand("arm", res.Success)
	return res
}

// DisarmVehicle disarms one vehicle and waits for its heartbeat to confirm
func (l *Link) DisarmVehicle(systemID uint8, force bool) Result {
	res := l.armDisarm(systemID, force, false)
	metrics.Global.IncCommand("disarm", res.Success)
	return res
}

func (l *Link) armDisarm(systemID uint8, force, arm bool) Result {
	verb := "disarm"
	if arm {
		verb = "arm"
	}

	if !l.running() {
		return notReady
	}
	if !l.res.reserve(msgCommandAck, l.controllerID) {
		return Result{Message: fmt.Sprintf("Could not reserve COMMAND_ACK to %s vehicle %d", verb, systemID)}
	}
	defer l.res.release(msgCommandAck, l.controllerID)

	rec, ok := l.registry.Get(systemID)
	if !ok {
		return Result{Message: fmt.Sprintf("Vehicle %d not found", systemID)}
	}

	var p1, p2 float32
	if arm {
		p1 = 1
	}
	if force {
		p2 = forceMagic
	}

	ack, err := l.awaitAck(systemID, common.MAV_CMD_COMPONENT_ARM_DISARM, [7]float32{p1, p2})
	if err != nil {
		return Result{Message: fmt.Sprintf("Could not %s, serial exception", verb)}
	}
	if !ackAccepted(ack, common.MAV_CMD_COMPONENT_ARM_DISARM) {
		return Result{Message: fmt.Sprintf("Could not %s, command not accepted", verb)}
	}

	if !rec.WaitArmed(arm, l.commandTimeout) {
		return Result{Message: fmt.Sprintf("Could not %s, vehicle state did not update", verb)}
	}

	if arm {
		return Result{Success: true, Message: "Armed successfully"}
	}
	return Result{Success: true, Message: "Disarmed successfully"}
}

// SetFlightMode switches one vehicle to the given custom mode. The mode
// must exist in the vehicle's mode table; otherwise nothing is sent.
func (l *Link) SetFlightMode(systemID uint8, mode uint32) Result {
	res := l.setFlightMode(systemID, mode)
	metrics.Global.IncCommand("set_flight_mode", res.Success)
	return res
}

func (l *Link) setFlightMode(systemID uint8, mode uint32) Result {
	if !l.running() {
		return notReady
	}
	if !l.res.reserve(msgCommandAck, l.controllerID) {
		return Result{Message: fmt.Sprintf("Could not reserve COMMAND_ACK to set flight mode on vehicle %d", systemID)}
	}
	defer l.res.release(msgCommandAck, l.controllerID)

	rec, ok := l.registry.Get(systemID)
	if !ok {
		return Result{Message: fmt.Sprintf("Vehicle %d not found", systemID)}
	}

	name, ok := rec.ModeName(mode)
	if !ok {
		return Result{Message: fmt.Sprintf("Vehicle %d has no flight mode %d", systemID, mode)}
	}

	// param1 = MAV_MODE_FLAG_CUSTOM_MODE_ENABLED, param2 = custom mode
	ack, err := l.awaitAck(systemID, common.MAV_CMD_DO_SET_MODE, [7]float32{1, float32(mode)})
	if err != nil {
		return Result{Message: "Could not set flight mode, serial exception"}
	}
	if !ackAccepted(ack, common.MAV_CMD_DO_SET_MODE) {
		return Result{Message: "Could not set flight mode, command not accepted"}
	}
	return Result{Success: true, Message: fmt.Sprintf("Flight mode set to %s", name)}
}

// CopterTakeoff switches a copter to GUIDED and commands a takeoff to
// the given altitude in meters.
func (l *Link) CopterTakeoff(systemID uint8, altitude float32) Result {
	res := l.copterTakeoff(systemID, altitude)
	metrics.Global.IncCommand("takeoff", res.Success)
	return res
}

func (l *Link) copterTakeoff(systemID uint8, altitude float32) Result {
	if !l.running() {
		return notReady
	}

	rec, ok := l.registry.Get(systemID)
	if !ok {
		return Result{Message: fmt.Sprintf("Vehicle %d not found", systemID)}
	}
	if rec.Class != vehicle.ClassCopter {
		return Result{Message: "Vehicle is not a copter"}
	}

	// GUIDED first; setFlightMode takes the reservation on its own, so
	// it runs before ours is claimed
	guided, ok := rec.ModeByName("GUIDED")
	if !ok {
		return Result{Message: fmt.Sprintf("Vehicle %d has no GUIDED mode", systemID)}
	}
	if modeRes := l.setFlightMode(systemID, guided); !modeRes.Success {
		return modeRes
	}

	if !l.res.reserve(msgCommandAck, l.controllerID) {
		return Result{Message: fmt.Sprintf("Could not reserve COMMAND_ACK to take off vehicle %d", systemID)}
	}
	defer l.res.release(msgCommandAck, l.controllerID)

	ack, err := l.awaitAck(systemID, common.MAV_CMD_NAV_TAKEOFF, [7]float32{0, 0, 0, 0, 0, 0, altitude})
	if err != nil {
		return Result{Message: "Could not take off, serial exception"}
	}
	if !ackAccepted(ack, common.MAV_CMD_NAV_TAKEOFF) {
		return Result{Message: "Could not take off, command not accepted"}
	}
	return Result{Success: true, Message: fmt.Sprintf("Taking off to %.1f m", altitude)}
}

// sweep runs an operation over every vehicle in discovery order. A
// failed vehicle is logged and counted without aborting the sweep; the
// aggregate reports how many failed.
func (l *Link) sweep(verb string, op func(*vehicle.Record) Result) Result {
	if !l.running() {
		return notReady
	}

	failed := 0
	for _, rec := range l.registry.List() {
		if res := op(rec); !res.Success {
			logger.Warn("Failed to %s vehicle %d: %s", verb, rec.SystemID, res.Message)
			failed++
		}
	}
	if failed > 0 {
		return Result{
			Message: fmt.Sprintf("Failed to %s %d vehicle(s)", verb, failed),
			Data:    failed,
		}
	}
	return Result{Success: true, Message: fmt.Sprintf("All vehicles responded to %s", verb)}
}

// ArmAll arms every vehicle, one at a time
func (l *Link) ArmAll(force bool) Result {
	return l.sweep("arm", func(rec *vehicle.Record) Result {
		return l.ArmVehicle(rec.SystemID, force)
	})
}

// DisarmAll disarms every vehicle, one at a time
func (l *Link) DisarmAll(force bool) Result {
	return l.sweep("disarm", func(rec *vehicle.Record) Result {
		return l.DisarmVehicle(rec.SystemID, force)
	})
}

// SetFlightModeAll switches every vehicle to the named mode, translating
// the name through each vehicle's own mode table. A vehicle whose table
// lacks the name counts as failed without stopping the sweep.
func (l *Link) SetFlightModeAll(modeName string) Result {
	return l.sweep("set flight mode on", func(rec *vehicle.Record) Result {
		mode, ok := rec.ModeByName(modeName)
		if !ok {
			return Result{Message: fmt.Sprintf("Vehicle %d has no flight mode %q", rec.SystemID, modeName)}
		}
		return l.SetFlightMode(rec.SystemID, mode)
	})
}
