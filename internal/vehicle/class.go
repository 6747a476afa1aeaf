package vehicle

import (
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
)

// Class is the broad vehicle category derived from the MAV_TYPE
// reported in the first heartbeat. It never changes after discovery.
type Class string

const (
	ClassUnknown Class = "unknown"
	ClassCopter  Class = "copter"
	ClassPlane   Class = "plane"
	ClassRover   Class = "rover"
	ClassBoat    Class = "boat"
	ClassTracker Class = "tracker"
	ClassSub     Class = "sub"
)

// ClassFromMavType maps a heartbeat MAV_TYPE to a vehicle class.
// Types outside the mapping come back as ClassUnknown and no vehicle
// record is created for them.
func ClassFromMavType(t common.MAV_TYPE) Class {
	switch t {
	case common.MAV_TYPE_HELICOPTER,
		common.MAV_TYPE_TRICOPTER,
		common.MAV_TYPE_QUADROTOR,
		common.MAV_TYPE_HEXAROTOR,
		common.MAV_TYPE_OCTOROTOR,
		common.MAV_TYPE_DECAROTOR,
		common.MAV_TYPE_DODECAROTOR,
		common.MAV_TYPE_COAXIAL:
		return ClassCopter
	case common.MAV_TYPE_FIXED_WING,
		common.MAV_TYPE_VTOL_TILTROTOR:
		return ClassPlane
	case common.MAV_TYPE_GROUND_ROVER:
		return ClassRover
	case common.MAV_TYPE_SURFACE_BOAT:
		return ClassBoat
	case common.MAV_TYPE_ANTENNA_TRACKER:
		return ClassTracker
	case common.MAV_TYPE_SUBMARINE:
		return ClassSub
	default:
		return ClassUnknown
	}
}
