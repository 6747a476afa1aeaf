package vehicle

import "strings"

// ArduPilot custom_mode tables, one per vehicle class. The numbers are
// the firmware's mode identifiers as carried in HEARTBEAT.custom_mode.

var copterModes = map[uint32]string{
	0:  "STABILIZE",
	1:  "ACRO",
	2:  "ALT_HOLD",
	3:  "AUTO",
	4:  "GUIDED",
	5:  "LOITER",
	6:  "RTL",
	7:  "CIRCLE",
	9:  "LAND",
	11: "DRIFT",
	13: "SPORT",
	14: "FLIP",
	15: "AUTOTUNE",
	16: "POSHOLD",
	17: "BRAKE",
	18: "THROW",
	19: "AVOID_ADSB",
	20: "GUIDED_NOGPS",
	21: "SMART_RTL",
	22: "FLOWHOLD",
	23: "FOLLOW",
	24: "ZIGZAG",
	25: "SYSTEMID",
	26: "AUTOROTATE",
	27: "AUTO_RTL",
}

var planeModes = map[uint32]string{
	0:  "MANUAL",
	1:  "CIRCLE",
	2:  "STABILIZE",
	3:  "TRAINING",
	4:  "ACRO",
	5:  "FBWA",
	6:  "FBWB",
	7:  "CRUISE",
	8:  "AUTOTUNE",
	10: "AUTO",
	11: "RTL",
	12: "LOITER",
	13: "TAKEOFF",
	14: "AVOID_ADSB",
	15: "GUIDED",
	17: "QSTABILIZE",
	18: "QHOVER",
	19: "QLOITER",
	20: "QLAND",
	21: "QRTL",
	22: "QAUTOTUNE",
	23: "QACRO",
	24: "THERMAL",
}

// Rover and boat firmware share one mode table
var roverModes = map[uint32]string{
	0:  "MANUAL",
	1:  "ACRO",
	3:  "STEERING",
	4:  "HOLD",
	5:  "LOITER",
	6:  "FOLLOW",
	7:  "SIMPLE",
	8:  "DOCK",
	10: "AUTO",
	11: "RTL",
	12: "SMART_RTL",
	15: "GUIDED",
	16: "INITIALISING",
}

var trackerModes = map[uint32]string{
	0:  "MANUAL",
	1:  "STOP",
	2:  "SCAN",
	3:  "SERVO_TEST",
	4:  "GUIDED",
	10: "AUTO",
	16: "INITIALISING",
}

var subModes = map[uint32]string{
	0:  "STABILIZE",
	1:  "ACRO",
	2:  "ALT_HOLD",
	3:  "AUTO",
	4:  "GUIDED",
	7:  "CIRCLE",
	9:  "SURFACE",
	16: "POSHOLD",
	19: "MANUAL",
	20: "MOTOR_DETECT",
	21: "SURFTRAK",
}

// ModeMap returns the custom-mode table for a class, or nil when the
// class has no table (ClassUnknown).
func ModeMap(class Class) map[uint32]string {
	switch class {
	case ClassCopter:
		return copterModes
	case ClassPlane:
		return planeModes
	case ClassRover, ClassBoat:
		return roverModes
	case ClassTracker:
		return trackerModes
	case ClassSub:
		return subModes
	default:
		return nil
	}
}

// lookupModeByName does a case-insensitive reverse lookup in a mode table
func lookupModeByName(modes map[uint32]string, name string) (uint32, bool) {
	for num, s := range modes {
		if strings.EqualFold(s, name) {
			return num, true
		}
	}
	return 0, false
}
