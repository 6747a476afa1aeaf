package vehicle

import (
	"testing"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
)

func TestClassFromMavType(t *testing.T) {
	cases := []struct {
		mavType common.MAV_TYPE
		want    Class
	}{
		{common.MAV_TYPE_QUADROTOR, ClassCopter},
		{common.MAV_TYPE_HELICOPTER, ClassCopter},
		{common.MAV_TYPE_TRICOPTER, ClassCopter},
		{common.MAV_TYPE_HEXAROTOR, ClassCopter},
		{common.MAV_TYPE_OCTOROTOR, ClassCopter},
		{common.MAV_TYPE_DECAROTOR, ClassCopter},
		{common.MAV_TYPE_DODECAROTOR, ClassCopter},
		{common.MAV_TYPE_COAXIAL, ClassCopter},
		{common.MAV_TYPE_FIXED_WING, ClassPlane},
		{common.MAV_TYPE_VTOL_TILTROTOR, ClassPlane},
		{common.MAV_TYPE_GROUND_ROVER, ClassRover},
		{common.MAV_TYPE_SURFACE_BOAT, ClassBoat},
		{common.MAV_TYPE_ANTENNA_TRACKER, ClassTracker},
		{common.MAV_TYPE_SUBMARINE, ClassSub},
		{common.MAV_TYPE_GCS, ClassUnknown},
		{common.MAV_TYPE_GENERIC, ClassUnknown},
		{common.MAV_TYPE_AIRSHIP, ClassUnknown},
	}

	for _, tc := range cases {
		if got := ClassFromMavType(tc.mavType); got != tc.want {
			t.Errorf("ClassFromMavType(%d) = %s, want %s", tc.mavType, got, tc.want)
		}
	}
}

func TestModeMapPerClass(t *testing.T) {
	for _, class := range []Class{ClassCopter, ClassPlane, ClassRover, ClassBoat, ClassTracker, ClassSub} {
		if ModeMap(class) == nil {
			t.Errorf("ModeMap(%s) = nil", class)
		}
	}
	if ModeMap(ClassUnknown) != nil {
		t.Error("ModeMap(unknown) should be nil")
	}

	// rover and boat share the firmware mode table
	if got := ModeMap(ClassBoat)[15]; got != "GUIDED" {
		t.Errorf("boat mode 15 = %q, want GUIDED", got)
	}
}
