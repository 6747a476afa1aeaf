package transport

import (
	"testing"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
)

func TestMessageName(t *testing.T) {
	cases := []struct {
		msg  interface{ GetID() uint32 }
		want string
	}{
		{&common.MessageHeartbeat{}, "HEARTBEAT"},
		{&common.MessageVfrHud{}, "VFR_HUD"},
		{&common.MessageCommandAck{}, "COMMAND_ACK"},
		{&common.MessageCommandLong{}, "COMMAND_LONG"},
		{&common.MessageTimesync{}, "TIMESYNC"},
		{&common.MessageStatustext{}, "STATUSTEXT"},
		{&common.MessageSysStatus{}, "SYS_STATUS"},
		{&common.MessageGpsRawInt{}, "GPS_RAW_INT"},
		{&common.MessageGlobalPositionInt{}, "GLOBAL_POSITION_INT"},
	}

	for _, tc := range cases {
		if got := MessageName(tc.msg); got != tc.want {
			t.Errorf("MessageName(%T) = %q, want %q", tc.msg, got, tc.want)
		}
	}
}

func TestBuildEndpoint(t *testing.T) {
	ep, err := buildEndpoint("udp:127.0.0.1:14550", 0)
	if err != nil {
		t.Fatalf("udp endpoint: %v", err)
	}
	if udp, ok := ep.(gomavlib.EndpointUDPServer); !ok || udp.Address != "127.0.0.1:14550" {
		t.Errorf("udp endpoint = %#v", ep)
	}

	ep, err = buildEndpoint("udpout:10.0.0.1:14550", 0)
	if err != nil {
		t.Fatalf("udpout endpoint: %v", err)
	}
	if udp, ok := ep.(gomavlib.EndpointUDPClient); !ok || udp.Address != "10.0.0.1:14550" {
		t.Errorf("udpout endpoint = %#v", ep)
	}

	ep, err = buildEndpoint("/dev/ttyUSB0", 57600)
	if err != nil {
		t.Fatalf("serial endpoint: %v", err)
	}
	ser, ok := ep.(gomavlib.EndpointSerial)
	if !ok || ser.Device != "/dev/ttyUSB0" || ser.Baud != 57600 {
		t.Errorf("serial endpoint = %#v", ep)
	}

	if _, err := buildEndpoint("/dev/ttyUSB0", 0); err == nil {
		t.Error("serial without baud should be refused")
	}
	if _, err := buildEndpoint("carrier-pigeon:1", 0); err == nil {
		t.Error("unknown scheme should be refused")
	}
}
