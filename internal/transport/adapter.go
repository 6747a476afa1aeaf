// Package transport wraps the MAVLink codec behind a small adapter: it
// owns the gomavlib node, converts its event stream into Frames, and
// serialises every outgoing message on a single lock so that the
// heartbeat emitter, the TIMESYNC auto-reply and command executors never
// interleave writes on the codec.
package transport

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/ardupilotmega"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/message"

	"GroundLink/internal/logger"
	"GroundLink/internal/metrics"
)

// ErrTransportClosed is returned by Recv once the codec has shut down.
// It is the fatal case: the caller must break out of its read loop.
var ErrTransportClosed = errors.New("transport closed")

// Transport is the link's view of the radio. The production
// implementation is Adapter; tests substitute a scripted fake.
type Transport interface {
	// Recv blocks for up to timeout waiting for the next frame. A nil
	// frame with a nil error means the timeout elapsed. timeout <= 0
	// blocks until a frame arrives or the transport closes.
	Recv(timeout time.Duration) (*Frame, error)
	Send(msg message.Message) error
	Close()
}

// Adapter is the gomavlib-backed Transport.
type Adapter struct {
	node *gomavlib.Node

	// serialises all writes on the codec
	sendMu sync.Mutex
}

// Open creates a MAVLink v2 node on the given URL. Serial device paths
// use the baud rate; udp:host:port listens on the given address and the
// baud is ignored.
func Open(url string, baud int) (*Adapter, error) {
	endpoint, err := buildEndpoint(url, baud)
	if err != nil {
		return nil, err
	}

	node, err := gomavlib.NewNode(gomavlib.NodeConf{
		Endpoints:        []gomavlib.EndpointConf{endpoint},
		Dialect:          ardupilotmega.Dialect,
		OutVersion:       gomavlib.V2,
		OutSystemID:      255,
		OutComponentID:   uint8(common.MAV_COMP_ID_MISSIONPLANNER),
		HeartbeatDisable: true, // the link runs its own heartbeat emitter
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MAVLink node on %s: %w", url, err)
	}

	logger.Info("MAVLink node opened on %s", url)
	return &Adapter{node: node}, nil
}

// buildEndpoint maps a link URL onto a gomavlib endpoint configuration
func buildEndpoint(url string, baud int) (gomavlib.EndpointConf, error) {
	switch {
	case strings.HasPrefix(url, "udp:"):
		return gomavlib.EndpointUDPServer{Address: strings.TrimPrefix(url, "udp:")}, nil
	case strings.HasPrefix(url, "udpout:"):
		return gomavlib.EndpointUDPClient{Address: strings.TrimPrefix(url, "udpout:")}, nil
	case strings.HasPrefix(url, "tcp:"):
		return gomavlib.EndpointTCPClient{Address: strings.TrimPrefix(url, "tcp:")}, nil
	case strings.HasPrefix(url, "/") || strings.HasPrefix(url, "COM"):
		if baud <= 0 {
			return nil, fmt.Errorf("serial link %s needs a baud rate", url)
		}
		return gomavlib.EndpointSerial{Device: url, Baud: baud}, nil
	default:
		return nil, fmt.Errorf("unsupported link URL %q", url)
	}
}

// Recv waits for the next decoded frame. Decode failures are transient:
// they are logged and the wait continues. Channel churn is logged and
// tolerated (gomavlib reconnects on its own); only the node shutting
// down is fatal.
func (a *Adapter) Recv(timeout time.Duration) (*Frame, error) {
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	for {
		select {
		case evt, ok := <-a.node.Events():
			if !ok {
				return nil, ErrTransportClosed
			}
			switch e := evt.(type) {
			case *gomavlib.EventFrame:
				return &Frame{
					SystemID:    e.SystemID(),
					ComponentID: e.ComponentID(),
					Name:        MessageName(e.Message()),
					Message:     e.Message(),
				}, nil
			case *gomavlib.EventParseError:
				logger.Debug("Parse error on link: %v", e.Error)
			case *gomavlib.EventChannelOpen:
				logger.Info("Link channel opened: %v", e.Channel)
			case *gomavlib.EventChannelClose:
				logger.Warn("Link channel closed: %v", e.Channel)
			}
		case <-timeoutCh:
			return nil, nil
		}
	}
}

// Send writes a message to all link channels under the send lock
func (a *Adapter) Send(msg message.Message) error {
	a.sendMu.Lock()
	defer a.sendMu.Unlock()

	if err := a.node.WriteMessageAll(msg); err != nil {
		metrics.Global.IncSendError()
		return fmt.Errorf("failed to send %s: %w", MessageName(msg), err)
	}
	return nil
}

// Close shuts the node down; Recv unblocks with ErrTransportClosed
func (a *Adapter) Close() {
	a.node.Close()
}
