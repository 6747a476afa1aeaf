// Package link is the radio link multiplexer. It owns the single
// MAVLink transport, runs the read/route, heartbeat and passive-dispatch
// workers, maintains the vehicle registry, and brokers the COMMAND_ACK
// reservation that command executors use to correlate responses.
package link

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/google/uuid"

	"GroundLink/config"
	"GroundLink/internal/logger"
	"GroundLink/internal/metrics"
	"GroundLink/internal/transport"
	"GroundLink/internal/vehicle"
)

// Message names the router cares about
const (
	msgHeartbeat  = "HEARTBEAT"
	msgVfrHud     = "VFR_HUD"
	msgSysStatus  = "SYS_STATUS"
	msgStatustext = "STATUSTEXT"
	msgTimesync   = "TIMESYNC"
	msgCommandAck = "COMMAND_ACK"
)

// State is the link lifecycle state
type State int32

const (
	StateOpening State = iota
	StateDiscovering
	StateRunning
	StateClosing
	StateClosed
)

// ErrNoHeartbeats means the discovery window elapsed without a single
// usable heartbeat; the link is closed.
var ErrNoHeartbeats = errors.New("no heartbeats received on the link")

// ProgressFunc receives discovery progress updates: one Result with a
// Message per newly seen vehicle, and one with Data holding the seconds
// waited for every elapsed second of the window.
type ProgressFunc func(Result)

// Listener is a passive telemetry callback
type Listener func(*transport.Frame)

// Options tune the link timings. Zero values take the defaults.
type Options struct {
	DiscoveryWindow time.Duration // default 5s
	CommandTimeout  time.Duration // default 3s
	CloseTimeout    time.Duration // worker join budget, default 3s
	Progress        ProgressFunc
}

// Link multiplexes one MAVLink transport between telemetry listeners and
// command executors.
type Link struct {
	transport transport.Transport
	registry  *vehicle.Registry
	res       *reservations

	// one controller id per link; executors reusing it serialise on the
	// COMMAND_ACK reservation, which doubles as command throttling
	controllerID string

	discoveryWindow time.Duration
	commandTimeout  time.Duration
	closeTimeout    time.Duration
	progress        ProgressFunc

	listenersMu sync.Mutex
	listeners   map[string]Listener

	passive *frameQueue

	state  atomic.Int32
	stopCh chan struct{}
	wg     sync.WaitGroup

	closeOnce sync.Once
}

// New creates a link over an already-open transport. Call Start to run
// discovery and bring up the workers.
func New(t transport.Transport, opts Options) *Link {
	if opts.DiscoveryWindow <= 0 {
		opts.DiscoveryWindow = 5 * time.Second
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = 3 * time.Second
	}
	if opts.CloseTimeout <= 0 {
		opts.CloseTimeout = 3 * time.Second
	}

	l := &Link{
		transport:       t,
		registry:        vehicle.NewRegistry(),
		res:             newReservations(),
		controllerID:    uuid.NewString(),
		discoveryWindow: opts.DiscoveryWindow,
		commandTimeout:  opts.CommandTimeout,
		closeTimeout:    opts.CloseTimeout,
		progress:        opts.Progress,
		listeners:       make(map[string]Listener),
		passive:         newFrameQueue(),
		stopCh:          make(chan struct{}),
	}
	l.setState(StateOpening)
	return l
}

// Open opens the configured transport, runs discovery and starts the
// link workers. On any failure the transport is closed and an error is
// returned; the caller owns no workers.
func Open(cfg *config.Config, progress ProgressFunc) (*Link, error) {
	logger.Info("Initialising radio link on %s", cfg.GetAddress())

	ad, err := transport.Open(cfg.Link.URL, cfg.Link.Baud)
	if err != nil {
		return nil, fmt.Errorf("failed to open radio link: %w", err)
	}

	l := New(ad, Options{
		DiscoveryWindow: time.Duration(cfg.Timeouts.Discovery) * time.Second,
		CommandTimeout:  time.Duration(cfg.Timeouts.Command) * time.Second,
		CloseTimeout:    time.Duration(cfg.Timeouts.Close) * time.Second,
		Progress:        progress,
	})
	if err := l.Start(); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

// Start listens for initial heartbeats and, when at least one vehicle
// was discovered, launches the router, heartbeat and passive-dispatch
// workers. Returns ErrNoHeartbeats when the window elapses empty.
func (l *Link) Start() error {
	l.setState(StateDiscovering)

	if err := l.discover(); err != nil {
		return err
	}

	l.wg.Add(3)
	go l.routeIncoming()
	go l.emitHeartbeats()
	go l.dispatchPassive()

	l.setState(StateRunning)
	logger.Info("Radio link running with %d vehicle(s)", l.registry.Len())
	return nil
}

// discover runs the initial-heartbeat window: heartbeats create vehicle
// records, and the progress callback is fed one update per new vehicle
// plus one tick per elapsed second.
func (l *Link) discover() error {
	logger.Info("Listening for initial heartbeats for %v", l.discoveryWindow)

	start := time.Now()
	lastTick := start
	secondsWaited := 1

	for time.Since(start) < l.discoveryWindow {
		frame, err := l.transport.Recv(200 * time.Millisecond)
		if err != nil {
			logger.Error("Radio link lost during discovery: %v", err)
			break
		}

		if frame != nil && frame.Name == msgHeartbeat {
			hb := frame.Message.(*common.MessageHeartbeat)
			rec := l.registry.UpsertOnHeartbeat(frame.SystemID, frame.ComponentID, hb, true)
			if rec != nil {
				logger.Info("New vehicle added: %s", rec)
				metrics.Global.SetVehiclesKnown(l.registry.Len())
				if l.progress != nil {
					l.progress(Result{
						Success: true,
						Message: fmt.Sprintf("Heartbeat received from %s: %d:%d", rec.Class, rec.SystemID, rec.ComponentID),
					})
				}
			}
		}

		if time.Since(lastTick) > time.Second {
			secondsWaited++
			lastTick = time.Now()
			if l.progress != nil {
				l.progress(Result{Success: true, Data: secondsWaited})
			}
		}
	}

	if l.registry.Len() == 0 {
		logger.Error("Failed to establish initial heartbeat")
		return ErrNoHeartbeats
	}
	return nil
}

// AddMessageListener registers a passive callback for a message name.
// The first registration wins; a second one for the same name is refused.
func (l *Link) AddMessageListener(name string, cb Listener) bool {
	l.listenersMu.Lock()
	defer l.listenersMu.Unlock()

	if _, exists := l.listeners[name]; exists {
		return false
	}
	l.listeners[name] = cb
	return true
}

// RemoveMessageListener drops the passive callback for a message name
func (l *Link) RemoveMessageListener(name string) bool {
	l.listenersMu.Lock()
	defer l.listenersMu.Unlock()

	if _, exists := l.listeners[name]; !exists {
		return false
	}
	delete(l.listeners, name)
	return true
}

func (l *Link) clearMessageListeners() {
	l.listenersMu.Lock()
	defer l.listenersMu.Unlock()
	l.listeners = make(map[string]Listener)
}

// ListVehicles returns the known vehicles in discovery order
func (l *Link) ListVehicles() []VehicleInfo {
	records := l.registry.List()
	out := make([]VehicleInfo, 0, len(records))
	for _, rec := range records {
		out = append(out, VehicleInfo{
			SystemID:    rec.SystemID,
			ComponentID: rec.ComponentID,
			VehicleType: string(rec.Class),
		})
	}
	return out
}

// Vehicle returns the live record for a system id
func (l *Link) Vehicle(systemID uint8) (*vehicle.Record, bool) {
	return l.registry.Get(systemID)
}

// State returns the current lifecycle state
func (l *Link) State() State {
	return State(l.state.Load())
}

func (l *Link) setState(s State) {
	l.state.Store(int32(s))
	metrics.Global.SetLinkState(int(s))
}

func (l *Link) running() bool {
	return l.State() == StateRunning
}

func (l *Link) active() bool {
	select {
	case <-l.stopCh:
		return false
	default:
		return true
	}
}

// Close flips the active flag, joins the workers within the close budget
// and shuts the transport. Safe to call more than once.
func (l *Link) Close() {
	l.closeOnce.Do(func() {
		l.setState(StateClosing)
		l.clearMessageListeners()
		close(l.stopCh)

		done := make(chan struct{})
		go func() {
			l.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(l.closeTimeout):
			logger.Warn("Timed out waiting for link workers to stop")
		}

		l.transport.Close()
		l.setState(StateClosed)
		logger.Info("Radio link closed")
	})
}
