package link

import (
	"sync"
	"time"

	"GroundLink/internal/metrics"
	"GroundLink/internal/transport"
)

// queueDepth bounds each controller's inbound queue. A full queue drops
// the frame; the wait on the other side is timeout-bounded, so a dropped
// acknowledgement degrades to a timeout retry.
const queueDepth = 16

// waitPoll is the inner pop timeout inside wait
const waitPoll = 100 * time.Millisecond

type queuedFrame struct {
	name  string
	frame *transport.Frame
}

// reservations brokers short-term exclusive ownership of a MAVLink
// message name by a controller. While a name is reserved, the router
// hands matching frames to the owning controller's queue instead of the
// passive listeners.
type reservations struct {
	mu       sync.Mutex
	reserved map[string]string           // message name -> owning controller
	queues   map[string]chan queuedFrame // controller -> inbound queue
}

func newReservations() *reservations {
	return &reservations{
		reserved: make(map[string]string),
		queues:   make(map[string]chan queuedFrame),
	}
}

// must be called with mu held
func (r *reservations) queueLocked(controller string) chan queuedFrame {
	q, ok := r.queues[controller]
	if !ok {
		q = make(chan queuedFrame, queueDepth)
		r.queues[controller] = q
	}
	return q
}

// reserve claims a message name for a controller. Returns false when the
// name is already owned.
func (r *reservations) reserve(name, controller string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.reserved[name]; taken {
		return false
	}
	r.reserved[name] = controller
	r.queueLocked(controller)
	return true
}

// release gives the name back and replaces the controller's queue with a
// fresh one. Frames still queued are discarded; reservations are always
// released at the end of a command, so nothing else is waiting on them.
func (r *reservations) release(name, controller string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.reserved[name] == controller {
		delete(r.reserved, name)
	}
	r.queues[controller] = make(chan queuedFrame, queueDepth)
}

// deliver routes a frame to the queue of the controller owning its name.
// Returns true when the name was reserved, whether or not the enqueue
// succeeded; the router must then keep the frame away from the passive
// path.
func (r *reservations) deliver(frame *transport.Frame) bool {
	r.mu.Lock()
	controller, ok := r.reserved[frame.Name]
	if !ok {
		r.mu.Unlock()
		return false
	}
	q := r.queueLocked(controller)
	r.mu.Unlock()

	select {
	case q <- queuedFrame{name: frame.Name, frame: frame}:
	default:
		metrics.Global.IncDropped(frame.Name)
	}
	return true
}

// wait pops the controller's queue until a frame with the given name
// passes the accept predicate or the budget expires. Frames with other
// names and predicate rejections are dropped and the wait continues.
// Returns nil on expiry.
func (r *reservations) wait(name, controller string, timeout time.Duration, accept func(*transport.Frame) bool) *transport.Frame {
	r.mu.Lock()
	q := r.queueLocked(controller)
	r.mu.Unlock()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		select {
		case qf := <-q:
			if qf.name != name {
				continue
			}
			if accept != nil && !accept(qf.frame) {
				continue
			}
			return qf.frame
		case <-time.After(waitPoll):
		}
	}
	return nil
}
