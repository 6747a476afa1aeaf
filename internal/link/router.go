package link

import (
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"

	"GroundLink/internal/logger"
	"GroundLink/internal/metrics"
)

// routeIncoming is the reader/router worker: every inbound frame updates
// the vehicle cache and is then handed either to the reserved
// controller's queue or to the passive buffer, never both. TIMESYNC is
// answered in place and never travels upstream.
func (l *Link) routeIncoming() {
	defer l.wg.Done()

	for l.active() {
		frame, err := l.transport.Recv(time.Second)
		if err != nil {
			logger.Error("Radio link disconnected: %v", err)
			return
		}
		if frame == nil {
			continue
		}

		if !l.registry.Contains(frame.SystemID) {
			// ignore strangers
			metrics.Global.IncIgnored()
			continue
		}
		metrics.Global.IncReceived(frame.Name)

		switch m := frame.Message.(type) {
		case *common.MessageTimesync:
			l.replyTimesync(m)
			continue
		case *common.MessageStatustext:
			logger.Info("%d: %s", frame.SystemID, m.Text)
		case *common.MessageHeartbeat:
			l.registry.UpsertOnHeartbeat(frame.SystemID, frame.ComponentID, m, false)
		case *common.MessageVfrHud:
			if rec, ok := l.registry.Get(frame.SystemID); ok {
				rec.ApplyVfrHud(m)
			}
		case *common.MessageSysStatus:
			if rec, ok := l.registry.Get(frame.SystemID); ok {
				rec.ApplySysStatus(m)
			}
		}

		// reserved takes priority over the passive path
		if l.res.deliver(frame) {
			continue
		}

		l.listenersMu.Lock()
		_, listening := l.listeners[frame.Name]
		l.listenersMu.Unlock()
		if listening {
			l.passive.put(queuedFrame{name: frame.Name, frame: frame})
		}
	}
}

// replyTimesync answers a vehicle's TIMESYNC with our local clock
func (l *Link) replyTimesync(m *common.MessageTimesync) {
	reply := &common.MessageTimesync{
		Tc1: time.Now().UnixNano(),
		Ts1: m.Ts1,
	}
	if err := l.transport.Send(reply); err != nil {
		logger.Error("Failed to reply to TIMESYNC: %v", err)
		return
	}
	metrics.Global.IncTimesyncSent()
}

// emitHeartbeats announces this GCS on the link once per second
func (l *Link) emitHeartbeats() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			err := l.transport.Send(&common.MessageHeartbeat{
				Type:         common.MAV_TYPE_GCS,
				Autopilot:    common.MAV_AUTOPILOT_INVALID,
				BaseMode:     0,
				CustomMode:   0,
				SystemStatus: common.MAV_STATE_ACTIVE,
			})
			if err != nil {
				logger.Error("Failed to send heartbeat: %v", err)
				continue
			}
			metrics.Global.IncHeartbeatSent()
		}
	}
}

// dispatchPassive drains the passive buffer and runs the registered
// callback synchronously. A frame whose listener vanished between
// enqueue and dequeue is logged and dropped.
func (l *Link) dispatchPassive() {
	defer l.wg.Done()

	for l.active() {
		qf, ok := l.passive.pop(time.Second)
		if !ok {
			continue
		}

		l.listenersMu.Lock()
		cb, exists := l.listeners[qf.name]
		l.listenersMu.Unlock()

		if !exists {
			logger.Error("Could not execute message listener for %s", qf.name)
			continue
		}
		cb(qf.frame)
	}
}
