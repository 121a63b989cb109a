package hwio

import (
	"context"

	"github.com/jochenvg/go-udev"
	"github.com/lodsb/turntable-core/internal/logx"
)

// HotplugEvent reports a udev add/remove notification for one of the I2C
// buses the production backend depends on.
type HotplugEvent struct {
	Action string // "add" or "remove"
	DevPath string
}

// WatchI2C monitors the i2c-dev subsystem for hot-plug events (an
// after-boot I2C-USB bridge appearing, for instance) and emits one
// HotplugEvent per notification until ctx is cancelled. Absent on
// platforms without udev (e.g. inside a container without /run/udev);
// the returned channel is simply never written to in that case.
func WatchI2C(ctx context.Context, log *logx.Logger) <-chan HotplugEvent {
	out := make(chan HotplugEvent)

	u := udev.Udev{}
	mon := u.NewMonitorFromNetlink("udev")
	if mon == nil {
		if log != nil {
			log.Warnf("udev monitor unavailable, hot-plug detection disabled")
		}
		close(out)
		return out
	}
	if err := mon.FilterAddMatchSubsystem("i2c-dev"); err != nil {
		if log != nil {
			log.Warnf("udev filter setup failed: %v", err)
		}
		close(out)
		return out
	}

	devCh, errCh, err := mon.DeviceChan(ctx)
	if err != nil {
		if log != nil {
			log.Warnf("udev monitor start failed: %v", err)
		}
		close(out)
		return out
	}

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errCh:
				if !ok {
					return
				}
				if log != nil {
					log.Warnf("udev monitor error: %v", err)
				}
			case d, ok := <-devCh:
				if !ok {
					return
				}
				select {
				case out <- HotplugEvent{Action: d.Action(), DevPath: d.Devpath()}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
