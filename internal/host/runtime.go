// internal/host/runtime.go
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/amsky-bridge/internal/status"
	"github.com/tamzrod/amsky-bridge/internal/writer"
)

var (
	ErrStopped       = errors.New("host: runtime stopped")
	ErrConnectFailed = errors.New("host: connect failed")
)

// Output receives everything the runtime delivers to clients.
// *writer.Fanout satisfies it.
type Output interface {
	writer.Writer
	writer.PropertyWriter
}

// Config is the minimal runtime config.
type Config struct {
	DeviceName    string
	PollingPeriod time.Duration
	UpdatePeriod  time.Duration
	Logger        *slog.Logger

	// Now overrides the clock (tests).
	Now func() time.Time
}

type command struct {
	run  func() error
	done chan error
}

// Runtime hosts exactly one device. All device callbacks, timer hits and
// client commands are serialized on the goroutine running Run.
type Runtime struct {
	cfg Config
	log *slog.Logger
	dev Device
	out Output

	params  *registry
	props   map[string]*TextVector
	defined map[string]bool

	connected bool
	weather   State

	timer *time.Timer

	seenPoll   time.Time
	lastErr    error
	errorSince time.Time

	cmds    chan command
	stopped chan struct{}
}

var _ Host = (*Runtime)(nil)

// New builds a runtime and runs the device's InitProperties.
func New(cfg Config, dev Device, out Output) (*Runtime, error) {
	if dev == nil {
		return nil, errors.New("host: device required")
	}
	if out == nil {
		out = writer.NewFanout()
	}
	if cfg.DeviceName == "" {
		return nil, errors.New("host: device name required")
	}
	if cfg.PollingPeriod <= 0 {
		return nil, errors.New("host: polling period must be > 0")
	}
	if cfg.UpdatePeriod <= 0 {
		return nil, errors.New("host: update period must be > 0")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	timer := time.NewTimer(time.Hour)
	timer.Stop()

	r := &Runtime{
		cfg:     cfg,
		log:     cfg.Logger.With("device", cfg.DeviceName),
		dev:     dev,
		out:     out,
		params:  newRegistry(),
		props:   make(map[string]*TextVector),
		defined: make(map[string]bool),
		timer:   timer,
		cmds:    make(chan command),
		stopped: make(chan struct{}),
	}

	if err := dev.InitProperties(r); err != nil {
		return nil, fmt.Errorf("host: init properties: %w", err)
	}

	return r, nil
}

// Run is the event loop. It returns when ctx is done, after disconnecting
// the device if it was connected.
func (r *Runtime) Run(ctx context.Context) error {
	defer close(r.stopped)
	defer r.timer.Stop()

	update := time.NewTicker(r.cfg.UpdatePeriod)
	defer update.Stop()

	for {
		select {
		case <-ctx.Done():
			if r.connected {
				if err := r.disconnect(); err != nil {
					r.log.Warn("disconnect on shutdown failed", "error", err)
				}
			}
			return ctx.Err()

		case <-r.timer.C:
			r.dev.TimerHit()
			r.observePoll()

		case <-update.C:
			r.evaluate()
			r.publish()

		case c := <-r.cmds:
			c.done <- c.run()
		}
	}
}

// ---- client commands (any goroutine) ----

// Connect asks the device to connect and waits for the outcome.
func (r *Runtime) Connect(ctx context.Context) error {
	return r.do(ctx, r.connect)
}

// Disconnect asks the device to disconnect and waits for the outcome.
func (r *Runtime) Disconnect(ctx context.Context) error {
	return r.do(ctx, r.disconnect)
}

// NewText forwards a client write to a defined, writable text property.
func (r *Runtime) NewText(ctx context.Context, name string, names, values []string) error {
	return r.do(ctx, func() error {
		tv, ok := r.props[name]
		if !ok || !r.defined[name] {
			return fmt.Errorf("host: property %s is not defined", name)
		}
		if tv.Perm != ReadWrite {
			return fmt.Errorf("host: property %s is read-only", name)
		}
		if !r.dev.NewText(name, names, values) {
			return fmt.Errorf("host: property %s not handled by device", name)
		}
		return nil
	})
}

// Snapshot evaluates and returns the current deliverable state.
func (r *Runtime) Snapshot(ctx context.Context) (status.Snapshot, error) {
	var s status.Snapshot
	err := r.do(ctx, func() error {
		r.evaluate()
		s = r.snapshot()
		return nil
	})
	return s, err
}

func (r *Runtime) do(ctx context.Context, fn func() error) error {
	c := command{run: fn, done: make(chan error, 1)}

	select {
	case r.cmds <- c:
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once accepted the command always completes; a blocking device call
	// is not cancelled by ctx.
	return <-c.done
}

// ---- loop-side state machine ----

func (r *Runtime) connect() error {
	if r.connected {
		return nil
	}

	ok := r.dev.Connect()
	r.observePoll()
	if !ok {
		r.publish()
		return ErrConnectFailed
	}

	r.connected = true
	r.log.Info("device connected")

	r.dev.UpdateProperties(true)

	r.evaluate()
	r.publish()
	return nil
}

func (r *Runtime) disconnect() error {
	if !r.connected {
		return nil
	}

	r.timer.Stop()

	if !r.dev.Disconnect() {
		return fmt.Errorf("host: %s refused to disconnect", r.cfg.DeviceName)
	}

	r.connected = false
	r.weather = StateIdle
	r.log.Info("device disconnected")

	r.dev.UpdateProperties(false)

	r.publish()
	return nil
}

// observePoll folds the device's latest poll outcome into health tracking.
func (r *Runtime) observePoll() {
	rep, ok := r.dev.(PollReporter)
	if !ok {
		return
	}

	at, err := rep.LastPoll()
	if at.IsZero() || at.Equal(r.seenPoll) {
		return
	}
	r.seenPoll = at
	r.lastErr = err

	if err == nil {
		r.errorSince = time.Time{}
		return
	}
	if r.errorSince.IsZero() {
		r.errorSince = at
	}
}

func (r *Runtime) evaluate() {
	if !r.connected {
		r.weather = StateIdle
		return
	}

	st := r.dev.UpdateWeather()
	r.weather = worst(st, r.params.criticalState(r.cfg.Now()))
}

func (r *Runtime) publish() {
	if err := r.out.Write(r.snapshot()); err != nil {
		r.log.Warn("snapshot delivery failed", "error", err)
	}
}

func (r *Runtime) snapshot() status.Snapshot {
	now := r.cfg.Now()

	s := status.Snapshot{
		Device:    r.cfg.DeviceName,
		At:        now,
		Connected: r.connected,
		Weather:   stateCode(r.weather),
		Params:    r.params.snapshot(now),
	}

	switch {
	case !r.connected:
		s.Health = status.HealthDisabled
	case r.seenPoll.IsZero():
		s.Health = status.HealthUnknown
	case r.lastErr != nil:
		s.Health = status.HealthError
	case r.params.anyCriticalStale(now):
		s.Health = status.HealthStale
	default:
		s.Health = status.HealthOK
	}

	s.LastErrorCode = status.ErrorCode(r.lastErr)

	if !r.errorSince.IsZero() {
		secs := now.Sub(r.errorSince) / time.Second
		if secs > status.SecondsInErrorMax {
			secs = status.SecondsInErrorMax
		}
		if secs > 0 {
			s.SecondsInError = uint16(secs)
		}
	}

	return s
}

// ---- Host ----

func (r *Runtime) DeviceName() string   { return r.cfg.DeviceName }
func (r *Runtime) Logger() *slog.Logger { return r.log }

func (r *Runtime) AddParameter(name, label string, min, max float64, staleness time.Duration) {
	r.params.add(Parameter{
		Name:      name,
		Label:     label,
		Min:       min,
		Max:       max,
		Staleness: staleness,
	})
}

func (r *Runtime) SetCriticalParameter(name string) bool {
	p := r.params.get(name)
	if p == nil {
		r.log.Warn("unknown critical parameter", "name", name)
		return false
	}
	p.Critical = true
	return true
}

func (r *Runtime) SetParameterValue(name string, value float64) {
	p := r.params.get(name)
	if p == nil {
		r.log.Warn("value for unknown parameter dropped", "name", name)
		return
	}
	p.Value = value
	p.HasValue = true
	p.UpdatedAt = r.cfg.Now()
}

func (r *Runtime) DefineText(tv *TextVector) {
	r.props[tv.Name] = tv
	r.defined[tv.Name] = true
	r.sendText(tv)
}

func (r *Runtime) DeleteProperty(name string) {
	if !r.defined[name] {
		return
	}
	r.defined[name] = false
	if err := r.out.DeleteProperty(r.cfg.DeviceName, name); err != nil {
		r.log.Warn("property delete failed", "property", name, "error", err)
	}
}

func (r *Runtime) SetText(tv *TextVector) {
	r.props[tv.Name] = tv
	if !r.defined[tv.Name] {
		return
	}
	r.sendText(tv)
}

func (r *Runtime) sendText(tv *TextVector) {
	p := status.TextProperty{
		Device: r.cfg.DeviceName,
		Name:   tv.Name,
		Label:  tv.Label,
		Group:  tv.Group,
		Perm:   "ro",
		State:  stateCode(tv.State),
	}
	if tv.Perm == ReadWrite {
		p.Perm = "rw"
	}
	for _, t := range tv.Texts {
		p.Texts = append(p.Texts, status.Text{Name: t.Name, Label: t.Label, Value: t.Value})
	}

	if err := r.out.WriteProperty(p); err != nil {
		r.log.Warn("property delivery failed", "property", tv.Name, "error", err)
	}
}

// SetTimer arms the one-shot device timer, replacing any pending one.
func (r *Runtime) SetTimer(d time.Duration) {
	r.timer.Reset(d)
}

func (r *Runtime) PollingPeriod() time.Duration { return r.cfg.PollingPeriod }
func (r *Runtime) IsConnected() bool            { return r.connected }
