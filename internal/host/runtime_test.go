// internal/host/runtime_test.go
package host

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/tamzrod/amsky-bridge/internal/status"
)

// ---- fakes ----

type fakeDevice struct {
	h Host

	connectOK bool
	weather   State
	armOnConn time.Duration

	status *TextVector
	config *TextVector

	hits     chan struct{}
	updates  []bool
	newTexts []string

	pollAt  time.Time
	pollErr error
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		connectOK: true,
		weather:   StateOK,
		hits:      make(chan struct{}, 16),
	}
}

func (d *fakeDevice) InitProperties(h Host) error {
	d.h = h
	h.AddParameter("TEMP", "Temp", -50, 80, 15*time.Second)
	h.AddParameter("LUX", "Lux", 0, 100000, 15*time.Second)
	h.SetCriticalParameter("TEMP")

	d.status = &TextVector{Name: "STATUS", Perm: ReadOnly, Texts: []Text{{Name: "S", Value: "idle"}}}
	d.config = &TextVector{Name: "CONFIG", Perm: ReadWrite, Texts: []Text{{Name: "URL", Value: "a"}}}
	return nil
}

func (d *fakeDevice) UpdateProperties(connected bool) {
	d.updates = append(d.updates, connected)
	if connected {
		d.h.DefineText(d.status)
		d.h.DefineText(d.config)
		if d.armOnConn > 0 {
			d.h.SetTimer(d.armOnConn)
		}
		return
	}
	d.h.DeleteProperty(d.status.Name)
	d.h.DeleteProperty(d.config.Name)
}

func (d *fakeDevice) Connect() bool {
	d.pollAt = time.Now()
	if !d.connectOK {
		d.pollErr = errors.New("unreachable")
	}
	return d.connectOK
}

func (d *fakeDevice) Disconnect() bool { return true }

func (d *fakeDevice) TimerHit() {
	d.hits <- struct{}{}
}

func (d *fakeDevice) NewText(name string, names, values []string) bool {
	if name != d.config.Name {
		return false
	}
	d.config.Update(names, values)
	d.newTexts = append(d.newTexts, values...)
	return true
}

func (d *fakeDevice) UpdateWeather() State { return d.weather }

func (d *fakeDevice) LastPoll() (time.Time, error) { return d.pollAt, d.pollErr }

type recordingOutput struct {
	mu      sync.Mutex
	snaps   []status.Snapshot
	props   []status.TextProperty
	deleted []string
}

func (o *recordingOutput) Write(s status.Snapshot) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snaps = append(o.snaps, s)
	return nil
}

func (o *recordingOutput) WriteProperty(p status.TextProperty) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.props = append(o.props, p)
	return nil
}

func (o *recordingOutput) DeleteProperty(device, name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deleted = append(o.deleted, name)
	return nil
}

func (o *recordingOutput) lastSnap() status.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snaps[len(o.snaps)-1]
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startRuntime(t *testing.T, dev *fakeDevice, out *recordingOutput) (*Runtime, context.CancelFunc, <-chan error) {
	t.Helper()

	r, err := New(Config{
		DeviceName:    "Test Sky",
		PollingPeriod: 20 * time.Millisecond,
		UpdatePeriod:  time.Hour,
		Logger:        quietLogger(),
	}, dev, out)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		<-r.stopped
	})
	return r, cancel, done
}

// ---- tests ----

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{DeviceName: "x", PollingPeriod: time.Second, UpdatePeriod: time.Second}, nil, nil); err == nil {
		t.Fatalf("expected device error")
	}
	if _, err := New(Config{PollingPeriod: time.Second, UpdatePeriod: time.Second}, newFakeDevice(), nil); err == nil {
		t.Fatalf("expected name error")
	}
	if _, err := New(Config{DeviceName: "x", UpdatePeriod: time.Second}, newFakeDevice(), nil); err == nil {
		t.Fatalf("expected polling period error")
	}
}

func TestConnect_DefinesPropertiesAndPublishes(t *testing.T) {
	dev := newFakeDevice()
	out := &recordingOutput{}
	r, _, _ := startRuntime(t, dev, out)

	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect err=%v", err)
	}

	if s, _ := r.Snapshot(context.Background()); !s.Connected {
		t.Fatalf("runtime should be connected")
	}
	if len(dev.updates) != 1 || !dev.updates[0] {
		t.Fatalf("UpdateProperties(true) not called: %v", dev.updates)
	}

	out.mu.Lock()
	nprops := len(out.props)
	out.mu.Unlock()
	if nprops != 2 {
		t.Fatalf("expected 2 property definitions, got %d", nprops)
	}

	s := out.lastSnap()
	if !s.Connected || s.Health != status.HealthOK || s.Device != "Test Sky" {
		t.Fatalf("unexpected snapshot: %+v", s)
	}

	// second connect is a no-op
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect err=%v", err)
	}
	if len(dev.updates) != 1 {
		t.Fatalf("connect while connected must be a no-op")
	}
}

func TestConnect_Failure(t *testing.T) {
	dev := newFakeDevice()
	dev.connectOK = false
	out := &recordingOutput{}
	r, _, _ := startRuntime(t, dev, out)

	err := r.Connect(context.Background())
	if !errors.Is(err, ErrConnectFailed) {
		t.Fatalf("expected ErrConnectFailed, got %v", err)
	}

	if s, _ := r.Snapshot(context.Background()); s.Connected {
		t.Fatalf("runtime must stay disconnected")
	}
	if len(dev.updates) != 0 {
		t.Fatalf("UpdateProperties must not run on failed connect")
	}

	s := out.lastSnap()
	if s.Health != status.HealthDisabled || s.LastErrorCode != 1 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
}

func TestTimer_FiresAndStopsOnDisconnect(t *testing.T) {
	dev := newFakeDevice()
	dev.armOnConn = 10 * time.Millisecond
	out := &recordingOutput{}
	r, _, _ := startRuntime(t, dev, out)

	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect err=%v", err)
	}

	select {
	case <-dev.hits:
	case <-time.After(2 * time.Second):
		t.Fatalf("timer did not fire")
	}

	// re-arm, then disconnect before it fires
	dev.armOnConn = 0
	if err := r.do(context.Background(), func() error {
		r.SetTimer(50 * time.Millisecond)
		return nil
	}); err != nil {
		t.Fatalf("arm err=%v", err)
	}
	if err := r.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect err=%v", err)
	}

	select {
	case <-dev.hits:
		t.Fatalf("timer fired after disconnect")
	case <-time.After(150 * time.Millisecond):
	}

	out.mu.Lock()
	deleted := len(out.deleted)
	out.mu.Unlock()
	if deleted != 2 {
		t.Fatalf("expected 2 property deletions, got %d", deleted)
	}
	if s := out.lastSnap(); s.Connected || s.Health != status.HealthDisabled {
		t.Fatalf("unexpected snapshot after disconnect: %+v", s)
	}
}

func TestNewText_Routing(t *testing.T) {
	dev := newFakeDevice()
	out := &recordingOutput{}
	r, _, _ := startRuntime(t, dev, out)
	ctx := context.Background()

	// not defined until connected
	if err := r.NewText(ctx, "CONFIG", []string{"URL"}, []string{"b"}); err == nil {
		t.Fatalf("expected error for undefined property")
	}

	if err := r.Connect(ctx); err != nil {
		t.Fatalf("Connect err=%v", err)
	}

	if err := r.NewText(ctx, "STATUS", []string{"S"}, []string{"x"}); err == nil {
		t.Fatalf("expected read-only error")
	}
	if err := r.NewText(ctx, "CONFIG", []string{"URL"}, []string{"b"}); err != nil {
		t.Fatalf("NewText err=%v", err)
	}
	if len(dev.newTexts) != 1 || dev.config.Texts[0].Value != "b" {
		t.Fatalf("write not forwarded: %v", dev.newTexts)
	}
}

func TestWeather_CriticalParamAlert(t *testing.T) {
	dev := newFakeDevice()
	out := &recordingOutput{}
	r, _, _ := startRuntime(t, dev, out)
	ctx := context.Background()

	if err := r.Connect(ctx); err != nil {
		t.Fatalf("Connect err=%v", err)
	}

	_ = r.do(ctx, func() error {
		r.SetParameterValue("TEMP", 20)
		r.SetParameterValue("LUX", 200000) // out of range, not critical
		return nil
	})

	s, err := r.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot err=%v", err)
	}
	if s.Weather != status.StateOK {
		t.Fatalf("non-critical alert must not raise weather state: %d", s.Weather)
	}
	if s.Params[1].State != status.StateAlert {
		t.Fatalf("lux should be alert: %+v", s.Params[1])
	}

	_ = r.do(ctx, func() error {
		r.SetParameterValue("TEMP", 120)
		return nil
	})

	s, _ = r.Snapshot(ctx)
	if s.Weather != status.StateAlert {
		t.Fatalf("critical out of range must alert, got %d", s.Weather)
	}
}

func TestWeather_DeviceAlertWins(t *testing.T) {
	dev := newFakeDevice()
	dev.weather = StateAlert
	r, _, _ := startRuntime(t, dev, &recordingOutput{})
	ctx := context.Background()

	_ = r.Connect(ctx)

	s, _ := r.Snapshot(ctx)
	if s.Weather != status.StateAlert {
		t.Fatalf("device alert must propagate, got %d", s.Weather)
	}
}

func TestRun_ShutdownDisconnects(t *testing.T) {
	dev := newFakeDevice()
	r, cancel, done := startRuntime(t, dev, &recordingOutput{})

	_ = r.Connect(context.Background())
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err=%v", err)
	}
	if len(dev.updates) != 2 || dev.updates[1] {
		t.Fatalf("expected disconnect on shutdown: %v", dev.updates)
	}
	if err := r.Connect(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after shutdown, got %v", err)
	}
}

func TestParameter_State(t *testing.T) {
	now := time.Now()
	p := Parameter{Min: 0, Max: 100, Staleness: 15 * time.Second}

	if p.State(now) != StateIdle {
		t.Fatalf("unset parameter should be idle")
	}

	p.Value, p.HasValue, p.UpdatedAt = 50, true, now
	if p.State(now) != StateOK {
		t.Fatalf("in-range parameter should be ok")
	}
	if p.State(now.Add(16*time.Second)) != StateAlert {
		t.Fatalf("stale parameter should alert")
	}

	p.Value = 101
	if p.State(now) != StateAlert {
		t.Fatalf("out-of-range parameter should alert")
	}
}

func TestTextVector_Update(t *testing.T) {
	tv := TextVector{Texts: []Text{{Name: "A"}, {Name: "B"}}}

	n := tv.Update([]string{"B", "Z"}, []string{"two", "zz"})

	if n != 1 || tv.Texts[1].Value != "two" || tv.Texts[0].Value != "" {
		t.Fatalf("unexpected update: n=%d %+v", n, tv.Texts)
	}
}
