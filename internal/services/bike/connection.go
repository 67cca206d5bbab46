// Package bike simulates the e-bike controller link and tracks ride sessions
// on top of its telemetry stream.
package bike

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rar_kit/internal/models"
)

var ErrNotConnected = errors.New("bike not connected")

// Config tunes the mock telemetry generator.
type Config struct {
	TickInterval   time.Duration `yaml:"tick_interval"`
	InitialBattery float64       `yaml:"initial_battery"`
	DefaultMode    string        `yaml:"default_mode"`
	// Battery status thresholds in percent.
	BatteryHigh float64 `yaml:"battery_high"`
	BatteryLow  float64 `yaml:"battery_low"`
}

func DefaultConfig() Config {
	return Config{
		TickInterval:   500 * time.Millisecond,
		InitialBattery: 85,
		DefaultMode:    string(models.AssistanceOff),
		BatteryHigh:    50,
		BatteryLow:     20,
	}
}

// Listener receives a copy of every telemetry snapshot.
type Listener func(models.BikeData)

// Connection is the bike link. Until real hardware is wired in it generates
// synthetic telemetry on a ticker.
type Connection struct {
	cfg Config
	rng *rand.Rand

	mu        sync.Mutex
	connected bool
	data      models.BikeData
	elapsed   float64
	listeners map[uint64]Listener
	nextID    uint64
	stop      context.CancelFunc
	done      chan struct{}
}

func NewConnection(cfg Config) *Connection {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	mode, err := models.ParseAssistanceMode(cfg.DefaultMode)
	if err != nil {
		mode = models.AssistanceOff
	}
	return &Connection{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		listeners: make(map[uint64]Listener),
		data: models.BikeData{
			BatteryLevel:   models.ClampPercent(cfg.InitialBattery),
			AssistanceMode: mode,
		},
	}
}

// BatteryStatus classifies the current battery level.
func (c *Connection) BatteryStatus() string {
	return c.CurrentData().BatteryStatus(c.cfg.BatteryHigh, c.cfg.BatteryLow)
}

// Connect starts a fresh telemetry stream: the simulation clock restarts, so
// battery and wave phase begin from their initial values. Calling it while
// connected is a no-op.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return nil
	}

	c.elapsed = 0
	runCtx, cancel := context.WithCancel(ctx)
	c.stop = cancel
	c.done = make(chan struct{})
	c.connected = true
	go c.run(runCtx, c.done)

	logrus.WithField("tick", c.cfg.TickInterval).Info("Bike connected (mock telemetry stream).")
	return nil
}

// Disconnect stops the telemetry stream and waits for the generator to exit.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	c.connected = false
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	stop()
	<-done
	logrus.Info("Bike disconnected.")
}

func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Subscribe registers fn and returns the function that removes it.
func (c *Connection) Subscribe(fn Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// SetAssistanceMode stores the mode and notifies listeners right away.
func (c *Connection) SetAssistanceMode(mode models.AssistanceMode) error {
	if !mode.Valid() {
		return models.ErrInvalidAssistanceMode
	}
	c.mu.Lock()
	c.data.AssistanceMode = mode
	if mode == models.AssistanceOff {
		c.data.MotorActive = false
	}
	c.mu.Unlock()

	c.notify()
	return nil
}

// CurrentData returns a copy of the latest snapshot.
func (c *Connection) CurrentData() models.BikeData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// SetTemperature records the ambient temperature from the weather service.
func (c *Connection) SetTemperature(celsius float64) {
	c.mu.Lock()
	c.data.Temperature = &celsius
	c.mu.Unlock()
}

func (c *Connection) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.step()
			c.notify()
		}
	}
}

// step advances the simulation by one tick. Each tick counts as half a
// time unit of the sine waves, whatever the tick interval.
func (c *Connection) step() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.elapsed += 0.5
	t := c.elapsed

	baseSpeed := 15 + math.Sin(t*0.1)*5
	moving := baseSpeed > 5

	next := models.BikeData{
		Speed:          math.Max(0, baseSpeed+c.rng.Float64()*2),
		BatteryLevel:   models.ClampPercent(c.cfg.InitialBattery - t*0.1),
		AssistanceMode: c.data.AssistanceMode,
		MotorActive:    c.data.AssistanceMode != models.AssistanceOff && moving,
		Temperature:    c.data.Temperature,
	}
	if moving {
		next.Cadence = 60 + math.Sin(t*0.2)*20 + c.rng.Float64()*5
		next.Torque = 30 + math.Sin(t*0.15)*10 + c.rng.Float64()*3
		next.Power = 120 + math.Sin(t*0.12)*40 + c.rng.Float64()*10
	}
	c.data = next
}

func (c *Connection) notify() {
	c.mu.Lock()
	data := c.data
	listeners := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(data)
	}
}
