package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/semiosislab/semiosis/go-engine/internal/axes"
	"github.com/semiosislab/semiosis/go-engine/internal/dissonance"
	"github.com/semiosislab/semiosis/go-engine/internal/embed"
	"github.com/semiosislab/semiosis/go-engine/internal/fixation"
	"github.com/semiosislab/semiosis/go-engine/internal/history"
	"github.com/semiosislab/semiosis/go-engine/internal/metrics"
	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
	"github.com/semiosislab/semiosis/go-engine/internal/translate"
	"github.com/semiosislab/semiosis/go-engine/internal/vigilance"
)

// #region modes
// Mode is the daemon's activity state.
type Mode string

const (
	ModeIdle         Mode = "idle"
	ModeConversation Mode = "conversation"
	ModeAutonomous   Mode = "autonomous"
)

// TriggerType names what started a cycle.
type TriggerType string

const (
	TriggerUser       TriggerType = "user"
	TriggerVeille     TriggerType = "veille"
	TriggerCorpus     TriggerType = "corpus"
	TriggerRumination TriggerType = "rumination_free"
)

// Trigger is one unit of work for the cycle loop.
type Trigger struct {
	Type    TriggerType
	Content string
	// Impact is set on rumination triggers: the pending shock being worked
	// through.
	Impact *history.PendingImpact

	attempts int
}

// #endregion modes

// #region config
// Config holds the daemon policy knobs.
type Config struct {
	// CyclesPerDay paces autonomous activity. 1000 gives roughly one cycle
	// every 86 seconds.
	CyclesPerDay int
	// RuminationProbability is the chance an autonomous slot becomes free
	// rumination, taken only while unresolved shocks exist.
	RuminationProbability float64
	// CorpusProbability splits the remaining autonomous slots between corpus
	// reading and veille self-observation.
	CorpusProbability float64

	EmbedTimeout     time.Duration
	TranslateTimeout time.Duration

	Dissonance dissonance.Config
	Fixation   fixation.Config
}

// DefaultConfig returns the default daemon policy.
func DefaultConfig() Config {
	return Config{
		CyclesPerDay:          1000,
		RuminationProbability: 0.5,
		CorpusProbability:     0.5,
		EmbedTimeout:          30 * time.Second,
		TranslateTimeout:      90 * time.Second,
		Dissonance:            dissonance.DefaultConfig(),
		Fixation:              fixation.DefaultConfig(),
	}
}

// Interval returns the autonomous pacing interval.
func (c Config) Interval() time.Duration {
	if c.CyclesPerDay <= 0 {
		return 24 * time.Hour
	}
	return 24 * time.Hour / time.Duration(c.CyclesPerDay)
}

// #endregion config

// #region daemon
// Expression is one verbalized tick, delivered to whoever listens.
type Expression struct {
	StateID int64
	Trigger TriggerType
	Text    string
}

// Daemon runs the perpetual cycle loop. One cycle at a time; a user trigger
// preempts autonomous work at the next cycle boundary, never mid-cycle.
type Daemon struct {
	cfg        Config
	store      *history.Store
	vigil      *vigilance.Vigil
	embedder   embed.Embedder
	translator translate.Translator
	dirs       *axes.Directions
	rec        *metrics.Recorder

	// Sampler supplies corpus reading material. Optional; a built-in prompt
	// rotation is used when nil.
	Sampler func(ctx context.Context) (string, error)

	// Expressions receives verbalized ticks when someone is listening.
	// Non-blocking sends; a full or nil channel drops the text, never the tick.
	Expressions chan Expression

	mu      sync.Mutex
	mode    Mode
	current tensor.StateTensor
	rng     *rand.Rand

	userCh chan Trigger
}

// New assembles a daemon around an already-seeded store.
func New(cfg Config, store *history.Store, vigil *vigilance.Vigil, embedder embed.Embedder, translator translate.Translator, dirs *axes.Directions, rec *metrics.Recorder, rng *rand.Rand) (*Daemon, error) {
	cur, err := store.Current()
	if err != nil {
		return nil, fmt.Errorf("load current tick: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	d := &Daemon{
		cfg:        cfg,
		store:      store,
		vigil:      vigil,
		embedder:   embedder,
		translator: translator,
		dirs:       dirs,
		rec:        rec,
		mode:       ModeIdle,
		current:    cur.Tensor(),
		rng:        rng,
		userCh:     make(chan Trigger, 16),
	}
	rec.SetMode(string(ModeIdle))
	return d, nil
}

// Current returns the live tick.
func (d *Daemon) Current() tensor.StateTensor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Mode returns the current activity state.
func (d *Daemon) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// SetMode switches the activity state.
func (d *Daemon) SetMode(m Mode) {
	d.mu.Lock()
	d.mode = m
	d.mu.Unlock()
	d.rec.SetMode(string(m))
	log.Printf("[DAEMON] mode -> %s", m)
}

// SubmitUser queues a user interaction and enters conversation mode. The
// in-flight cycle, if any, finishes first.
func (d *Daemon) SubmitUser(content string) error {
	select {
	case d.userCh <- Trigger{Type: TriggerUser, Content: content}:
		d.SetMode(ModeConversation)
		return nil
	default:
		return errors.New("user queue full")
	}
}

// #endregion daemon

// #region loop
// Run drives the cycle loop until the context ends.
func (d *Daemon) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.Interval())
	defer ticker.Stop()

	log.Printf("[DAEMON] running, interval %s", d.cfg.Interval())
	for {
		trig, ok := d.nextTrigger(ctx, ticker.C)
		if !ok {
			return ctx.Err()
		}
		if trig.Type == "" {
			continue // idle tick
		}
		d.handle(ctx, trig)
	}
}

// nextTrigger selects the next unit of work. User triggers always win over a
// pending autonomous slot; that is the preemption boundary.
func (d *Daemon) nextTrigger(ctx context.Context, tick <-chan time.Time) (Trigger, bool) {
	select {
	case trig := <-d.userCh:
		return trig, true
	default:
	}

	select {
	case <-ctx.Done():
		return Trigger{}, false
	case trig := <-d.userCh:
		return trig, true
	case <-tick:
		if d.Mode() != ModeAutonomous {
			return Trigger{}, true
		}
		return d.pickAutonomous(ctx), true
	}
}

// pickAutonomous chooses what an autonomous slot does. Free rumination is
// only ever drawn while unresolved shocks exist.
func (d *Daemon) pickAutonomous(ctx context.Context) Trigger {
	pending, err := d.store.PendingImpacts()
	if err != nil {
		log.Printf("[DAEMON] pending impacts: %v", err)
	}

	d.mu.Lock()
	roll := d.rng.Float64()
	corpusRoll := d.rng.Float64()
	d.mu.Unlock()

	if len(pending) > 0 && roll < d.cfg.RuminationProbability {
		impact := pending[0]
		return Trigger{
			Type:    TriggerRumination,
			Content: impact.Content,
			Impact:  &impact,
		}
	}

	if corpusRoll < d.cfg.CorpusProbability {
		content := d.sampleCorpus(ctx)
		return Trigger{Type: TriggerCorpus, Content: content}
	}
	return Trigger{Type: TriggerVeille, Content: d.veilleContent()}
}

// veillePrompts rotate through autonomous self-observation themes.
var veillePrompts = []string{
	"what has changed in how I hold my commitments since the last pause",
	"where my attention has drifted and whether that drift feels chosen",
	"which of my habits of interpretation earned their keep today",
	"what I am avoiding looking at directly",
	"how the balance between receiving and asserting has shifted",
}

func (d *Daemon) veilleContent() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := veillePrompts[d.rng.Intn(len(veillePrompts))]
	return fmt.Sprintf("veille at tick %d: %s", d.current.StateID, p)
}

func (d *Daemon) sampleCorpus(ctx context.Context) string {
	if d.Sampler != nil {
		content, err := d.Sampler(ctx)
		if err == nil && content != "" {
			return content
		}
		if err != nil {
			log.Printf("[DAEMON] corpus sampler: %v", err)
		}
	}
	return d.veilleContent()
}

// handle runs one cycle, retrying an aborted user trigger once.
func (d *Daemon) handle(ctx context.Context, trig Trigger) {
	if err := d.RunCycle(ctx, trig); err != nil {
		log.Printf("[DAEMON] cycle aborted (%s): %v", trig.Type, err)
		if trig.Type == TriggerUser && trig.attempts == 0 {
			trig.attempts++
			select {
			case d.userCh <- trig:
			default:
				log.Printf("[DAEMON] requeue dropped, user queue full")
			}
		}
	}
}

// #endregion loop
