// Command physicsdemo drives the engine package from the command line:
// it assembles a scene from the factory package, steps it at a chosen
// frame rate, and optionally renders it to the terminal. Flag parsing,
// profiling, signal handling, and periodic stats reporting follow the
// main loop, kept out of the deterministic tick itself — engine.Update
// never sees a goroutine.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/0x5844/physics2d/body"
	"github.com/0x5844/physics2d/engine"
	"github.com/0x5844/physics2d/factory"
	"github.com/0x5844/physics2d/render"
	"github.com/0x5844/physics2d/timer"
	"github.com/0x5844/physics2d/vector"
)

const (
	version   = "1.0.0"
	buildTime = "unknown"
)

// config holds every command-line-tunable knob for a demo run.
type config struct {
	GravityX, GravityY float64
	FPS                int
	Duration           float64
	Variable           bool
	MinStep, MaxStep   float64

	Workers            int
	PositionIterations int
	VelocityIterations int
	SleepEnabled       bool

	Verbose       bool
	Quiet         bool
	StatsInterval float64
	ProfileCPU    string
	ProfileMem    string

	BodiesCount int
	SceneType   string

	Restitution float64
	Friction    float64

	Render       bool
	RenderWidth  int
	RenderHeight int
	RenderScale  float64
}

func parseFlags() *config {
	c := &config{}

	flag.Float64Var(&c.GravityX, "gravity-x", 0.0, "gravity X component")
	flag.Float64Var(&c.GravityY, "gravity-y", 0.001, "gravity Y component (screen-space, Y grows downward)")
	flag.IntVar(&c.FPS, "fps", 60, "target frames per second")
	flag.Float64Var(&c.Duration, "duration", 10, "simulation duration in seconds (0 = infinite)")
	flag.BoolVar(&c.Variable, "variable-step", false, "use a clamped/smoothed variable timestep instead of a fixed one")
	flag.Float64Var(&c.MinStep, "min-step", 1.0/240.0*1000, "variable timestep lower clamp, milliseconds")
	flag.Float64Var(&c.MaxStep, "max-step", 1.0/15.0*1000, "variable timestep upper clamp, milliseconds")

	flag.IntVar(&c.Workers, "workers", runtime.NumCPU(), "GOMAXPROCS for this process")
	flag.IntVar(&c.PositionIterations, "position-iterations", 6, "position solver iterations")
	flag.IntVar(&c.VelocityIterations, "velocity-iterations", 4, "velocity solver iterations")
	flag.BoolVar(&c.SleepEnabled, "sleep", true, "enable body sleeping")

	flag.BoolVar(&c.Verbose, "verbose", false, "verbose output")
	flag.BoolVar(&c.Quiet, "quiet", false, "minimal output")
	flag.Float64Var(&c.StatsInterval, "stats-interval", 2.0, "statistics reporting interval, seconds")
	flag.StringVar(&c.ProfileCPU, "profile-cpu", "", "CPU profile output file")
	flag.StringVar(&c.ProfileMem, "profile-mem", "", "memory profile output file")

	flag.IntVar(&c.BodiesCount, "bodies", 40, "number of bodies for generated scenes")
	flag.StringVar(&c.SceneType, "scene-type", "default", "scene type (default, pyramid, rain, container, stack)")

	flag.Float64Var(&c.Restitution, "restitution", 0.3, "default restitution for generated bodies")
	flag.Float64Var(&c.Friction, "friction", 0.3, "default friction for generated bodies")

	flag.BoolVar(&c.Render, "render", false, "render each frame to the terminal")
	flag.IntVar(&c.RenderWidth, "render-width", 100, "terminal render width, cells")
	flag.IntVar(&c.RenderHeight, "render-height", 40, "terminal render height, cells")
	flag.Float64Var(&c.RenderScale, "render-scale", 4.0, "terminal render scale, world units per cell")

	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "physicsdemo - 2D rigid-body physics demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -bodies 200 -scene-type pyramid\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -scene-type stack -render -duration 5\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -profile-cpu cpu.prof -verbose\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nVersion: %s\n", version)
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("physicsdemo version %s\n", version)
		fmt.Printf("Built: %s\n", buildTime)
		fmt.Printf("Go: %s\n", runtime.Version())
		os.Exit(0)
	}

	if err := validateConfig(c); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	return c
}

func validateConfig(c *config) error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.FPS < 1 || c.FPS > 1000 {
		return fmt.Errorf("fps must be between 1 and 1000")
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	if c.BodiesCount < 1 {
		return fmt.Errorf("bodies count must be at least 1")
	}
	if c.PositionIterations < 1 || c.VelocityIterations < 1 {
		return fmt.Errorf("iterations must be at least 1")
	}

	validSceneTypes := map[string]bool{
		"default": true, "pyramid": true, "rain": true, "container": true, "stack": true,
	}
	if !validSceneTypes[c.SceneType] {
		return fmt.Errorf("invalid scene type: %s", c.SceneType)
	}
	return nil
}

// ==================== SCENE GENERATORS ====================

func generateScene(c *config) ([]*body.Body, error) {
	switch c.SceneType {
	case "pyramid":
		return generatePyramidScene(c)
	case "rain":
		return generateRainScene(c)
	case "container":
		return generateContainerScene(c)
	case "stack":
		return generateStackScene(c)
	default:
		return generateDefaultScene(c)
	}
}

func bodyOpts(c *config) []body.Option {
	return []body.Option{body.WithRestitution(c.Restitution), body.WithFriction(c.Friction)}
}

func generateDefaultScene(c *config) ([]*body.Body, error) {
	floor, err := factory.Rect(0, 400, 800, 30, body.WithStatic(true))
	if err != nil {
		return nil, fmt.Errorf("default scene floor: %w", err)
	}
	bodies := []*body.Body{floor}

	for i := 0; i < c.BodiesCount; i++ {
		x := (rand.Float64() - 0.5) * 700
		y := rand.Float64()*300 + 20

		var b *body.Body
		if rand.Float64() < 0.5 {
			b, err = factory.Circle(x, y, rand.Float64()*8+6, bodyOpts(c)...)
		} else {
			size := rand.Float64()*16 + 10
			b, err = factory.Rect(x, y, size, size, bodyOpts(c)...)
		}
		if err != nil {
			return nil, fmt.Errorf("default scene body %d: %w", i, err)
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

func generatePyramidScene(c *config) ([]*body.Body, error) {
	floor, err := factory.Rect(0, 400, 800, 30, body.WithStatic(true))
	if err != nil {
		return nil, fmt.Errorf("pyramid scene floor: %w", err)
	}
	bodies := []*body.Body{floor}

	levels := int(math.Sqrt(float64(c.BodiesCount))) + 1
	const boxSize = 24.0
	y := 400 - 15 - boxSize/2

	for level := levels; level > 0; level-- {
		for i := 0; i < level; i++ {
			x := float64(i-level/2) * boxSize
			b, err := factory.Rect(x, y, boxSize*0.95, boxSize*0.95, bodyOpts(c)...)
			if err != nil {
				return nil, fmt.Errorf("pyramid scene level %d: %w", level, err)
			}
			bodies = append(bodies, b)
		}
		y -= boxSize
	}
	return bodies, nil
}

func generateRainScene(c *config) ([]*body.Body, error) {
	cage, err := factory.Cage(0, 200, 600, 400, 10)
	if err != nil {
		return nil, fmt.Errorf("rain scene cage: %w", err)
	}
	bodies := append([]*body.Body{}, cage...)

	for i := 0; i < c.BodiesCount; i++ {
		x := (rand.Float64() - 0.5) * 550
		y := rand.Float64()*150 + 10

		var b *body.Body
		if rand.Float64() < 0.7 {
			b, err = factory.Circle(x, y, rand.Float64()*6+3, bodyOpts(c)...)
		} else {
			w, h := rand.Float64()*12+6, rand.Float64()*12+6
			b, err = factory.Rect(x, y, w, h, bodyOpts(c)...)
		}
		if err != nil {
			return nil, fmt.Errorf("rain scene body %d: %w", i, err)
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

func generateContainerScene(c *config) ([]*body.Body, error) {
	cage, err := factory.Cage(0, 0, 300, 240, 15)
	if err != nil {
		return nil, fmt.Errorf("container scene cage: %w", err)
	}
	bodies := append([]*body.Body{}, cage...)

	for i := 0; i < c.BodiesCount; i++ {
		x := (rand.Float64() - 0.5) * 260
		y := (rand.Float64() - 0.5) * 200

		var b *body.Body
		if rand.Float64() < 0.6 {
			b, err = factory.Circle(x, y, rand.Float64()*5+2, bodyOpts(c)...)
		} else {
			size := rand.Float64()*8 + 4
			b, err = factory.Rect(x, y, size, size, bodyOpts(c)...)
		}
		if err != nil {
			return nil, fmt.Errorf("container scene body %d: %w", i, err)
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

func generateStackScene(c *config) ([]*body.Body, error) {
	floor, err := factory.Rect(0, 400, 400, 30, body.WithStatic(true))
	if err != nil {
		return nil, fmt.Errorf("stack scene floor: %w", err)
	}

	rows := c.BodiesCount
	if rows > 20 {
		rows = 20
	}
	const boxSize = 28.0
	boxes, err := factory.Stack(0, 400-15, 1, rows, func(x, y float64, col, row int) (*body.Body, error) {
		return factory.Rect(x, y, boxSize*0.95, boxSize*0.95, bodyOpts(c)...)
	})
	if err != nil {
		return nil, fmt.Errorf("stack scene: %w", err)
	}
	return append([]*body.Body{floor}, boxes...), nil
}

// ==================== STATS ====================

// stats holds atomically-updated run counters. reportStats only ever reads
// these, never the engine's bodies directly, so it never races the tick
// loop over the body list itself.
type stats struct {
	steps      int64
	frames     int64
	collisions int64
	bodies     int64
	awake      int64
}

func (s *stats) record(bodies []*body.Body, contacts int) {
	atomic.AddInt64(&s.steps, 1)
	atomic.AddInt64(&s.frames, 1)
	atomic.StoreInt64(&s.collisions, int64(contacts))
	atomic.StoreInt64(&s.bodies, int64(len(bodies)))

	var awake int64
	for _, b := range bodies {
		if !b.IsSleeping() {
			awake++
		}
	}
	atomic.StoreInt64(&s.awake, awake)
}

func reportStats(ctx context.Context, s *stats, start time.Time, interval float64, verbose bool) {
	ticker := time.NewTicker(time.Duration(interval * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			steps := atomic.LoadInt64(&s.steps)
			elapsed := time.Since(start).Seconds()
			fps := 0.0
			if elapsed > 0 {
				fps = float64(steps) / elapsed
			}
			bodies := atomic.LoadInt64(&s.bodies)
			awake := atomic.LoadInt64(&s.awake)
			collisions := atomic.LoadInt64(&s.collisions)

			if verbose {
				log.Printf("steps/sec: %.1f | bodies: %d (awake: %d) | contacts: %d | elapsed: %.1fs",
					fps, bodies, awake, collisions, elapsed)
			} else {
				log.Printf("steps/sec: %.1f | bodies: %d | awake: %d | contacts: %d", fps, bodies, awake, collisions)
			}

		case <-ctx.Done():
			return
		}
	}
}

// ==================== MAIN ====================

func main() {
	c := parseFlags()

	if c.Quiet {
		log.SetOutput(io.Discard)
	} else if c.Verbose {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	if c.ProfileCPU != "" {
		f, err := os.Create(c.ProfileCPU)
		if err != nil {
			log.Fatal("could not create CPU profile:", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile:", err)
		}
		defer pprof.StopCPUProfile()
	}

	runtime.GOMAXPROCS(c.Workers)
	rand.Seed(time.Now().UnixNano())

	if !c.Quiet {
		log.Printf("Starting physicsdemo v%s", version)
		log.Printf("CPU cores: %d, GOMAXPROCS: %d", runtime.NumCPU(), c.Workers)
	}

	bodies, err := generateScene(c)
	if err != nil {
		log.Fatalf("failed to generate scene: %v", err)
	}
	if !c.Quiet {
		log.Printf("Generated %s scene with %d bodies", c.SceneType, len(bodies))
	}

	e := engine.New(bodies, engine.Options{
		Gravity:            vector.New(c.GravityX, c.GravityY),
		EnableSleeping:     c.SleepEnabled,
		PositionIterations: c.PositionIterations,
		VelocityIterations: c.VelocityIterations,
	})

	var nextDelta func() engine.Delta
	if c.Variable {
		v := timer.NewVariable(c.MinStep, c.MaxStep)
		last := time.Now()
		nextDelta = func() engine.Delta {
			now := time.Now()
			raw := now.Sub(last).Seconds() * 1000
			last = now
			return v.Next(raw)
		}
	} else {
		f := timer.NewFixed(1000.0 / float64(c.FPS))
		nextDelta = f.Next
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if c.Duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.Duration*float64(time.Second)))
		defer cancel()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			if !c.Quiet {
				log.Println("Shutting down gracefully...")
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	var term *render.Terminal
	if c.Render {
		term = render.NewTerminal(c.RenderWidth, c.RenderHeight, c.RenderScale)
	}

	s := &stats{}
	start := time.Now()
	if !c.Quiet {
		go reportStats(ctx, s, start, c.StatsInterval, c.Verbose)
	}

	if !c.Quiet {
		log.Printf("Simulation started (FPS: %d, Workers: %d)", c.FPS, c.Workers)
		if c.Duration > 0 {
			log.Printf("Simulation duration: %.2f seconds", c.Duration)
		} else {
			log.Println("Press Ctrl+C to stop")
		}
	}

	frameInterval := time.Duration(float64(time.Second) / float64(c.FPS))
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			contacts := e.Update(nextDelta())
			s.record(e.Bodies(), len(contacts))

			if term != nil {
				term.Clear()
				for _, b := range e.Bodies() {
					term.DrawBody(b, '#')
				}
				term.DrawContacts(contacts, '*')
				fmt.Print(term.String())
			}
		}
	}

	if c.ProfileMem != "" {
		f, err := os.Create(c.ProfileMem)
		if err != nil {
			log.Printf("could not create memory profile: %v", err)
		} else {
			defer f.Close()
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Printf("could not write memory profile: %v", err)
			}
		}
	}

	if !c.Quiet {
		elapsed := time.Since(start).Seconds()
		steps := atomic.LoadInt64(&s.steps)
		log.Printf("Simulation completed:")
		log.Printf("  Bodies: %d", atomic.LoadInt64(&s.bodies))
		log.Printf("  Steps: %d", steps)
		if elapsed > 0 {
			log.Printf("  Average steps/second: %.1f", float64(steps)/elapsed)
		}
	}
}
