package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/df07/go-surface-scatter/pkg/config"
	"github.com/df07/go-surface-scatter/pkg/core"
	"github.com/df07/go-surface-scatter/pkg/culling"
	"github.com/df07/go-surface-scatter/pkg/geometry"
	"github.com/df07/go-surface-scatter/pkg/registry"
	"github.com/df07/go-surface-scatter/pkg/save"
	"github.com/df07/go-surface-scatter/pkg/scene"
	"github.com/df07/go-surface-scatter/pkg/tools"
)

// cameraHeight is how far above the target the brush ray starts
const cameraHeight = 100.0

type options struct {
	configPath string
	x, z       float64
	seed       int64
	strokes    int
	grid       int
	workers    int
	saveName   string
}

type report struct {
	Hit     bool
	Spawned int
	Objects int
	Visible int
	Saved   string
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "YAML settings file (built-in defaults if empty)")
	x := flag.Float64("x", 0, "Brush target X coordinate")
	z := flag.Float64("z", 0, "Brush target Z coordinate")
	seed := flag.Int64("seed", 1, "Random seed for offsets, template choice, scale and yaw")
	strokes := flag.Int("strokes", 1, "Number of paint strokes at the target")
	grid := flag.Int("grid", 1, "Paint an N x N grid of strokes centered on the target")
	workers := flag.Int("workers", 0, "Number of sampling workers for grid painting (0 = auto-detect CPU count)")
	saveName := flag.String("save", "", "Save the scene under this name")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Surface Scatter")
		fmt.Println("Usage: scatter [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Casts a brush ray straight down at (x, z), paints the selected templates")
		fmt.Println("onto the configured surfaces and reports what is visible from the camera.")
		return
	}

	opts := options{
		configPath: *configPath,
		x:          *x,
		z:          *z,
		seed:       *seed,
		strokes:    *strokes,
		grid:       *grid,
		workers:    *workers,
		saveName:   *saveName,
	}

	rep, err := run(opts, core.NewDefaultLogger(""))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	printReport(os.Stdout, rep)
}

// newContainer wires the services for one session
func newContainer(opts options, logger core.Logger) (*registry.Container, error) {
	c := registry.New()

	if err := registry.Set(c, logger); err != nil {
		return nil, err
	}

	providers := []error{
		registry.Provide(c, func(*registry.Container) (*config.Config, error) {
			if opts.configPath == "" {
				cfg := config.Default()
				return cfg, cfg.Validate()
			}
			return config.Load(opts.configPath)
		}),
		registry.Provide(c, func(c *registry.Container) (*geometry.World, error) {
			cfg, err := registry.Get[*config.Config](c)
			if err != nil {
				return nil, err
			}
			return cfg.BuildWorld()
		}),
		registry.Provide(c, func(c *registry.Container) (*scene.Scene, error) {
			return scene.New(registry.MustGet[core.Logger](c)), nil
		}),
		registry.Provide(c, func(c *registry.Container) (*save.Manager, error) {
			cfg, err := registry.Get[*config.Config](c)
			if err != nil {
				return nil, err
			}
			log := registry.MustGet[core.Logger](c)
			mgr, err := save.Open(cfg.Save.AppName, log)
			if err != nil {
				log.Printf("Warning: %v\n", err)
				return save.NewManager(nil, log), nil
			}
			return mgr, nil
		}),
		registry.Provide(c, func(c *registry.Container) (*tools.PrefabBrush, error) {
			cfg, err := registry.Get[*config.Config](c)
			if err != nil {
				return nil, err
			}
			world, err := registry.Get[*geometry.World](c)
			if err != nil {
				return nil, err
			}
			s := registry.MustGet[*scene.Scene](c)
			pb := tools.NewPrefabBrush(s, world, cfg.Brush, core.NewSeededSampler(opts.seed), registry.MustGet[core.Logger](c))
			pb.SetTemplates(cfg.BuildTemplates())
			return pb, nil
		}),
	}
	for _, err := range providers {
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// run paints at the target and reports the result
func run(opts options, logger core.Logger) (report, error) {
	var rep report

	c, err := newContainer(opts, logger)
	if err != nil {
		return rep, err
	}
	defer c.Close()

	cfg, err := registry.Get[*config.Config](c)
	if err != nil {
		return rep, err
	}
	pb, err := registry.Get[*tools.PrefabBrush](c)
	if err != nil {
		return rep, err
	}
	s := registry.MustGet[*scene.Scene](c)

	// The camera looks straight down, so its up vector is world forward
	camera := core.NewVec3(opts.x, cameraHeight, opts.z)
	ray := core.NewRay(camera, core.Up.Negate())

	group := s.Create("Scatter", culling.LayerDefault)
	pb.SetParent(group)
	if opts.grid > 1 {
		world, err := registry.Get[*geometry.World](c)
		if err != nil {
			return rep, err
		}
		results := tools.SampleStrokes(world, cfg.Brush, gridTasks(opts, cfg.Brush.Radius*2), opts.workers)
		for _, r := range results {
			rep.Hit = rep.Hit || r.Hit
		}
		rep.Spawned = len(pb.PaintStrokes(results))
	} else {
		for i := 0; i < max(opts.strokes, 1); i++ {
			samples, ok := pb.Hover(ray, core.Forward, nil)
			if !ok {
				break
			}
			rep.Hit = true
			rep.Spawned += len(pb.Paint(samples))
		}
	}
	if !rep.Hit {
		logger.Printf("Brush ray at (%g, %g) did not hit any surface\n", opts.x, opts.z)
	}

	rep.Objects = s.Len()
	culler := culling.NewCuller(cfg.Culling, 0)
	rep.Visible = len(culler.FilterVisible(s.Objects(), camera))

	if opts.saveName != "" {
		mgr, err := registry.Get[*save.Manager](c)
		if err != nil {
			return rep, err
		}
		if err := mgr.SaveScene(opts.saveName, s); err != nil {
			return rep, err
		}
		rep.Saved = opts.saveName
	}
	return rep, nil
}

// gridTasks lays out opts.grid x opts.grid strokes spaced apart around the target
func gridTasks(opts options, spacing float64) []tools.StrokeTask {
	var tasks []tools.StrokeTask
	half := float64(opts.grid-1) / 2
	for i := 0; i < opts.grid; i++ {
		for j := 0; j < opts.grid; j++ {
			origin := core.NewVec3(
				opts.x+(float64(i)-half)*spacing,
				cameraHeight,
				opts.z+(float64(j)-half)*spacing,
			)
			id := len(tasks)
			tasks = append(tasks, tools.StrokeTask{
				TaskID: id,
				Ray:    core.NewRay(origin, core.Up.Negate()),
				Up:     core.Forward,
				Seed:   opts.seed + int64(id),
			})
		}
	}
	return tasks
}

func printReport(w io.Writer, rep report) {
	if !rep.Hit {
		fmt.Fprintln(w, "Nothing painted: the brush missed every surface")
	} else {
		fmt.Fprintf(w, "Spawned %d objects\n", rep.Spawned)
	}
	fmt.Fprintf(w, "Scene objects: %d (%d visible from the camera)\n", rep.Objects, rep.Visible)
	if rep.Saved != "" {
		fmt.Fprintf(w, "Scene saved as %q\n", rep.Saved)
	}
}
