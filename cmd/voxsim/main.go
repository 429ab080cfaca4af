// Command voxsim runs the engine headless: it builds a world from a
// generated height map, disturbs it with a chosen scenario, steps the
// physics pipeline, and writes telemetry CSVs plus a final conservation
// summary.
package main

import (
	"flag"
	"log"
	"log/slog"

	"github.com/prizos/thermovox/config"
	"github.com/prizos/thermovox/heightmap"
	"github.com/prizos/thermovox/material"
	"github.com/prizos/thermovox/systems"
	"github.com/prizos/thermovox/telemetry"
	"github.com/prizos/thermovox/world"
)

var (
	configPath = flag.String("config", "", "Config YAML file (empty = embedded defaults)")
	ticks      = flag.Int("ticks", 600, "Number of substeps to simulate")
	mapSize    = flag.Int("size", 64, "Height map edge length in cells")
	seed       = flag.Int64("seed", 42, "Terrain noise seed")
	scenario   = flag.String("scenario", "rain", "Scenario: rain, vent, flood, none")
	outputDir  = flag.String("output", "", "Output directory for CSV telemetry (empty = disabled)")
	perfLog    = flag.Bool("perf", false, "Enable per-stage performance tracking")
)

func main() {
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	w := world.New(cfg)
	gen := heightmap.New(*seed, cfg)
	hm := gen.Generate(*mapSize)
	if err := w.InitTerrain(hm); err != nil {
		log.Fatalf("terrain init: %v", err)
	}
	slog.Info("terrain ready", "size", *mapSize, "seed", *seed, "chunks", w.ChunkCount())

	stepper := systems.NewStepper(w)

	var perf *telemetry.PerfStats
	if *perfLog {
		perf = telemetry.NewPerfStats(cfg.Telemetry.PerfWindow)
		stepper.Perf = perf
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		log.Fatalf("telemetry output: %v", err)
	}
	defer om.Close()

	var ledger telemetry.Ledger
	surface := surfaceHeight(hm)
	sub := cfg.Physics.SubstepDT

	for tick := 0; tick < *ticks; tick++ {
		runScenario(w, &ledger, *scenario, tick, *mapSize, surface)
		stepper.Step(sub)

		if cfg.Telemetry.WindowTicks > 0 && (tick+1)%cfg.Telemetry.WindowTicks == 0 {
			stats := telemetry.CollectWindow(w, float64(tick+1)*sub)
			stats.LogStats()
			if err := om.WriteStats(stats); err != nil {
				slog.Error("telemetry write failed", "err", err)
			}
			if err := om.WritePerf(perf, w.Tick()); err != nil {
				slog.Error("perf write failed", "err", err)
			}
		}
	}

	summarize(w, &ledger)
}

// surfaceHeight returns the tallest column, where scenarios inject from.
func surfaceHeight(h [][]int) int {
	max := 0
	for _, col := range h {
		for _, v := range col {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// runScenario applies one tick's worth of external disturbance.
func runScenario(w *world.World, ledger *telemetry.Ledger, name string, tick, size, surface int) {
	cx := float64(size) / 2
	switch name {
	case "rain":
		// A drop every few ticks, drifting across the map.
		if tick%5 != 0 {
			return
		}
		x := float64((tick/5)%size) + 0.5
		if err := w.AddWaterAt(x, float64(surface+6)+0.5, cx, 2); err == nil {
			cp := material.Get(material.Water).HeatCapacity
			ledger.RecordAddMaterial(material.Water, 2, 2*cp*w.Config().World.AmbientTemp)
		}
	case "vent":
		// A steady hot spot at the map center.
		if err := w.AddHeatAt(cx, 0.5, cx, 5000); err == nil {
			ledger.RecordAddHeat(5000)
		}
	case "flood":
		// One large pour at tick zero.
		if tick != 0 {
			return
		}
		for i := 0; i < 10; i++ {
			if err := w.AddWaterAt(cx, float64(surface+2+i)+0.5, cx, 15); err == nil {
				cp := material.Get(material.Water).HeatCapacity
				ledger.RecordAddMaterial(material.Water, 15, 15*cp*w.Config().World.AmbientTemp)
			}
		}
	case "none":
	default:
		log.Fatalf("unknown scenario %q", name)
	}
}

// summarize logs the closing conservation audit.
func summarize(w *world.World, ledger *telemetry.Ledger) {
	totals := telemetry.MaterialTotals(w)
	slog.Info("final audit",
		"tick", w.Tick(),
		"chunks", w.ChunkCount(),
		"active", w.ActiveCount(),
		"water_moles", totals[material.Water],
		"water_injected", ledger.MolesIn[material.Water],
		"total_energy", telemetry.TotalEnergy(w),
		"energy_injected", ledger.EnergyIn,
	)
}
