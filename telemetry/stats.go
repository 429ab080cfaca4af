package telemetry

import (
	"log/slog"
	"math/bits"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/prizos/thermovox/material"
	"github.com/prizos/thermovox/world"
)

// WindowStats holds aggregated engine statistics for a telemetry window.
type WindowStats struct {
	WindowEndTick uint64  `csv:"window_end"`
	SimTimeSec    float64 `csv:"sim_time"`

	// Chunk population at window end
	Chunks  int `csv:"chunks"`
	Active  int `csv:"active"`
	Stable  int `csv:"stable"`
	Dormant int `csv:"dormant"`

	// Matter totals (for conservation validation)
	WaterMoles float64 `csv:"water_moles"`
	SteamMoles float64 `csv:"steam_moles"`
	RockMoles  float64 `csv:"rock_moles"`
	DirtMoles  float64 `csv:"dirt_moles"`
	GasMoles   float64 `csv:"gas_moles"`
	TotalJ     float64 `csv:"total_energy"`

	// Temperature distribution over matter-holding cells
	CellCount int     `csv:"cells"`
	TempMin   float64 `csv:"temp_min"`
	TempMean  float64 `csv:"temp_mean"`
	TempP50   float64 `csv:"temp_p50"`
	TempMax   float64 `csv:"temp_max"`
	TempStd   float64 `csv:"temp_std"`
}

// CollectWindow samples the world into a WindowStats record.
func CollectWindow(w *world.World, simTime float64) WindowStats {
	s := WindowStats{
		WindowEndTick: w.Tick(),
		SimTimeSec:    simTime,
		Chunks:        w.ChunkCount(),
		Active:        w.ActiveCount(),
	}
	s.Dormant = s.Chunks - s.Active

	var temps []float64
	w.ForEachChunk(func(ch *world.Chunk) {
		if ch.Active() && ch.Stable() {
			s.Stable++
		}
		forEachChunkCell(ch, func(c *world.Cell) {
			if c.Empty() {
				return
			}
			temps = append(temps, c.Temperature())
			s.TotalJ += c.TotalEnergy()
			for m := c.Present(); m != 0; m &= m - 1 {
				id := material.ID(bits.TrailingZeros16(m))
				n := c.Moles(id)
				switch id {
				case material.Water:
					s.WaterMoles += n
				case material.Steam:
					s.SteamMoles += n
					s.GasMoles += n
				case material.Rock:
					s.RockMoles += n
				case material.Dirt:
					s.DirtMoles += n
				default:
					if material.IsGas(id) {
						s.GasMoles += n
					}
				}
			}
		})
	})

	s.CellCount = len(temps)
	if len(temps) > 0 {
		sort.Float64s(temps)
		s.TempMin = temps[0]
		s.TempMax = temps[len(temps)-1]
		s.TempMean = stat.Mean(temps, nil)
		s.TempP50 = stat.Quantile(0.5, stat.Empirical, temps, nil)
		s.TempStd = stat.StdDev(temps, nil)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("chunks", s.Chunks),
		slog.Int("active", s.Active),
		slog.Int("stable", s.Stable),
		slog.Int("dormant", s.Dormant),
		slog.Float64("water_moles", s.WaterMoles),
		slog.Float64("steam_moles", s.SteamMoles),
		slog.Float64("rock_moles", s.RockMoles),
		slog.Float64("dirt_moles", s.DirtMoles),
		slog.Float64("gas_moles", s.GasMoles),
		slog.Float64("total_energy", s.TotalJ),
		slog.Int("cells", s.CellCount),
		slog.Float64("temp_min", s.TempMin),
		slog.Float64("temp_mean", s.TempMean),
		slog.Float64("temp_p50", s.TempP50),
		slog.Float64("temp_max", s.TempMax),
		slog.Float64("temp_std", s.TempStd),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
