package cmd

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ductcad/snapengine/core/cache"
	"github.com/ductcad/snapengine/core/config"
	"github.com/ductcad/snapengine/core/engine"
	"github.com/ductcad/snapengine/core/geometry"
	"github.com/ductcad/snapengine/core/snap"
	"github.com/ductcad/snapengine/core/spatial"
)

const (
	// BenchDefaultPoints is the default synthetic layout size.
	BenchDefaultPoints = 5000

	// BenchDefaultQueries is the default pointer-trace length.
	BenchDefaultQueries = 20000

	// benchLayoutExtent is the side of the square drawing area the
	// synthetic layout fills, in engine units.
	benchLayoutExtent = 2000.0

	// benchRevisitRate is the fraction of trace steps that repeat the
	// previous position, modeling a momentarily still pointer.
	benchRevisitRate = 0.85
)

var (
	benchPoints  int
	benchQueries int
	benchSeed    int64
	benchIndex   string
	benchCache   string
	benchConfig  string
	benchJSON    bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark snap detection over a synthetic duct layout",
	Long: `Seeds a synthetic duct layout, replays a pointer trace against it,
and reports detection latency, cache hit rate, and the health verdict.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchPoints, "points", BenchDefaultPoints, "Number of snap points to seed")
	benchCmd.Flags().IntVar(&benchQueries, "queries", BenchDefaultQueries, "Number of pointer-move queries to replay")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 1, "PRNG seed for layout and trace")
	benchCmd.Flags().StringVar(&benchIndex, "index", "grid", "Spatial index: grid or flat")
	benchCmd.Flags().StringVar(&benchCache, "cache", "lru", "Result cache: lru or ristretto")
	benchCmd.Flags().StringVar(&benchConfig, "config", "", "Engine config file (YAML)")
	benchCmd.Flags().BoolVar(&benchJSON, "json", false, "Emit the report as JSON")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	file, err := config.Load(benchConfig)
	if err != nil {
		return err
	}
	engineCfg, err := file.EngineConfig()
	if err != nil {
		return err
	}
	if benchPoints > engineCfg.MaxSnapPoints {
		engineCfg.MaxSnapPoints = benchPoints
	}

	// Flags win over the config file; unset flags fall back to it.
	if !cmd.Flags().Changed("index") && file.Index.Kind != "" {
		benchIndex = file.Index.Kind
	}
	if !cmd.Flags().Changed("cache") && file.Cache.Backend != "" {
		benchCache = file.Cache.Backend
	}

	idx, err := buildIndex(benchIndex, file.Index.CellSize)
	if err != nil {
		return err
	}
	resultCache, closeCache, err := buildCache(benchCache, file.Cache.Capacity)
	if err != nil {
		return err
	}
	defer closeCache()

	eng, err := engine.New(engineCfg, engine.WithIndex(idx), engine.WithCache(resultCache))
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(benchSeed))
	seedStart := time.Now()
	if err := seedLayout(eng, rng, benchPoints); err != nil {
		return err
	}
	seedDur := time.Since(seedStart)

	traceStart := time.Now()
	snapped := replayTrace(eng, rng, benchQueries)
	traceDur := time.Since(traceStart)

	stats := eng.GetStatistics()
	if benchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("=== Snap Detection Benchmark ===\n")
	fmt.Printf("Points:        %d (seeded in %v)\n", benchPoints, seedDur)
	fmt.Printf("Queries:       %d in %v (%.1f q/ms)\n", benchQueries, traceDur,
		float64(benchQueries)/(float64(traceDur)/float64(time.Millisecond)))
	fmt.Printf("Snapped:       %d (%.1f%%)\n", snapped, 100*float64(snapped)/float64(benchQueries))
	fmt.Printf("Avg detection: %.3f ms (min %.3f, max %.3f)\n",
		stats.Performance.Detection.Average,
		stats.Performance.Detection.Min,
		stats.Performance.Detection.Max)
	fmt.Printf("Hit rate:      %.1f%%\n", 100*stats.Performance.HitRate)
	fmt.Printf("Index:         %d cells, efficiency %.3f\n", stats.Index.Cells, stats.Index.Efficiency)
	fmt.Printf("Healthy:       %v\n", stats.Performance.Acceptable)
	return nil
}

func buildIndex(kind string, cellSize float64) (spatial.Index, error) {
	switch kind {
	case "grid":
		if cellSize > 0 {
			return spatial.NewGridIndexWithCellSize(cellSize), nil
		}
		return spatial.NewGridIndex(), nil
	case "flat":
		return spatial.NewFlatIndex(), nil
	default:
		return nil, fmt.Errorf("unknown index kind %q", kind)
	}
}

func buildCache(backend string, capacity int) (cache.ResultCache, func(), error) {
	switch backend {
	case "lru":
		return cache.NewLRUCacheWithCapacity(snap.SystemClock{}, capacity), func() {}, nil
	case "ristretto":
		rc, err := cache.NewRistrettoCache()
		if err != nil {
			return nil, nil, err
		}
		return rc, rc.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// seedLayout fills the engine with a synthetic duct layout: runs of
// collinear segments contributing endpoints, midpoints, and centerline
// points, plus a sparse background grid.
func seedLayout(eng *engine.Engine, rng *rand.Rand, n int) error {
	types := []snap.PointType{
		snap.TypeEndpoint,
		snap.TypeEndpoint,
		snap.TypeMidpoint,
		snap.TypeCenterline,
		snap.TypeCenterline,
		snap.TypeIntersection,
		snap.TypeGrid,
		snap.TypeGrid,
	}
	priorities := map[snap.PointType]int{
		snap.TypeEndpoint:      1,
		snap.TypeIntersection:  2,
		snap.TypeMidpoint:      3,
		snap.TypeCenterline:    4,
		snap.TypePerpendicular: 5,
		snap.TypeGrid:          6,
	}

	for i := 0; i < n; i++ {
		t := types[rng.Intn(len(types))]
		p := snap.Point{
			ID:       uuid.NewString(),
			Type:     t,
			Position: geometry.Pt(rng.Float64()*benchLayoutExtent, rng.Float64()*benchLayoutExtent),
			Priority: priorities[t],
			IsActive: true,
		}
		if err := eng.AddSnapPoint(p); err != nil {
			return err
		}
	}
	return nil
}

// replayTrace walks a jittered pointer across the layout, mostly
// revisiting the current position the way a real pointer stream does.
// Returns the number of snapped results.
func replayTrace(eng *engine.Engine, rng *rand.Rand, queries int) int {
	pos := geometry.Pt(benchLayoutExtent/2, benchLayoutExtent/2)
	snapped := 0

	for i := 0; i < queries; i++ {
		if rng.Float64() > benchRevisitRate {
			pos = geometry.Pt(
				pos.X+(rng.Float64()-0.5)*40,
				pos.Y+(rng.Float64()-0.5)*40,
			)
		}
		res := eng.FindClosestSnapPoint(pos, snap.QueryOptions{})
		if res.Snapped {
			snapped++
		}
	}
	return snapped
}
