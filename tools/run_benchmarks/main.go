// Package main provides the benchmark runner for delivery policies.
// Runs every (map, agent, episode) combination in-process and collects
// per-episode metrics.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RexSXP/marl-delivery/internal/agent"
	"github.com/RexSXP/marl-delivery/internal/core"
	"github.com/RexSXP/marl-delivery/internal/results"
	"github.com/RexSXP/marl-delivery/internal/sim"
)

// EpisodeResult stores the outcome of a single episode run.
type EpisodeResult struct {
	ID          string
	Timestamp   string
	GoVersion   string
	OS          string
	Arch        string
	Map         string
	Agent       string
	Robots      int
	Packages    int
	Horizon     int
	Seed        int64
	AgentSeed   int64
	RuntimeMs   float64
	Ticks       int
	TotalReward float64
	Delivered   int
	OnTime      int
	Late        int
}

func main() {
	mapsGlob := flag.String("maps", "maps/*.txt", "glob of map files to benchmark")
	agentList := flag.String("agents", "greedy,planner,random", "comma-separated policies")
	episodes := flag.Int("episodes", 5, "episodes per map and agent pairing")
	robots := flag.Int("robots", 5, "number of robots")
	packages := flag.Int("packages", 20, "number of packages")
	steps := flag.Int("steps", 100, "episode horizon in ticks")
	baseSeed := flag.Int64("seed", 2025, "base scenario seed; episode k uses seed+k")
	outputFile := flag.String("output", "evidence/benchmark_results.csv", "output CSV file")
	dbPath := flag.String("db", "", "optional SQLite episode index")
	verbose := flag.Bool("verbose", false, "verbose output")
	flag.Parse()

	files, err := filepath.Glob(*mapsGlob)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error globbing maps: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No map files match %s\n", *mapsGlob)
		fmt.Fprintf(os.Stderr, "Run gen_maps first: go run ./tools/gen_maps -output maps\n")
		os.Exit(1)
	}
	sort.Strings(files)

	agents := strings.Split(*agentList, ",")

	var store *results.Store
	if *dbPath != "" {
		store, err = results.Open(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening results db: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	if dir := filepath.Dir(*outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			os.Exit(1)
		}
	}

	totalRuns := len(files) * len(agents) * *episodes
	currentRun := 0

	fmt.Printf("Running benchmarks: %d maps x %d agents x %d episodes = %d runs\n",
		len(files), len(agents), *episodes, totalRuns)
	fmt.Println()

	var all []*EpisodeResult
	for _, file := range files {
		g, err := core.LoadMap(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", file, err)
			continue
		}
		mapName := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

		for _, agentName := range agents {
			for k := 0; k < *episodes; k++ {
				currentRun++
				seed := *baseSeed + int64(k)
				if *verbose {
					fmt.Printf("[%d/%d] %s / %s / seed %d ... ", currentRun, totalRuns, mapName, agentName, seed)
				} else {
					fmt.Printf("\r[%d/%d] Running...", currentRun, totalRuns)
				}

				res, err := runEpisode(g, mapName, agentName, *robots, *packages, *steps, seed, int64(k+1))
				if err != nil {
					if *verbose {
						fmt.Printf("FAILED: %v\n", err)
					} else {
						fmt.Fprintf(os.Stderr, "\n%s / %s: %v\n", mapName, agentName, err)
					}
					continue
				}
				all = append(all, res)

				if store != nil {
					if _, err := store.InsertEpisode(toRow(res)); err != nil {
						fmt.Fprintf(os.Stderr, "\nError indexing episode: %v\n", err)
					}
				}
				if *verbose {
					fmt.Printf("OK (%.2fms, reward=%.2f, delivered=%d/%d)\n",
						res.RuntimeMs, res.TotalReward, res.Delivered, res.Packages)
				}
			}
		}
	}
	fmt.Println()

	if err := writeCSV(all, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Results written to: %s\n", *outputFile)
	if *dbPath != "" {
		fmt.Printf("Episodes indexed in: %s\n", *dbPath)
	}

	printSummary(all)
}

// runEpisode plays one full episode and measures it.
func runEpisode(g *core.Grid, mapName, agentName string, robots, packages, steps int, seed, agentSeed int64) (*EpisodeResult, error) {
	cfg := sim.DefaultConfig()
	cfg.NumRobots = robots
	cfg.NumPackages = packages
	cfg.MaxTimeSteps = steps
	cfg.Seed = seed

	env, err := sim.New(g, cfg)
	if err != nil {
		return nil, err
	}
	pol, err := agent.New(agentName, agentSeed)
	if err != nil {
		return nil, err
	}

	snap, err := env.Reset()
	if err != nil {
		return nil, err
	}
	pol.Init(snap)

	start := time.Now()
	obs := snap
	for !env.Done() {
		res, err := env.Step(pol.Actions(obs))
		if err != nil {
			return nil, err
		}
		obs = res.Snapshot
	}
	elapsed := time.Since(start)

	m := env.Metrics()
	return &EpisodeResult{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		GoVersion:   runtime.Version(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		Map:         mapName,
		Agent:       agentName,
		Robots:      robots,
		Packages:    packages,
		Horizon:     steps,
		Seed:        seed,
		AgentSeed:   agentSeed,
		RuntimeMs:   float64(elapsed.Microseconds()) / 1000.0,
		Ticks:       m.Ticks,
		TotalReward: m.TotalReward,
		Delivered:   m.Delivered,
		OnTime:      m.DeliveredOnTime,
		Late:        m.DeliveredLate,
	}, nil
}

func toRow(r *EpisodeResult) results.EpisodeRow {
	return results.EpisodeRow{
		ID:          r.ID,
		Map:         r.Map,
		Agent:       r.Agent,
		Robots:      r.Robots,
		Packages:    r.Packages,
		Horizon:     r.Horizon,
		Seed:        r.Seed,
		AgentSeed:   r.AgentSeed,
		Ticks:       r.Ticks,
		TotalReward: r.TotalReward,
		Delivered:   r.Delivered,
		OnTime:      r.OnTime,
		Late:        r.Late,
		RuntimeMS:   int64(r.RuntimeMs),
	}
}

func writeCSV(all []*EpisodeResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"id", "timestamp", "go_version", "os", "arch",
		"map", "agent", "robots", "packages", "horizon", "seed", "agent_seed",
		"runtime_ms", "ticks", "total_reward", "delivered", "on_time", "late",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range all {
		row := []string{
			r.ID, r.Timestamp, r.GoVersion, r.OS, r.Arch,
			r.Map, r.Agent, fmt.Sprintf("%d", r.Robots), fmt.Sprintf("%d", r.Packages),
			fmt.Sprintf("%d", r.Horizon), fmt.Sprintf("%d", r.Seed), fmt.Sprintf("%d", r.AgentSeed),
			fmt.Sprintf("%.3f", r.RuntimeMs), fmt.Sprintf("%d", r.Ticks),
			fmt.Sprintf("%.4f", r.TotalReward), fmt.Sprintf("%d", r.Delivered),
			fmt.Sprintf("%d", r.OnTime), fmt.Sprintf("%d", r.Late),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(all []*EpisodeResult) {
	type agg struct {
		runs      int
		ticks     int
		reward    float64
		delivered int
		onTime    int
	}
	metrics := make(map[string]*agg)
	for _, r := range all {
		key := r.Map + " / " + r.Agent
		m, ok := metrics[key]
		if !ok {
			m = &agg{}
			metrics[key] = m
		}
		m.runs++
		m.ticks += r.Ticks
		m.reward += r.TotalReward
		m.delivered += r.Delivered
		m.onTime += r.OnTime
	}

	fmt.Println("\n=== BENCHMARK SUMMARY ===")
	fmt.Printf("%-32s %6s %9s %10s %11s %8s\n",
		"Map / Agent", "Runs", "AvgTicks", "AvgReward", "AvgDeliver", "OnTime%")
	fmt.Println(strings.Repeat("-", 80))

	var keys []string
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		m := metrics[k]
		onTimePct := 0.0
		if m.delivered > 0 {
			onTimePct = float64(m.onTime) / float64(m.delivered) * 100
		}
		fmt.Printf("%-32s %6d %9.1f %10.2f %11.1f %7.1f%%\n",
			k, m.runs,
			float64(m.ticks)/float64(m.runs),
			m.reward/float64(m.runs),
			float64(m.delivered)/float64(m.runs),
			onTimePct)
	}
}
