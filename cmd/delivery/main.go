// Command delivery runs package delivery episodes on grid maps.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/RexSXP/marl-delivery/internal/agent"
	"github.com/RexSXP/marl-delivery/internal/core"
	"github.com/RexSXP/marl-delivery/internal/replay"
	"github.com/RexSXP/marl-delivery/internal/sim"
)

func main() {
	var (
		mapPath    = flag.String("map", "maps/map1.txt", "grid map file")
		robots     = flag.Int("robots", 5, "number of robots")
		packages   = flag.Int("packages", 20, "number of packages")
		steps      = flag.Int("steps", 100, "episode horizon in ticks")
		seed       = flag.Int64("seed", 2025, "scenario seed")
		agentName  = flag.String("agent", "greedy", "policy: greedy, planner or random")
		agentSeed  = flag.Int64("agent-seed", 1, "policy seed")
		replayOut  = flag.String("replay", "", "record the episode to this file")
		verifyIn   = flag.String("verify", "", "verify a recorded replay instead of running")
		metricsOut = flag.String("metrics", "", "write episode metrics JSON to this file")
		verbose    = flag.Bool("v", false, "print the board every tick")
	)
	flag.Parse()

	if *verifyIn != "" {
		verifyReplay(*verifyIn)
		return
	}

	g, err := core.LoadMap(*mapPath)
	if err != nil {
		log.Fatal(err)
	}

	cfg := sim.DefaultConfig()
	cfg.MaxTimeSteps = *steps
	cfg.NumRobots = *robots
	cfg.NumPackages = *packages
	cfg.Seed = *seed

	env, err := sim.New(g, cfg)
	if err != nil {
		log.Fatal(err)
	}
	pol, err := agent.New(*agentName, *agentSeed)
	if err != nil {
		log.Fatal(err)
	}

	snap, err := env.Reset()
	if err != nil {
		log.Fatal(err)
	}
	pol.Init(snap)

	var rec *replay.Writer
	if *replayOut != "" {
		rec, err = replay.Create(*replayOut, replay.NewHeader(*mapPath, pol.Name(), *agentSeed, env, snap))
		if err != nil {
			log.Fatal(err)
		}
	}

	fmt.Printf("map %s: %dx%d, %d robots, %d packages, horizon %d, seed %d, agent %s\n",
		*mapPath, g.Rows(), g.Cols(), cfg.NumRobots, cfg.NumPackages, cfg.MaxTimeSteps, cfg.Seed, pol.Name())
	if *verbose {
		fmt.Print(renderBoard(g, env.Dump()))
	}

	start := time.Now()
	obs := snap
	for !env.Done() {
		actions := pol.Actions(obs)
		res, err := env.Step(actions)
		if err != nil {
			log.Fatal(err)
		}
		obs = res.Snapshot

		if rec != nil {
			if err := rec.WriteTick(replay.Record(env, actions, res)); err != nil {
				log.Fatal(err)
			}
		}
		if *verbose {
			fmt.Printf("t=%3d reward=%+.3f total=%.3f\n", env.Tick(), res.Reward, env.TotalReward())
			fmt.Print(renderBoard(g, env.Dump()))
		}
	}
	elapsed := time.Since(start)

	if rec != nil {
		if err := rec.Close(); err != nil {
			log.Fatal(err)
		}
	}

	m := env.Metrics()
	fmt.Printf("\nfinished in %d ticks (%.2fms)\n", m.Ticks, float64(elapsed.Microseconds())/1000.0)
	fmt.Printf("total reward: %.2f\n", m.TotalReward)
	fmt.Printf("delivered:    %d/%d (%d on time, %d late)\n",
		m.Delivered, m.Packages, m.DeliveredOnTime, m.DeliveredLate)

	if *metricsOut != "" {
		if err := m.Export(*metricsOut); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("metrics written to %s\n", *metricsOut)
	}
	if *replayOut != "" {
		fmt.Printf("replay written to %s\n", *replayOut)
	}
}

func verifyReplay(path string) {
	ep, err := replay.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("replay %s: map %s, agent %s, %d robots, %d packages, %d ticks\n",
		path, ep.Header.MapName, ep.Header.Agent, ep.Header.Config.NumRobots,
		ep.Header.Config.NumPackages, len(ep.Ticks))

	checked, err := replay.Verify(ep)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("replay ok: %d ticks verified\n", checked)
}

// renderBoard draws the state as text, one character per cell: '#' walls,
// robots by index, 'p' waiting parcels, 'x' open targets.
func renderBoard(g *core.Grid, d sim.StateDump) string {
	rows := make([][]byte, g.Rows())
	for r := range rows {
		rows[r] = make([]byte, g.Cols())
		for c := range rows[r] {
			if g.IsFree(core.Cell{Row: r, Col: c}) {
				rows[r][c] = '.'
			} else {
				rows[r][c] = '#'
			}
		}
	}
	for _, p := range d.Packages {
		switch p.Status {
		case core.StatusWaiting:
			rows[p.StartRow][p.StartCol] = 'p'
			rows[p.TargetRow][p.TargetCol] = 'x'
		case core.StatusInTransit:
			rows[p.TargetRow][p.TargetCol] = 'x'
		}
	}
	for i, r := range d.Robots {
		rows[r.Row][r.Col] = byte('0' + i%10)
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.Write(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}
