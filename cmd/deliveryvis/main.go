// Command deliveryvis plays back recorded delivery episodes in a window.
package main

import (
	"flag"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/RexSXP/marl-delivery/internal/replay"
	"github.com/RexSXP/marl-delivery/internal/vis"
)

func main() {
	replayPath := flag.String("replay", "", "replay file to view (.jsonl.zst)")
	flag.Parse()

	if *replayPath == "" {
		log.Fatal("missing -replay")
	}
	ep, err := replay.ReadFile(*replayPath)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("Delivery Replay"),
			app.Size(unit.Dp(1200), unit.Dp(860)),
		)

		viewer, err := vis.NewApp(ep)
		if err != nil {
			log.Fatal(err)
		}
		if err := viewer.Run(window); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}
