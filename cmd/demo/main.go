package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.design/x/clipboard"
	"golang.org/x/term"

	"github.com/intuitionamiga/ethelcore/frame"
)

func main() {
	manifestPath := flag.String("manifest", "", "Layout manifest JSON path (default: built-in demo layout)")
	tickMillis := flag.Int("tick", 6, "Logic thread fixed step, in milliseconds")
	windowW := flag.Int("width", 1280, "Window width")
	windowH := flag.Int("height", 720, "Window height")
	verbose := flag.Bool("v", false, "Print per-frame diagnostics")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: demo [options]\n\nRuns the frame-pipeline demo scene.\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	scene, err := newScene(*manifestPath, *windowW, *windowH)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer scene.Close()
	scene.verbose = *verbose

	restoreTerminal := enableRawStatReadout(scene)
	defer restoreTerminal()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	orchestrator := frame.NewOrchestrator(
		time.Duration(*tickMillis)*time.Millisecond,
		scene.stateStep,
		scene.renderPreFrame,
		scene.renderFrame,
		scene.barrier,
	)

	go func() {
		if err := orchestrator.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "error: orchestrator stopped: %v\n", err)
			os.Exit(1)
		}
	}()

	ebiten.SetWindowSize(*windowW, *windowH)
	ebiten.SetWindowTitle("ethelcore frame pipeline demo")
	ebiten.SetWindowResizable(true)
	ebiten.SetVsyncEnabled(true)

	if err := ebiten.RunGame(scene); err != nil && err != ebiten.Termination {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// enableRawStatReadout puts stdin in raw mode so a single keypress (no
// Enter needed) can quit the demo ('q' or Ctrl-C) or copy the last
// entity-mapping snapshot to the clipboard ('c'). Returns a restore function; no-op and a
// no-op restore when stdin isn't a terminal.
func enableRawStatReadout(scene *scene) func() {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "demo: failed to set raw mode: %v\n", err)
		return func() {}
	}

	go pollStatKeys(fd, scene)

	return func() {
		_ = term.Restore(fd, oldState)
	}
}

func pollStatKeys(fd int, scene *scene) {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return
		}
		switch buf[0] {
		case 'q', 'Q', 3: // Ctrl-C
			os.Exit(0)
		case 'c', 'C':
			copyEntityDumpToClipboard(scene)
		}
	}
}

func copyEntityDumpToClipboard(scene *scene) {
	if clipboard.Init() != nil {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(scene.entityDump()))
}
