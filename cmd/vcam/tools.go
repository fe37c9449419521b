package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/yegorvk/vcam/internal/devtools"
	"github.com/yegorvk/vcam/internal/output"
	"github.com/yegorvk/vcam/internal/shared"
)

// runTools runs the maintenance suite: fix rewrites sources, check only
// verifies. Exits nonzero when any tool fails.
func runTools(fix bool) {
	cfg := loadConfig()

	mode := devtools.ModeCheck
	name := "check"
	if fix {
		mode = devtools.ModeFix
		name = "fix"
	}

	fs := flag.NewFlagSet(name, flag.ExitOnError)
	dir := fs.String("dir", ".", "Workspace directory")
	fs.Parse(os.Args[2:])

	workspace, err := os.Getwd()
	if *dir != "." {
		workspace = *dir
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving workspace: %v\n", err)
		os.Exit(1)
	}

	suite := devtools.NewSuite(workspace, cfg.Tools, nil)
	results, ok, err := suite.Run(context.Background(), mode)
	if err != nil {
		if errors.Is(err, devtools.ErrLocked) {
			fmt.Fprintln(os.Stderr, shared.WarningStyle.Render("Another run is in progress or in cooldown"))
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	renderer := output.NewReportRenderer()
	fmt.Print(renderer.Render(fmt.Sprintf("vcam %s", name), results))

	if !ok {
		os.Exit(1)
	}
}
