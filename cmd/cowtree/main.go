// Command cowtree builds authenticated maps from key=value listings,
// inspects their tree structure and saves or restores them by root digest.
package main

import (
	"fmt"
	"io"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/carlmjohnson/versioninfo"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "cowtree: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	app := cli.App{
		Name:    "cowtree",
		Usage:   "build, inspect and persist copy-on-write Merkle maps",
		Version: versioninfo.Short(),
		Writer:  stdout,
	}
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "trace",
			Usage:   "trace level (error, info, debug)",
			Value:   "error",
			EnvVars: []string{"COWTREE_TRACE"},
		},
	}
	app.Before = setupTracing
	storeFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "store",
			Usage:    "directory of the snapshot store",
			Required: true,
			EnvVars:  []string{"COWTREE_STORE"},
		},
		&cli.BoolFlag{
			Name:    "pebble",
			Usage:   "keep snapshots in a pebble database instead of plain files",
			EnvVars: []string{"COWTREE_PEBBLE"},
		},
	}
	app.Commands = []*cli.Command{
		&cli.Command{
			Name:      "build",
			Usage:     "build a map from key=value lines and print its root hash",
			ArgsUsage: "<file|->",
			Action:    runBuild,
		},
		&cli.Command{
			Name:      "dump",
			Usage:     "print the node structure of a map",
			ArgsUsage: "<file|->",
			Action:    runDump,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "no-color",
					Usage: "never color the output",
				},
			},
		},
		&cli.Command{
			Name:      "dot",
			Usage:     "print the node structure of a map in Graphviz format",
			ArgsUsage: "<file|->",
			Action:    runDot,
		},
		&cli.Command{
			Name:      "save",
			Usage:     "save a map to the snapshot store",
			ArgsUsage: "<file|->",
			Action:    runSave,
			Flags:     storeFlags,
		},
		&cli.Command{
			Name:      "show",
			Usage:     "print the entries of a stored snapshot",
			ArgsUsage: "<digest>",
			Action:    runShow,
			Flags:     storeFlags,
		},
	}
	return app.Run(args)
}

func setupTracing(cctx *cli.Context) error {
	gtrace.CoreTracer = gologadapter.New()
	switch level := cctx.String("trace"); level {
	case "error":
		gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	case "info":
		gtrace.CoreTracer.SetTraceLevel(tracing.LevelInfo)
	case "debug":
		gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	default:
		return fmt.Errorf("unknown trace level %q", level)
	}
	return nil
}
