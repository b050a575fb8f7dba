package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/bluesky-social/profiledir/directory"
	"github.com/bluesky-social/profiledir/pkg/env"
	"github.com/bluesky-social/profiledir/pkg/robusthttp"
	"github.com/bluesky-social/profiledir/store"
	"github.com/bluesky-social/profiledir/util/svcutil"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "profiles",
		Usage:   "look up user profiles and their followers in a remote directory",
		Version: env.Short(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Usage:   "method, hostname, and port of the directory API",
				Value:   directory.DefaultHost,
				EnvVars: []string{"PROFILES_HOST"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "overall deadline for each command (0 for none)",
				Value:   30 * time.Second,
				EnvVars: []string{"PROFILES_TIMEOUT"},
			},
			&cli.BoolFlag{
				Name:    "json",
				Usage:   "print results as JSON instead of text",
				EnvVars: []string{"PROFILES_JSON"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log verbosity level (eg: warn, info, debug)",
				Value:   "warn",
				EnvVars: []string{"PROFILES_LOG_LEVEL", "GO_LOG_LEVEL", "LOG_LEVEL"},
			},
		},
		Before: func(cctx *cli.Context) error {
			svcutil.ConfigLogger(cctx, os.Stderr)
			return nil
		},
	}
	app.Commands = []*cli.Command{
		&cli.Command{
			Name:      "lookup",
			Usage:     "look up a profile, along with its followers and following lists",
			ArgsUsage: "<handle>",
			Action:    runLookup,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "no-relations",
					Usage: "skip loading followers and following lists",
				},
			},
		},
		&cli.Command{
			Name:      "followers",
			Usage:     "list the followers of a user",
			ArgsUsage: "<handle>",
			Action:    runFollowers,
		},
		&cli.Command{
			Name:      "following",
			Usage:     "list the users a user follows",
			ArgsUsage: "<handle>",
			Action:    runFollowing,
		},
		&cli.Command{
			Name:   "watch",
			Usage:  "interactive lookups: reads one handle per line from stdin",
			Action: runWatch,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "metrics-listen",
					Usage:   "IP or address, and port, to listen on for metrics APIs (empty to disable)",
					EnvVars: []string{"PROFILES_METRICS_LISTEN"},
				},
			},
		},
	}
	return app.Run(args)
}

func configDirectory(cctx *cli.Context) *directory.APIDirectory {
	dir := directory.NewAPIDirectory(cctx.String("host"))
	if timeout := cctx.Duration("timeout"); timeout > 0 {
		dir.Client = robusthttp.NewClient(robusthttp.WithTimeout(timeout))
	}
	return &dir
}

func configStore(cctx *cli.Context) *store.Store {
	return store.NewStore(configDirectory(cctx))
}

// Context for a one-shot command, bounded by the --timeout flag.
func commandContext(cctx *cli.Context) (context.Context, context.CancelFunc) {
	if timeout := cctx.Duration("timeout"); timeout > 0 {
		return context.WithTimeout(cctx.Context, timeout)
	}
	return context.WithCancel(cctx.Context)
}

func requireHandleArg(cctx *cli.Context) (string, error) {
	raw := cctx.Args().First()
	if raw == "" {
		return "", fmt.Errorf("need to provide handle as an argument")
	}
	return raw, nil
}

func runLookup(cctx *cli.Context) error {
	raw, err := requireHandleArg(cctx)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cctx)
	defer cancel()

	s := configStore(cctx)
	res, err := s.LookupUser(ctx, raw).Wait(ctx)
	if err != nil {
		return err
	}
	if res.State.Status == store.StatusFound && !cctx.Bool("no-relations") {
		followers, following := s.LoadRelationsFor(ctx, res)
		if _, err := followers.Wait(ctx); err != nil {
			return err
		}
		if _, err := following.Wait(ctx); err != nil {
			return err
		}
	}

	snap := s.Snapshot()
	if cctx.Bool("json") {
		if err := renderJSON(os.Stdout, snap); err != nil {
			return err
		}
	} else {
		renderSnapshot(os.Stdout, snap)
	}
	return exitStatus(snap.Lookup)
}

func runFollowers(cctx *cli.Context) error {
	return runList(cctx, "followers", (*store.Store).LoadFollowers)
}

func runFollowing(cctx *cli.Context) error {
	return runList(cctx, "following", (*store.Store).LoadFollowing)
}

func runList(cctx *cli.Context, title string, load func(*store.Store, context.Context, string) *store.Pending[store.ListResult]) error {
	raw, err := requireHandleArg(cctx)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cctx)
	defer cancel()

	res, err := load(configStore(cctx), ctx, raw).Wait(ctx)
	if err != nil {
		return err
	}

	if cctx.Bool("json") {
		if err := renderJSON(os.Stdout, res.List); err != nil {
			return err
		}
	} else {
		renderList(os.Stdout, title, res.List)
	}
	if res.List.Failed() {
		return cli.Exit("", 1)
	}
	return nil
}

// Non-zero exit for anything but a found profile, without repeating the rendered message.
func exitStatus(ls store.LookupState) error {
	switch ls.Status {
	case store.StatusFound:
		return nil
	case store.StatusNotFound:
		return cli.Exit("", 2)
	default:
		return cli.Exit("", 1)
	}
}
