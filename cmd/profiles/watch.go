package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bluesky-social/profiledir/pkg/metrics"
	"github.com/bluesky-social/profiledir/store"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const retryCommand = "/retry"

func runWatch(cctx *cli.Context) error {
	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := configStore(cctx)
	s.Logger = slog.Default().With("system", "store", "session", uuid.NewString())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metrics.RunServer(ctx, cctx.String("metrics-listen"))
	})
	g.Go(func() error {
		s.Watch(ctx, func(snap store.Snapshot) {
			fmt.Fprintf(os.Stdout, "--- [%d]\n", snap.Version)
			renderSnapshot(os.Stdout, snap)
		})
		return nil
	})
	g.Go(func() error {
		defer stop()
		return readHandles(ctx, os.Stdin, s)
	})
	return g.Wait()
}

// Runs a lookup for each input line until r is exhausted or ctx ends.
func readHandles(ctx context.Context, r io.Reader, s *store.Store) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	var last string
	var pending <-chan struct{}
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				// let the final lookup finish before the session ends
				if pending != nil {
					select {
					case <-pending:
					case <-ctx.Done():
					}
				}
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			raw := strings.TrimSpace(line)
			if raw == retryCommand {
				raw = last
			}
			last = raw
			pending = lookup(ctx, s, raw)
		}
	}
}

// Starts a lookup, followed by both relation lists if it is found. The returned channel is closed once everything has settled.
func lookup(ctx context.Context, s *store.Store, raw string) <-chan struct{} {
	done := make(chan struct{})
	p := s.LookupUser(ctx, raw)
	go func() {
		defer close(done)
		res, err := p.Wait(ctx)
		if err != nil {
			return
		}
		followers, following := s.LoadRelationsFor(ctx, res)
		_, _ = followers.Wait(ctx)
		_, _ = following.Wait(ctx)
	}()
	return done
}
