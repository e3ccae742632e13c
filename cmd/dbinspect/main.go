// Package main inspects the badger store shared by the cache and the export queue.
//
// Usage:
//
//	go run ./cmd/dbinspect cache
//	go run ./cmd/dbinspect queue --state deadletter
//	go run ./cmd/dbinspect requeue --id <message-id>
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/urfave/cli/v3"

	"github.com/openmusic/openmusic-server/internal/cache"
	"github.com/openmusic/openmusic-server/internal/config"
	"github.com/openmusic/openmusic-server/internal/kv"
	"github.com/openmusic/openmusic-server/internal/queue"
)

func main() {
	app := &cli.Command{
		Name:  "dbinspect",
		Usage: "Inspect OpenMusic cache entries and queue messages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "metadata-path",
				Aliases: []string{"m"},
				Usage:   "Base data directory (defaults to METADATA_PATH or ~/.openmusic)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "cache",
				Usage:  "List live cache entries",
				Action: withKV(listCache),
			},
			{
				Name:  "queue",
				Usage: "List messages of the export queue",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "state",
						Usage: "Message state: queue, inflight or deadletter",
						Value: string(queue.StatePending),
					},
				},
				Action: withKV(listQueue),
			},
			{
				Name:  "requeue",
				Usage: "Move a dead-lettered export message back to the queue",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Message ID",
						Required: true,
					},
				},
				Action: withKV(requeue),
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "dbinspect: %v\n", err)
		os.Exit(1)
	}
}

type kvAction func(ctx context.Context, cmd *cli.Command, cfg *config.Config, db *badger.DB) error

// withKV loads the configuration and opens the badger store around action.
// The server holds an exclusive lock on the store, so stop it first.
func withKV(action kvAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		var args []string
		if p := cmd.String("metadata-path"); p != "" {
			args = append(args, "-metadata-path", p)
		}
		cfg, err := config.Load(args)
		if err != nil {
			return err
		}

		db, err := kv.Open(cfg.Cache.Path, nil)
		if err != nil {
			return err
		}
		defer db.Close()

		return action(ctx, cmd, cfg, db)
	}
}

func listCache(_ context.Context, _ *cli.Command, _ *config.Config, db *badger.DB) error {
	entries, err := cache.NewBadger(db).Scan()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE\tEXPIRES")
	for _, e := range entries {
		expires := "never"
		if !e.ExpiresAt.IsZero() {
			expires = time.Until(e.ExpiresAt).Round(time.Second).String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Key, e.Value, expires)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d entries\n", len(entries))
	return nil
}

func listQueue(ctx context.Context, cmd *cli.Command, cfg *config.Config, db *badger.DB) error {
	state := queue.State(cmd.String("state"))
	switch state {
	case queue.StatePending, queue.StateInflight, queue.StateDeadLetter:
	default:
		return fmt.Errorf("unknown state %q", state)
	}

	msgs, err := queue.New(db).List(ctx, state, cfg.Queue.ExportQueue)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tENQUEUED\tATTEMPTS\tBODY\tLAST ERROR")
	for _, m := range msgs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			m.ID, m.EnqueuedAt.Format(time.RFC3339), m.Attempts, m.Body, m.LastError)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d messages in %s %s\n", len(msgs), state, cfg.Queue.ExportQueue)
	return nil
}

func requeue(ctx context.Context, cmd *cli.Command, cfg *config.Config, db *badger.DB) error {
	id := cmd.String("id")
	if err := queue.New(db).Requeue(ctx, cfg.Queue.ExportQueue, id); err != nil {
		return fmt.Errorf("requeue %s: %w", id, err)
	}
	fmt.Printf("message %s moved back to %s\n", id, cfg.Queue.ExportQueue)
	return nil
}
