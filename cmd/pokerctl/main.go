// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command pokerctl takes part in an estimation session from the terminal.
//
//	pokerctl [-server URL] <command> [flags] [args]
//
// Commands: create, join, vote, reveal, reset, show, watch, delete.
// The server defaults to $POKER_SERVER, then http://localhost:3318.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielhkuo/quickly-estimate/client"
	"github.com/danielhkuo/quickly-estimate/models"
	"github.com/danielhkuo/quickly-estimate/viewer"
)

const defaultServer = "http://localhost:3318"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pokerctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", envOr("POKER_SERVER", defaultServer), "server base URL")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: pokerctl [-server URL] create|join|vote|reveal|reset|show|watch|delete [flags]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	c := client.New(*server, nil)
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	var err error
	switch cmd {
	case "create":
		err = cmdCreate(ctx, c, rest, stdout)
	case "join":
		err = cmdJoin(ctx, c, rest, stdout)
	case "vote":
		err = cmdVote(ctx, c, rest, stdout)
	case "reveal":
		err = cmdAction(ctx, rest, stdout, "reveal", c.Reveal)
	case "reset":
		err = cmdAction(ctx, rest, stdout, "reset", c.Reset)
	case "show":
		err = cmdShow(ctx, c, rest, stdout)
	case "watch":
		err = cmdWatch(ctx, c, rest, stdout)
	case "delete":
		err = cmdDelete(ctx, c, rest, stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 2
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// sessionFlags are shared by every command acting on an existing session.
type sessionFlags struct {
	session string
	as      string
}

func newSessionFlagSet(name string, sf *sessionFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&sf.session, "session", "", "session id")
	fs.StringVar(&sf.as, "as", "", "your participant id")
	return fs
}

func (sf sessionFlags) requireSession() error {
	if sf.session == "" {
		return errors.New("-session is required")
	}
	return nil
}

func cmdCreate(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	name := fs.String("name", "", "your nickname (random when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := c.CreateSession(ctx, *name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "session:     %s\nparticipant: %s\nnickname:    %s\n", resp.SessionID, resp.CreatorID, resp.Nickname)
	return nil
}

func cmdJoin(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	var sf sessionFlags
	fs := newSessionFlagSet("join", &sf)
	name := fs.String("name", "", "your nickname (random when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := sf.requireSession(); err != nil {
		return err
	}

	resp, err := c.Join(ctx, sf.session, *name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "participant: %s\nnickname:    %s\n", resp.ParticipantID, resp.Nickname)
	return nil
}

func cmdVote(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	var sf sessionFlags
	fs := newSessionFlagSet("vote", &sf)
	clearVote := fs.Bool("clear", false, "withdraw your vote")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := sf.requireSession(); err != nil {
		return err
	}
	if sf.as == "" {
		return errors.New("-as is required")
	}

	var card *string
	switch {
	case *clearVote:
	case fs.NArg() == 1:
		card = client.Card(fs.Arg(0))
	default:
		return fmt.Errorf("expected one card of %v, or -clear", models.Deck)
	}

	if err := c.Vote(ctx, sf.session, sf.as, card); err != nil {
		return err
	}
	if card == nil {
		fmt.Fprintln(out, "vote cleared")
	} else {
		fmt.Fprintf(out, "voted %s\n", *card)
	}
	return nil
}

func cmdAction(ctx context.Context, args []string, out io.Writer, name string, action func(ctx context.Context, sessionID, actorID string) error) error {
	var sf sessionFlags
	fs := newSessionFlagSet(name, &sf)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := sf.requireSession(); err != nil {
		return err
	}

	if err := action(ctx, sf.session, sf.as); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s done\n", name)
	return nil
}

func cmdShow(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	var sf sessionFlags
	fs := newSessionFlagSet("show", &sf)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := sf.requireSession(); err != nil {
		return err
	}

	view, err := c.Session(ctx, sf.session, sf.as)
	if err != nil {
		return err
	}
	render(out, view, sf.as, view.CurrentVote)
	return nil
}

func cmdDelete(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	var sf sessionFlags
	fs := newSessionFlagSet("delete", &sf)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := sf.requireSession(); err != nil {
		return err
	}

	if err := c.Delete(ctx, sf.session); err != nil {
		return err
	}
	fmt.Fprintln(out, "session deleted")
	return nil
}

// cmdWatch redraws the session on every change until interrupted.
func cmdWatch(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	var sf sessionFlags
	fs := newSessionFlagSet("watch", &sf)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := sf.requireSession(); err != nil {
		return err
	}

	var v *viewer.Viewer
	v = viewer.New(c, sf.session, sf.as, viewer.WithOnChange(func(s models.SessionView) {
		fmt.Fprintln(out, "----")
		render(out, s, sf.as, v.DisplayVote())
	}))

	push := make(chan models.SessionView)
	stream, err := c.Subscribe(ctx, sf.session, sf.as)
	if err != nil {
		// polling alone still converges
		slog.Warn("live stream unavailable, polling only", "error", err)
		close(push)
	} else {
		go func() {
			defer close(push)
			if err := stream.Forward(ctx, push); err != nil && ctx.Err() == nil {
				slog.Warn("live stream ended", "error", err)
			}
		}()
	}

	err = v.Run(ctx, push)
	if stream != nil {
		stream.Leave()
		stream.Close()
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
