// Command ipk24chat is the IPK24-CHAT client: it authenticates, joins
// channels, and exchanges chat messages with a server over either TCP or
// UDP, per spec.md.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"ipk24chat/internal/config"
	"ipk24chat/internal/logging"
	"ipk24chat/internal/reactor"
	"ipk24chat/internal/transport"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Parse(os.Args[1:], os.Stdout)
	if err != nil {
		if err == config.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// A fresh correlation id per run, so interleaved log lines from multiple
	// concurrently-running clients (e.g. during local testing against a
	// virtual peer) can be told apart.
	sessionID := uuid.New().String()
	log := logging.New(os.Stderr, fmt.Sprintf("[ipk24chat %s]", sessionID[:8]))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Best-effort Bye on Ctrl-C: cancel the context rather than acting on
	// the transport directly from the signal handler, since the reactor is
	// the only goroutine allowed to touch session/reliability state
	// (spec.md §5 "Cancellation").
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Printf("interrupt received, shutting down")
		cancel()
	}()

	dialCtx, dialCancel := context.WithTimeout(ctx, 5*time.Second)
	tr, err := transport.Dial(dialCtx, cfg.Transport, cfg.Host, cfg.Port)
	dialCancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR: %v\n", err)
		return 1
	}

	stdin := reactor.NewLineReader(os.Stdin)
	opts := reactor.Options{
		Timeout:    time.Duration(cfg.TimeoutMs) * time.Millisecond,
		MaxRetries: cfg.MaxRetries,
	}
	r := reactor.New(tr, cfg.Transport == transport.KindUDP, stdin, os.Stdout, os.Stderr, log, opts)

	if err := r.Run(ctx); err != nil {
		log.Printf("session ended: %v", err)
		return 1
	}
	return 0
}
