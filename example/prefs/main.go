// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/z5labs/keystone/example/prefs/preferences"
	"github.com/z5labs/keystone/internal/otelslog"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type options struct {
	name     string
	logLevel string
	refresh  time.Duration
	trace    bool
}

func buildCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "prefs",
		Short:         "Show and update the process wide preferences",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.name, "name", "", "display name")
	flags.StringVar(&opts.logLevel, "log-level", "", "minimum log level (debug, info, warn, error)")
	flags.DurationVar(&opts.refresh, "refresh", 0, "refresh interval")
	flags.BoolVar(&opts.trace, "trace", false, "write spans to stderr")

	return cmd
}

func run(cmd *cobra.Command, opts options) (err error) {
	flags := cmd.Flags()

	var level slog.Level
	if flags.Changed("log-level") {
		err = level.UnmarshalText([]byte(opts.logLevel))
		if err != nil {
			return err
		}
	}

	if opts.trace {
		tp, tpErr := newTracerProvider(cmd.ErrOrStderr())
		if tpErr != nil {
			return tpErr
		}
		otel.SetTracerProvider(tp)
		defer func() {
			err = errors.Join(err, tp.Shutdown(context.Background()))
		}()
	}

	p, err := preferences.Default()
	if err != nil {
		return err
	}

	ctx, span := otel.Tracer("prefs").Start(cmd.Context(), "prefs.apply")
	defer span.End()

	levelVar := new(slog.LevelVar)
	levelVar.Set(p.LogLevel())
	log := otelslog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: levelVar}))

	sub := p.Subscribe(func(member string) error {
		if member == preferences.LogLevelMember {
			levelVar.Set(p.LogLevel())
		}
		log.InfoContext(ctx, "preference changed", slog.String("member", member))
		return nil
	})
	defer p.Unsubscribe(sub)

	if flags.Changed("name") {
		err = p.SetName(opts.name)
		if err != nil {
			return err
		}
	}
	if flags.Changed("log-level") {
		err = p.SetLogLevel(level)
		if err != nil {
			return err
		}
	}
	if flags.Changed("refresh") {
		err = p.SetRefreshInterval(opts.refresh)
		if err != nil {
			return err
		}
	}

	printPreferences(cmd.OutOrStdout(), p)
	return nil
}

func newTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp)), nil
}

func printPreferences(w io.Writer, p *preferences.Preferences) {
	fmt.Fprintf(w, "name: %s\n", p.Name())
	fmt.Fprintf(w, "log_level: %s\n", p.LogLevel())
	fmt.Fprintf(w, "refresh_interval: %s\n", p.RefreshInterval())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := buildCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}
