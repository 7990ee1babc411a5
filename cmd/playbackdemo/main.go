// Command playbackdemo plays a scenario of animations as one group and
// prints the element's final style.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/baxromumarov/playback"
	"github.com/baxromumarov/playback/internal/logging"
	"github.com/baxromumarov/playback/render"
	"github.com/baxromumarov/playback/tween"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type options struct {
	scenario  string
	fps       int
	seek      float64
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "playbackdemo",
		Short: "Play a batch of animations as one group",
		Long: `Play a batch of animations as one group.

Animations are read from a YAML scenario (--scenario) or a built-in one.
They start together, are driven frame by frame, and the command exits
once every animation has finished, printing the element's final style.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.New(logging.Config{
				Level:  opts.logLevel,
				Format: opts.logFormat,
			}, cmd.ErrOrStderr())

			sc, err := loadScenario(opts.scenario)
			if err != nil {
				return err
			}
			if opts.fps > 0 {
				sc.FPS = opts.fps
				if err := sc.validate(); err != nil {
					return err
				}
			}
			return run(cmd.Context(), sc, opts.seek, logger, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.scenario, "scenario", "", "path to a YAML scenario file")
	flags.IntVar(&opts.fps, "fps", 0, "frames per second (overrides the scenario)")
	flags.Float64Var(&opts.seek, "seek", 0, "start every animation at this position, in seconds")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format: json, text")

	return cmd
}

func run(ctx context.Context, sc Scenario, seek float64, logger *slog.Logger, out io.Writer) error {
	q := playback.NewQueue(playback.WithQueueLogger(logger))
	defer q.Close()

	el := &render.Element{}
	driver := tween.NewDriver(time.Second/time.Duration(sc.FPS), tween.WithDriverLogger(logger))

	var (
		handles  []playback.Handle
		failures []func()
	)
	for _, anim := range sc.Animations {
		if anim.Skip {
			handles = append(handles, nil)
			continue
		}

		a := tween.New(anim.From, anim.To, anim.duration,
			tween.WithEasing(anim.easing),
			tween.WithQueue(q),
			tween.WithLogger(logger.With(slog.String("property", anim.Property))),
			tween.WithOnUpdate(renderer(el, anim.Property)),
		)
		handles = append(handles, a)
		driver.Add(a)

		if anim.Fail != "" {
			failAfter := anim.duration / 2
			msg := anim.Fail
			failures = append(failures, func() {
				time.AfterFunc(failAfter, func() { a.Fail(errors.New(msg)) })
			})
		}
	}

	policy := playback.FailFast
	if sc.Collect {
		policy = playback.Collect
	}
	group := playback.NewGroup(handles,
		playback.WithQueue(q),
		playback.WithPolicy(policy),
		playback.WithLogger(logger),
		playback.WithOnMemberDone(func(info playback.MemberInfo, err error) {
			logger.Info("member finished", slog.Int("member", info.Index), slog.Any("error", err))
		}),
	)
	logger.Info("starting group",
		slog.Int("members", group.Len()),
		slog.Int("slots", len(handles)),
		slog.Int("fps", sc.FPS),
	)

	if seek > 0 {
		if err := group.SetCurrentTime(seek); err != nil {
			return fmt.Errorf("failed to seek: %w", err)
		}
	}
	if err := group.Play(); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	for _, f := range failures {
		f()
	}

	eg, egCtx := errgroup.WithContext(ctx)
	driveCtx, stopDriving := context.WithCancel(egCtx)

	eg.Go(func() error {
		err := driver.Run(driveCtx)
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			return nil
		}
		return err
	})
	eg.Go(func() error {
		defer stopDriving()
		if err := group.Wait(egCtx); err != nil {
			_ = group.Stop()
			return err
		}
		return nil
	})

	err := eg.Wait()
	printStyle(out, el)
	if err != nil {
		return fmt.Errorf("group did not finish cleanly: %w", err)
	}
	logger.Info("group finished", slog.Float64("position", group.CurrentTime()))
	return nil
}

func renderer(el *render.Element, property string) func(float64) {
	return func(v float64) {
		value := strconv.FormatFloat(v, 'f', 2, 64)
		st := render.State{}
		if strings.HasPrefix(property, "--") {
			st.Vars = map[string]string{property: value}
		} else {
			st.Style = render.Style{property: value}
		}
		render.HTML(el, st, nil, nil)
	}
}

func printStyle(out io.Writer, el *render.Element) {
	style := el.Style()
	for _, k := range slices.Sorted(maps.Keys(style)) {
		fmt.Fprintf(out, "%s: %s\n", k, style[k])
	}
	props := el.Properties()
	for _, k := range slices.Sorted(maps.Keys(props)) {
		fmt.Fprintf(out, "%s: %s\n", k, props[k])
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
