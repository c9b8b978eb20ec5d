// Package rosterctl implements the offline roster administration commands.
package rosterctl

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/inourx99/Englishcompition/internal/adapters/kv/driver"
	app "github.com/inourx99/Englishcompition/internal/app"
	"github.com/inourx99/Englishcompition/internal/domain/catalog"
	"github.com/inourx99/Englishcompition/internal/domain/ledger"
	"github.com/inourx99/Englishcompition/internal/domain/model"
	"github.com/inourx99/Englishcompition/pkg/logger"
)

type command func(ctx context.Context, r *runner, args []string) error

var commands = map[string]command{ //nolint:gochecknoglobals // static dispatch table
	"register":    runRegister,
	"award":       runAward,
	"show":        runShow,
	"leaderboard": runLeaderboard,
	"gallery":     runGallery,
	"catalog":     runCatalog,
	"export":      runExport,
}

type runner struct {
	svc    *app.Service
	opts   *Options
	format string
}

// Run executes one command against the configured storage.
func Run(ctx context.Context, opts *Options, args []string) error {
	if len(args) == 0 {
		return ErrNoCommand
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, args[0])
	}
	if !validFormat(opts.Format) {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
	if err := opts.Settings.Validate(); err != nil {
		return err
	}

	backend, err := driver.Open(opts.Settings)
	if err != nil {
		return err
	}
	defer backend.Close()

	log := logger.Nop()
	if opts.Verbose {
		log = logger.Get().Named("rosterctl")
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithBackend(backend),
		app.WithStorageKey(opts.Settings.StorageKey),
		app.WithLeaderboardLimit(opts.Settings.LeaderboardLimit),
		app.WithWorkerCount(1),
		app.WithQueueSize(1),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	log.Info(ctx, "running command",
		logger.String("command", args[0]),
		logger.String("driver", opts.Settings.StorageDriver),
	)

	r := &runner{svc: svc, opts: opts, format: opts.Format}
	return cmd(ctx, r, args[1:])
}

func (r *runner) print(v any) error {
	return write(r.opts.Out, r.format, v)
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUsage, fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: %s: unexpected argument %q", ErrUsage, fs.Name(), fs.Arg(0))
	}
	return nil
}

func runRegister(ctx context.Context, r *runner, args []string) error {
	fs := newFlagSet("register")
	name := fs.String("name", "", "Participant name")
	grade := fs.String("grade", "", "Grade: 4 or 6")
	if err := parse(fs, args); err != nil {
		return err
	}

	g, err := model.ParseGrade(*grade)
	if err != nil {
		return err
	}
	p, err := r.svc.Register(ctx, *name, g)
	if err != nil {
		return err
	}
	return r.print(toParticipant(p))
}

func runAward(ctx context.Context, r *runner, args []string) error {
	fs := newFlagSet("award")
	id := fs.String("id", "", "Participant id")
	kindName := fs.String("kind", "", "Activity kind, e.g. PROJECT or WORKSHEET")
	title := fs.String("title", "", "Project title (PROJECT only)")
	description := fs.String("description", "", "Project description (PROJECT only)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("%w: award: -id is required", ErrUsage)
	}

	kind, err := catalog.Parse(*kindName)
	if err != nil {
		return err
	}
	in := app.AwardInput{ParticipantID: *id, Kind: kind}
	if kind == catalog.Project {
		in.Project = &ledger.ProjectInput{Title: *title, Description: *description}
	}

	out, err := r.svc.RecordActivity(ctx, in)
	if err != nil {
		return err
	}
	view := awardView{
		Participant: toParticipant(out.Participant),
		Entry:       toEntry(out.Entry),
		JustWon:     out.JustWon,
	}
	if out.Project != nil {
		pv := toProject(*out.Project)
		view.Project = &pv
	}
	return r.print(view)
}

func runShow(ctx context.Context, r *runner, args []string) error {
	fs := newFlagSet("show")
	id := fs.String("id", "", "Participant id")
	if err := parse(fs, args); err != nil {
		return err
	}

	p, err := r.svc.Participant(ctx, *id)
	if err != nil {
		return err
	}
	return r.print(toParticipant(p))
}

func runLeaderboard(ctx context.Context, r *runner, args []string) error {
	fs := newFlagSet("leaderboard")
	limit := fs.Int("limit", 0, "Number of standings (default from leaderboard_limit)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *limit < 0 {
		return fmt.Errorf("%w: leaderboard: -limit must not be negative", ErrUsage)
	}

	standings := r.svc.Leaderboard(ctx, *limit)
	out := make([]standingView, len(standings))
	for i, s := range standings {
		out[i] = standingView(s)
	}
	return r.print(out)
}

func runGallery(ctx context.Context, r *runner, args []string) error {
	if err := parse(newFlagSet("gallery"), args); err != nil {
		return err
	}

	items := r.svc.Gallery(ctx)
	out := make([]galleryView, len(items))
	for i, it := range items {
		out[i] = galleryView(it)
	}
	return r.print(out)
}

func runCatalog(_ context.Context, r *runner, args []string) error {
	if err := parse(newFlagSet("catalog"), args); err != nil {
		return err
	}

	entries := r.svc.Catalog()
	out := make([]catalogView, len(entries))
	for i, e := range entries {
		out[i] = catalogView(e)
	}
	return r.print(out)
}

func runExport(ctx context.Context, r *runner, args []string) error {
	fs := newFlagSet("export")
	format := fs.String("format", r.format, "Output format: json or yaml")
	if err := parse(fs, args); err != nil {
		return err
	}
	if !validFormat(*format) {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, *format)
	}
	r.format = *format

	roster := r.svc.Roster(ctx)
	doc := exportView{
		ExportedAt:   time.Now().UTC().Truncate(time.Millisecond),
		StorageKey:   r.opts.Settings.StorageKey,
		Participants: make([]participantView, len(roster)),
	}
	for i, p := range roster {
		doc.Participants[i] = toParticipant(p)
	}
	return r.print(doc)
}

// IsUsage reports whether err came from malformed command-line input.
func IsUsage(err error) bool {
	return errors.Is(err, ErrUsage) || errors.Is(err, ErrNoCommand) || errors.Is(err, ErrUnknownCommand)
}
