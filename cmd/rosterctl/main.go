package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/inourx99/Englishcompition/internal/config"
	"github.com/inourx99/Englishcompition/internal/rosterctl"
)

func main() {
	var (
		format  = flag.String("format", rosterctl.FormatJSON, "Output format: json or yaml")
		driver  = flag.String("driver", "", "Storage driver override: file, sqlite or memory")
		path    = flag.String("path", "", "Storage path override")
		verbose = flag.Bool("verbose", false, "Enable info logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help || flag.NArg() == 0 {
		rosterctl.ShowHelp(os.Stdout)
		return
	}

	if err := rosterctl.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("Failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *driver != "" {
		cfg.StorageDriver = *driver
	}
	if *path != "" {
		cfg.StoragePath = *path
	}

	opts := &rosterctl.Options{
		Settings: cfg,
		Format:   *format,
		Out:      os.Stdout,
		Verbose:  *verbose,
	}
	if err := rosterctl.Run(ctx, opts, flag.Args()); err != nil {
		os.Stderr.WriteString("rosterctl: " + err.Error() + "\n")
		if rosterctl.IsUsage(err) {
			os.Stderr.WriteString("Run 'rosterctl -help' for usage.\n")
			stop()
			os.Exit(2) //nolint:gocritic // exitAfterDefer: stop is called explicitly
		}
		stop()
		os.Exit(1)
	}
}
