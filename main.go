package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"sealtun/domain/app"
	"sealtun/domain/mode"
	"sealtun/infrastructure/PAL/args"
	"sealtun/infrastructure/PAL/configuration"
	"sealtun/infrastructure/PAL/signal"
	"sealtun/infrastructure/PAL/tun"
	"sealtun/infrastructure/logging"
	"sealtun/infrastructure/network/transport"
	"sealtun/presentation/elevation"
	"sealtun/presentation/mode_selection"
	"sealtun/presentation/runners/genkey"
	"sealtun/presentation/runners/tunnel"
	"sealtun/presentation/runners/version"
	"sealtun/presentation/signals/shutdown"
)

func main() {
	appMode := mode_selection.NewArgsAppMode(args.NewDefaultProvider().Args())
	selectedMode, err := appMode.Mode()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage()
		os.Exit(2)
	}

	switch selectedMode {
	case mode.Version:
		version.NewRunner(os.Stdout).Run()
	case mode.GenKey:
		if err := genkey.NewRunner(appMode.Args()[0], logging.NewLogLogger()).Run(); err != nil {
			log.Fatal(err)
		}
	case mode.Run:
		os.Exit(run(appMode))
	default:
		printUsage()
		os.Exit(2)
	}
}

func run(appMode mode_selection.AppMode) int {
	conf, err := configuration.Load(configuration.NewResolver(appMode))
	if err != nil {
		log.Printf("failed to load configuration: %v", err)
		return 1
	}

	logger, closeLogger, err := logging.New(conf.Logging)
	if err != nil {
		log.Printf("failed to set up logging: %v", err)
		return 1
	}
	defer closeLogger()

	if !elevation.IsElevated() {
		logger.Printf("warning: not running elevated, creating the device may fail: %s", elevation.Hint())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shutdown.NewHandler(ctx, cancel, signal.NewDefaultProvider(), shutdown.NewNotifier(), logger).Handle()

	devices, err := tun.NewFactory(logger)
	if err != nil {
		logger.Printf("tun devices are not supported here: %v", err)
		return 1
	}

	runner := tunnel.NewRunner(*conf, devices, transport.NewFactory(logger), logger)
	if err := runner.Run(ctx); err != nil {
		logger.Printf("session ended: %v", err)
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  %[1]s [run] [config-path]   start the tunnel (default config %[2]s)
  %[1]s genkey <path>         write a new shared key
  %[1]s version               print the version
`, app.Name, configuration.DefaultPath())
}
