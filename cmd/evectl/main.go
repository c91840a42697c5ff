package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"evehal/internal/capture"
	"evehal/internal/config"
	appLog "evehal/internal/log"
	"evehal/internal/web"
)

const usage = `usage: evectl [flags] <command>

commands:
  probe      initialize the chip and print its identity
  demo       draw an interactive widget screen
  mirror     show a web page on the panel on a schedule (serves the status API)
  calibrate  run touch calibration and store it in the config file
  serve      initialize the chip and serve the status API

flags:
`

type flagConfig struct {
	configPath string
	listen     string
	logLevel   string
	url        string
}

func main() {
	flags := parseFlags()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	cmd := flag.Arg(0)

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.logLevel != "" {
		conf.LogLevel = flags.logLevel
	}
	if flags.url != "" {
		conf.Mirror.URL = flags.url
	}
	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	level, _ := appLog.ParseLevel(conf.LogLevel)
	appLog.SetLevel(level)

	appLog.Info("evectl starting", "command", cmd, "version", "0.1.0")
	appLog.Debug("effective config",
		"spi_device", conf.SPI.Device,
		"speed_hz", conf.SPI.SpeedHz,
		"generation", conf.Chip.Generation,
		"size", fmt.Sprintf("%dx%d", conf.Display.HSize, conf.Display.VSize),
		"listen", conf.Listen,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := run(ctx, cmd, conf, flags.configPath); err != nil && !errors.Is(err, context.Canceled) {
		appLog.Error("evectl failed", err, "command", cmd)
		os.Exit(1)
	}
	appLog.Info("evectl exiting")
}

func run(ctx context.Context, cmd string, conf *config.Config, configPath string) error {
	switch cmd {
	case "probe", "demo", "calibrate", "serve":
	case "mirror":
		if conf.Mirror.URL == "" {
			return errors.New("mirror.url is not set")
		}
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	dev, err := openDevice(ctx, conf)
	if err != nil {
		return err
	}
	defer func() {
		if err := dev.Close(); err != nil {
			appLog.Error("device close failed", err)
		}
	}()

	switch cmd {
	case "probe":
		return probe(dev.e, os.Stdout)
	case "demo":
		return runDemo(ctx, dev)
	case "calibrate":
		if err := calibrate(ctx, dev.e, conf); err != nil {
			return err
		}
		return conf.Save(configPath)
	}

	srv := web.NewServer(conf)
	dev.publish(srv)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(ctx) })
	if cmd == "mirror" {
		m := &mirror{dev: dev, cfg: conf, srv: srv, capture: capture.Image}
		g.Go(func() error { return m.run(ctx) })
	}
	return g.Wait()
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/evectl/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.logLevel, "log-level", "", "debug, info, warn or error (overrides config if set)")
	flag.StringVar(&cfg.url, "url", "", "Page to mirror (overrides config if set)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}

	flag.Parse()

	return cfg
}
