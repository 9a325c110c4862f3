/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/unify/engine"
	"github.com/spaghettifunk/unify/engine/core"
	"github.com/spaghettifunk/unify/testbed"
)

func main() {
	configPath := flag.String("config", "", "path to a .toml or .yaml application config")
	hostName := flag.String("host", "", "override the configured host")
	flag.Parse()

	cfg := engine.DefaultApplicationConfig()
	cfg.Host = defaultHost
	if *configPath != "" {
		loaded, err := engine.LoadConfig(*configPath)
		if err != nil {
			core.LogFatal("cannot load config: %s", err)
		}
		cfg = loaded
	}
	if *hostName != "" {
		cfg.Host = *hostName
	}

	tb := testbed.NewTestGame(cfg)

	e, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		_ = e.Shutdown()
	}()

	// run engine
	runErr := e.Run(context.Background())
	if err := e.Shutdown(); err != nil {
		core.LogError("%s", err)
	}
	if runErr != nil {
		core.LogFatal("%s", runErr)
	}
}
