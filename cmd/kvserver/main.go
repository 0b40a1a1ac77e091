// Command kvserver runs a kvbus server: a TCP listener that serves the
// framed HGET/HSET/.../SUBSCRIBE command set over one storage backend
// and one pub/sub broadcaster.
/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package main

import (
	"net"
	"net/http"
	"os"

	"github.com/golang/glog"
	"github.com/urfave/cli"

	"github.com/kvbus/kvbus/config"
	"github.com/kvbus/kvbus/hk"
	"github.com/kvbus/kvbus/logs"
	"github.com/kvbus/kvbus/metrics"
	"github.com/kvbus/kvbus/service"
	"github.com/kvbus/kvbus/store"
)

func main() {
	app := cli.NewApp()
	app.Name = "kvserver"
	app.Usage = "run a kvbus key-value and pub/sub server"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "path to a server TOML config file",
		},
		cli.StringFlag{
			Name:  "addr",
			Usage: "listen address, overrides config general.addr",
		},
		cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "address to serve /metrics on, empty disables it",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		glog.Errorf("kvserver: %v", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	defer glog.Flush()

	var cfg config.ServerConfig
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadServerConfig(path)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	if addr := c.String("addr"); addr != "" {
		cfg.General.Addr = addr
	}
	if cfg.General.Addr == "" {
		cfg.General.Addr = "127.0.0.1:9527"
	}

	cleaner := hk.New()
	defer cleaner.Stop()

	if cfg.Log.Path != "" {
		if err := logs.Init(cfg.Log, cleaner); err != nil {
			return err
		}
	}

	storage, err := openStorage(cfg.Storage)
	if err != nil {
		return err
	}
	defer storage.Close()

	if addr := c.String("metrics-addr"); addr != "" {
		go serveMetrics(addr)
	}

	svc := service.New(storage, nil)
	ln, err := net.Listen("tcp", cfg.General.Addr)
	if err != nil {
		return err
	}
	glog.Infof("kvserver: listening on %s", cfg.General.Addr)

	return svc.Serve(ln)
}

func openStorage(cfg config.StorageConfig) (store.Storage, error) {
	if cfg.Path == "" {
		return store.NewMemStore(), nil
	}
	return store.OpenBoltStore(cfg.Path)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	glog.Infof("kvserver: metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		glog.Errorf("kvserver: metrics server stopped: %v", err)
	}
}
