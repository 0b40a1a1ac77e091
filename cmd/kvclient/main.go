// Command kvclient is a thin interactive client over a kvbus server.
/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/urfave/cli"

	"github.com/kvbus/kvbus/client"
	"github.com/kvbus/kvbus/cmn"
	"github.com/kvbus/kvbus/wire"
)

func main() {
	app := cli.NewApp()
	app.Name = "kvclient"
	app.Usage = "issue one command against a kvbus server"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "addr",
			Value: "127.0.0.1:9527",
			Usage: "server address",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "hset",
			Usage:     "hset <table> <key> <value>",
			ArgsUsage: "<table> <key> <value>",
			Action:    hset,
		},
		{
			Name:      "hget",
			Usage:     "hget <table> <key>",
			ArgsUsage: "<table> <key>",
			Action:    hget,
		},
		{
			Name:      "publish",
			Usage:     "publish <topic> <message>",
			ArgsUsage: "<topic> <message>",
			Action:    publish,
		},
		{
			Name:      "subscribe",
			Usage:     "subscribe <topic>",
			ArgsUsage: "<topic>",
			Action:    subscribe,
		},
	}

	if err := app.Run(os.Args); err != nil {
		glog.Errorf("kvclient: %v", err)
		os.Exit(1)
	}
}

func dial(c *cli.Context) (*client.Client, error) {
	return client.Dial(c.GlobalString("addr"))
}

func hset(c *cli.Context) error {
	if c.NArg() != 3 {
		return cli.NewExitError("usage: hset <table> <key> <value>", 1)
	}
	cl, err := dial(c)
	if err != nil {
		return err
	}
	defer cl.Close()

	resp, err := cl.Execute(wire.NewHSet(c.Args().Get(0), c.Args().Get(1), cmn.StringValue(c.Args().Get(2))))
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func hget(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.NewExitError("usage: hget <table> <key>", 1)
	}
	cl, err := dial(c)
	if err != nil {
		return err
	}
	defer cl.Close()

	resp, err := cl.Execute(wire.NewHGet(c.Args().Get(0), c.Args().Get(1)))
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func publish(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.NewExitError("usage: publish <topic> <message>", 1)
	}
	cl, err := dial(c)
	if err != nil {
		return err
	}
	defer cl.Close()

	resp, err := cl.Execute(wire.NewPublish(c.Args().Get(0), []cmn.Value{cmn.StringValue(c.Args().Get(1))}))
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func subscribe(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("usage: subscribe <topic>", 1)
	}
	cl, err := dial(c)
	if err != nil {
		return err
	}
	defer cl.Close()

	if err := cl.Send(wire.NewSubscribe(c.Args().Get(0))); err != nil {
		return err
	}
	for {
		resp, err := cl.Recv()
		if err != nil {
			return err
		}
		printResponse(resp)
	}
}

func printResponse(resp *wire.CommandResponse) {
	if resp.Message != "" {
		fmt.Printf("status=%d message=%q\n", resp.Status, resp.Message)
		return
	}
	parts := make([]string, 0, len(resp.Values))
	for _, v := range resp.Values {
		parts = append(parts, v.String())
	}
	for _, kv := range resp.Pairs {
		parts = append(parts, kv.Key+"="+kv.Value.String())
	}
	fmt.Printf("status=%d values=%v\n", resp.Status, parts)
}
