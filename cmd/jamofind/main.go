// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the jamofind region and apartment search server and CLI.

jamofind resolves partially typed Korean addresses and apartment complex names to
their legal-dong codes. Queries may be full spellings, prefixes, suffixes or
chosung initials ("ㄱㄴㄱ" for 강남구), and several terms narrow the result down.

# Usage

Load the corpus into the store, then build the indexes:

	jamofind import --regions region_code.txt --trades trades.jsonl --rents rents.jsonl
	jamofind build

Serve msgpack IPC over stdin/stdout:

	jamofind serve

Serve the HTTP API:

	jamofind http --addr 127.0.0.1:8080

Try queries interactively:

	jamofind -d search

# Configuration

Runtime configuration is read from a TOML file, created with defaults if missing:

	[server]
	max_limit = 64
	min_query = 1
	max_query = 60
	workers = 8
	cache_size = 4096

	[index]
	progress_every = 10000
	snapshot = true
	ngram = 2

	[store]
	path = "store"
	in_memory = false

	[http]
	addr = "127.0.0.1:8080"
	debug = false

Every key can be overridden from the environment, e.g. JAMOFIND_MAX_LIMIT or
JAMOFIND_STORE_PATH.

# Store

Region codes, trade and rent rows live in a BadgerDB directory under the data dir.
After a build the indexes are snapshotted into the same store, so later runs of
serve, http and search start from the snapshots instead of replaying the corpus.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. See package server
for the frame layout.

	{"id": "req1", "k": "region", "q": "서울 강남"}
	{"id": "req1", "r": [{"lawaddrcode": "1168000000", "address": "서울특별시 강남구"}], "c": 1, "t": 38}
*/
package main

import (
	"os"

	"github.com/bastiangx/jamofind/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"
)

const (
	Version = "0.1.0-beta"
	AppName = "jamofind"
	gh      = "https://github.com/bastiangx/jamofind"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    AppName,
		Usage:   "Fuzzy search over Korean region codes and apartment complexes",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Toggle debug mode",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the TOML config file",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Store directory, overrides [store] path",
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(c.Bool("debug"))
			return nil
		},
		HideVersion: true,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Load region codes and trade/rent rows into the store",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "regions",
						Usage: "Region code TSV (법정동코드, 법정동명, 폐지여부)",
					},
					&cli.StringFlag{
						Name:  "trades",
						Usage: "Trade rows as newline delimited JSON",
					},
					&cli.StringFlag{
						Name:  "rents",
						Usage: "Rent rows as newline delimited JSON",
					},
					&cli.IntFlag{
						Name:  "batch",
						Usage: "Rows written per batch",
						Value: 5000,
					},
					&cli.BoolFlag{
						Name:  "build",
						Usage: "Rebuild the indexes after importing",
					},
				},
			},
			{
				Name:   "build",
				Usage:  "Rebuild both indexes from the store and snapshot them",
				Action: buildCommand,
			},
			{
				Name:   "serve",
				Usage:  "Serve msgpack IPC over stdin/stdout",
				Action: serveCommand,
			},
			{
				Name:   "http",
				Usage:  "Serve the HTTP API",
				Action: httpCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address, overrides [http] addr",
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Interactive search prompt for debugging",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Results printed per query (defaults to [server] max_limit)",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show store and index statistics",
				Action: statsCommand,
			},
			{
				Name:   "version",
				Usage:  "Show current version",
				Action: versionCommand,
			},
		},
	}
}
