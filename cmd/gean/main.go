package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/geanlabs/gean/config"
	"github.com/geanlabs/gean/node"
	"github.com/geanlabs/gean/storage"
	"github.com/geanlabs/gean/storage/memory"
	"github.com/geanlabs/gean/storage/pebbledb"
	"github.com/geanlabs/gean/types"
)

func main() {
	chainConfig := flag.String("chain-config", "", "Path to chain config YAML (overrides genesis-time/validators flags)")
	genesisTime := flag.Uint64("genesis-time", 0, "Genesis time (Unix timestamp). Defaults to 10 seconds from now.")
	validators := flag.Uint64("validators", 8, "Number of validators in the network")
	validatorIndices := flag.String("validator-indices", "0", "Comma-separated local validator indices to run duties for")
	validatorManifest := flag.String("validator-manifest", "", "Path to validator pubkey manifest YAML")
	listen := flag.String("listen", "/ip4/0.0.0.0/udp/9000/quic-v1", "Listen multiaddr (QUIC)")
	bootnodes := flag.String("bootnodes", "", "Comma-separated bootnode addresses (ENR records or multiaddrs)")
	nodeKey := flag.String("nodekey", "", "Node key file for a persistent peer identity (created if absent)")
	dataDir := flag.String("datadir", "", "Pebble database directory (empty means in-memory only)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	level := slog.LevelInfo
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	genesis := *genesisTime
	numValidators := *validators
	var cfgBootnodes []string
	if *chainConfig != "" {
		cc, err := config.LoadChainConfig(*chainConfig)
		if err != nil {
			logger.Error("load chain config", "error", err)
			os.Exit(1)
		}
		genesis = cc.GenesisTime
		numValidators = cc.NumValidators
		cfgBootnodes = cc.Bootnodes
	}
	if genesis == 0 {
		genesis = uint64(time.Now().Unix()) + 10
		logger.Info("genesis time not set, using now + 10 seconds", "genesis_time", genesis)
	}

	indices, err := parseIndices(*validatorIndices)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	for _, idx := range indices {
		if idx >= numValidators {
			fmt.Fprintf(os.Stderr, "error: validator index %d must be less than validators (%d)\n", idx, numValidators)
			os.Exit(1)
		}
	}

	var pubkeys []types.Pubkey
	if *validatorManifest != "" {
		pubkeys, err = config.LoadValidatorPubkeys(*validatorManifest)
		if err != nil {
			logger.Error("load validator manifest", "error", err)
			os.Exit(1)
		}
	}

	var db storage.Store
	if *dataDir != "" {
		db, err = pebbledb.Open(*dataDir)
		if err != nil {
			logger.Error("open database", "dir", *dataDir, "error", err)
			os.Exit(1)
		}
	} else {
		db = memory.New()
	}

	allBootnodes := cfgBootnodes
	if *bootnodes != "" {
		allBootnodes = append(allBootnodes, strings.Split(*bootnodes, ",")...)
	}

	nodeCfg := &node.Config{
		GenesisTime:      genesis,
		NumValidators:    numValidators,
		ValidatorIndices: indices,
		ValidatorPubkeys: pubkeys,
		ListenAddrs:      []string{*listen},
		Bootnodes:        allBootnodes,
		NodeKeyPath:      *nodeKey,
		Storage:          db,
		Logger:           logger,
	}

	logger.Info("config",
		"genesis_time", genesis,
		"validators", numValidators,
		"local_indices", indices,
		"bootnodes", len(allBootnodes),
	)

	ctx, cancel := context.WithCancel(context.Background())
	n, err := node.New(ctx, nodeCfg)
	if err != nil {
		logger.Error("failed to create node", "error", err)
		os.Exit(1)
	}

	n.Start()
	logger.Info("gean running", "slot", n.CurrentSlot(), "peers", n.PeerCount())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	n.Stop()
	cancel()
}

func parseIndices(s string) ([]uint64, error) {
	parts := strings.Split(s, ",")
	indices := make([]uint64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		idx, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid validator index %q: %w", p, err)
		}
		indices = append(indices, idx)
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("no validator indices given")
	}
	return indices, nil
}
