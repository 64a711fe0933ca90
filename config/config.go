// Package config loads the node's static configuration: chain
// parameters, bootnode addresses, and the validator pubkey manifest
// used to seed genesis.
package config

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/geanlabs/gean/types"
)

// ChainConfig is the on-disk form of types.Config plus the fields
// needed to bootstrap a node (bootnode list lives alongside it, not
// inside the consensus-visible Config).
type ChainConfig struct {
	NumValidators uint64   `yaml:"num_validators"`
	GenesisTime   uint64   `yaml:"genesis_time"`
	Bootnodes     []string `yaml:"bootnodes"`
}

// LoadChainConfig reads a YAML chain configuration file.
func LoadChainConfig(path string) (*ChainConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg ChainConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Config returns the consensus-visible Config carried by cfg.
func (cfg *ChainConfig) Config() types.Config {
	return types.Config{NumValidators: cfg.NumValidators, GenesisTime: cfg.GenesisTime}
}

// bootnodeEntry supports the legacy {multiaddr: "..."} list form;
// LoadBootnodes also accepts a plain list of strings (multiaddrs or
// ENR records, decoded downstream by networking.ParseBootnodes).
type bootnodeEntry struct {
	Multiaddr string `yaml:"multiaddr"`
}

// LoadBootnodes loads a nodes.yaml file of bootnode addresses.
func LoadBootnodes(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var entries []bootnodeEntry
	if err := yaml.Unmarshal(data, &entries); err == nil && len(entries) > 0 && entries[0].Multiaddr != "" {
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Multiaddr != "" {
				out = append(out, e.Multiaddr)
			}
		}
		return out, nil
	}

	var strs []string
	if err := yaml.Unmarshal(data, &strs); err != nil {
		return nil, fmt.Errorf("config: parse bootnodes %s: %w", path, err)
	}
	return strs, nil
}

// LoadValidatorPubkeys loads a hex-encoded validator pubkey manifest:
// a YAML list of hex strings, one per validator.
func LoadValidatorPubkeys(path string) ([]types.Pubkey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var hexKeys []string
	if err := yaml.Unmarshal(data, &hexKeys); err != nil {
		return nil, fmt.Errorf("config: parse validator manifest %s: %w", path, err)
	}

	pubkeys := make([]types.Pubkey, 0, len(hexKeys))
	for i, h := range hexKeys {
		raw, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("config: validator %d: decode hex: %w", i, err)
		}
		if len(raw) != types.PubkeySize {
			return nil, fmt.Errorf("config: validator %d: pubkey length %d, want %d", i, len(raw), types.PubkeySize)
		}
		var pk types.Pubkey
		copy(pk[:], raw)
		pubkeys = append(pubkeys, pk)
	}
	return pubkeys, nil
}
