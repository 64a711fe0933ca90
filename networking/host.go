// Package networking wires the consensus core to libp2p: a host,
// gossipsub topics for blocks and attestations, and a req/resp
// protocol for block-by-root synchronization.
package networking

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
)

// HostConfig configures the libp2p host.
type HostConfig struct {
	PrivateKey  crypto.PrivKey
	ListenAddrs []string
}

// NewHost creates a libp2p host, generating a secp256k1 identity key
// if none is supplied.
func NewHost(ctx context.Context, cfg HostConfig) (host.Host, error) {
	privKey := cfg.PrivateKey
	if privKey == nil {
		var err error
		privKey, _, err = crypto.GenerateKeyPairWithReader(crypto.Secp256k1, 256, rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("networking: generate identity key: %w", err)
		}
	}

	listenAddrs := cfg.ListenAddrs
	if len(listenAddrs) == 0 {
		listenAddrs = []string{"/ip4/0.0.0.0/udp/9000/quic-v1"}
	}

	h, err := libp2p.New(
		libp2p.Identity(privKey),
		libp2p.ListenAddrStrings(listenAddrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("networking: create host: %w", err)
	}
	return h, nil
}

// ParseBootnodes converts bootnode strings into peer.AddrInfo. Both
// address forms a bootnode list carries are accepted: ENR records
// (decoded via ENRToAddrInfo) and plain p2p multiaddrs. Entries that
// fail to decode are skipped.
func ParseBootnodes(addrs []string) []peer.AddrInfo {
	var peers []peer.AddrInfo
	for _, addr := range addrs {
		if strings.HasPrefix(addr, "enr:") {
			pi, err := ENRToAddrInfo(addr)
			if err != nil {
				continue
			}
			peers = append(peers, *pi)
			continue
		}
		ma, err := multiaddr.NewMultiaddr(addr)
		if err != nil {
			continue
		}
		pi, err := peer.AddrInfoFromP2pAddr(ma)
		if err != nil {
			continue
		}
		peers = append(peers, *pi)
	}
	return peers
}
