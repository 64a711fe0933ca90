package networking

import (
	"fmt"
	"os"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/p2p/enode"
	"github.com/ethereum/go-ethereum/p2p/enr"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

// ENRToAddrInfo parses an ENR string and returns a libp2p AddrInfo
// with a QUIC multiaddr. The record must carry ip, quic, and
// secp256k1 entries; bootnode lists for this network are published as
// ENR strings, so this is the primary bootnode address form.
func ENRToAddrInfo(enrStr string) (*peer.AddrInfo, error) {
	node, err := enode.Parse(enode.ValidSchemes, enrStr)
	if err != nil {
		return nil, fmt.Errorf("networking: parse enr: %w", err)
	}

	ip := node.IP()
	if ip == nil {
		return nil, fmt.Errorf("networking: enr has no IP")
	}

	var quicPort enr.QUIC
	if err := node.Record().Load(&quicPort); err != nil {
		return nil, fmt.Errorf("networking: enr has no quic port: %w", err)
	}

	pubkey := node.Pubkey()
	if pubkey == nil {
		return nil, fmt.Errorf("networking: enr has no public key")
	}
	compressed := gethcrypto.CompressPubkey(pubkey)
	libp2pKey, err := crypto.UnmarshalSecp256k1PublicKey(compressed)
	if err != nil {
		return nil, fmt.Errorf("networking: convert pubkey: %w", err)
	}
	pid, err := peer.IDFromPublicKey(libp2pKey)
	if err != nil {
		return nil, fmt.Errorf("networking: derive peer id: %w", err)
	}

	addr, err := ma.NewMultiaddr(fmt.Sprintf("/ip4/%s/udp/%d/quic-v1", ip, quicPort))
	if err != nil {
		return nil, fmt.Errorf("networking: build multiaddr: %w", err)
	}

	return &peer.AddrInfo{ID: pid, Addrs: []ma.Multiaddr{addr}}, nil
}

// LoadOrGenerateNodeKey loads a secp256k1 node key from path, creating
// and persisting a fresh one when the file does not exist, so the
// node's peer identity (and any ENR it publishes) survives restarts.
func LoadOrGenerateNodeKey(path string) (crypto.PrivKey, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		key, err := gethcrypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("networking: generate node key: %w", err)
		}
		if err := gethcrypto.SaveECDSA(path, key); err != nil {
			return nil, fmt.Errorf("networking: save node key: %w", err)
		}
		return crypto.UnmarshalSecp256k1PrivateKey(gethcrypto.FromECDSA(key))
	}

	key, err := gethcrypto.LoadECDSA(path)
	if err != nil {
		return nil, fmt.Errorf("networking: load node key %s: %w", path, err)
	}
	return crypto.UnmarshalSecp256k1PrivateKey(gethcrypto.FromECDSA(key))
}
