package networking

import (
	"path/filepath"
	"testing"
)

// eip778ExampleENR is the example record from EIP-778. It carries ip,
// udp, and secp256k1 entries but no quic entry, so it parses as a
// record yet cannot yield a QUIC dialable address.
const eip778ExampleENR = "enr:-IS4QHCYrYZbAKWCBRlAy5zzaDZXJBGkcnh4MHcBFZntXNFrdvJjX04jRzjzCBOonrkTfj499SZuOh8R33Ls8RRcy5wBgmlkgnY0gmlwhH8AAAGJc2VjcDI1NmsxoQPKY0yuDUmstAHYpMa2_oxVtw0RW_QAdpzBQA8yWM0xOIN1ZHCCdl8"

func TestENRToAddrInfoNoQUIC(t *testing.T) {
	if _, err := ENRToAddrInfo(eip778ExampleENR); err == nil {
		t.Fatal("expected error for an ENR without a quic entry")
	}
}

func TestENRToAddrInfoInvalid(t *testing.T) {
	if _, err := ENRToAddrInfo("enr:not-a-record"); err == nil {
		t.Fatal("expected error for an unparseable ENR")
	}
}

func TestParseBootnodesSkipsBadEntries(t *testing.T) {
	peers := ParseBootnodes([]string{
		"enr:not-a-record",
		"/not/a/multiaddr",
		"/ip4/104.131.131.82/tcp/4001/p2p/QmaCpDMGvV2BGHeYERUEnRQAwe3N8SzbUtfsmvsqQLuvuJ",
	})
	if len(peers) != 1 {
		t.Fatalf("expected 1 parsed bootnode, got %d", len(peers))
	}
}

func TestLoadOrGenerateNodeKeyPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodekey")

	key1, err := LoadOrGenerateNodeKey(path)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	key2, err := LoadOrGenerateNodeKey(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !key1.Equals(key2) {
		t.Fatal("reloaded node key differs from the generated one")
	}
}
