package networking

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/golang/snappy"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	pb "github.com/libp2p/go-libp2p-pubsub/pb"
	"github.com/libp2p/go-libp2p/core/host"
)

const networkName = "devnet0"

// Gossip topics, named "/leanconsensus/<network>/<type>/ssz_snappy".
var (
	BlockTopic       = "/leanconsensus/" + networkName + "/block/ssz_snappy"
	AttestationTopic = "/leanconsensus/" + networkName + "/attestation/ssz_snappy"
)

var (
	messageDomainInvalidSnappy = [4]byte{0x00, 0x00, 0x00, 0x00}
	messageDomainValidSnappy   = [4]byte{0x01, 0x00, 0x00, 0x00}
)

// seenMessagesTTL bounds how long gossipsub remembers a message ID for
// duplicate suppression; a few slots' worth is enough since blocks and
// attestations are only relevant near the current slot.
const seenMessagesTTL = 24 * time.Second

// NewGossipSub builds a gossipsub instance tuned for the consensus
// core's small, latency-sensitive message set.
func NewGossipSub(ctx context.Context, h host.Host) (*pubsub.PubSub, error) {
	params := pubsub.DefaultGossipSubParams()
	params.D = 8
	params.Dlo = 6
	params.Dhi = 12
	params.Dlazy = 6
	params.HeartbeatInterval = 700 * time.Millisecond
	params.FanoutTTL = 60 * time.Second
	params.HistoryLength = 6
	params.HistoryGossip = 3

	opts := []pubsub.Option{
		pubsub.WithMessageIdFn(computeMessageID),
		pubsub.WithGossipSubParams(params),
		pubsub.WithSeenMessagesTTL(seenMessagesTTL),
		pubsub.WithMessageSignaturePolicy(pubsub.StrictNoSign),
		pubsub.WithFloodPublish(false),
	}
	return pubsub.NewGossipSub(ctx, h, opts...)
}

// computeMessageID derives the 20-byte gossipsub message ID as
// sha256(domain || len(topic) || topic || data)[:20], decompressing
// snappy payloads first so identical logical messages collide
// regardless of gossip-layer framing.
func computeMessageID(msg *pb.Message) string {
	var domain [4]byte
	data := msg.Data
	if decoded, err := snappy.Decode(nil, msg.Data); err == nil {
		domain = messageDomainValidSnappy
		data = decoded
	} else {
		domain = messageDomainInvalidSnappy
	}

	topic := []byte(msg.GetTopic())
	topicLen := make([]byte, 8)
	binary.LittleEndian.PutUint64(topicLen, uint64(len(topic)))

	h := sha256.New()
	h.Write(domain[:])
	h.Write(topicLen)
	h.Write(topic)
	h.Write(data)
	return string(h.Sum(nil)[:20])
}

// CompressMessage snappy-compresses a gossip payload.
func CompressMessage(data []byte) []byte { return snappy.Encode(nil, data) }

// DecompressMessage reverses CompressMessage.
func DecompressMessage(data []byte) ([]byte, error) { return snappy.Decode(nil, data) }
