package networking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/geanlabs/gean/types"
)

// Handlers dispatches decoded gossip messages to the fork-choice store.
type Handlers struct {
	OnBlock       func(ctx context.Context, block *types.Block, from peer.ID) error
	OnAttestation func(ctx context.Context, vote *types.SignedVote) error
}

// Service owns the gossipsub topics and subscriptions for the block
// and attestation channels, plus best-effort bootnode connection
// retry.
type Service struct {
	host     host.Host
	pubsub   *pubsub.PubSub
	handlers *Handlers
	logger   *slog.Logger

	blockTopic       *pubsub.Topic
	blockSub         *pubsub.Subscription
	attestationTopic *pubsub.Topic
	attestationSub   *pubsub.Subscription

	failedBootnodes []peer.AddrInfo

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Host      host.Host
	Handlers  *Handlers
	Bootnodes []peer.AddrInfo
	Logger    *slog.Logger
}

// NewService joins the gossip topics and attempts to connect to the
// configured bootnodes.
func NewService(ctx context.Context, cfg ServiceConfig) (*Service, error) {
	ctx, cancel := context.WithCancel(ctx)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ps, err := NewGossipSub(ctx, cfg.Host)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("networking: gossipsub: %w", err)
	}

	blockTopic, err := ps.Join(BlockTopic)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("networking: join block topic: %w", err)
	}
	attestationTopic, err := ps.Join(AttestationTopic)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("networking: join attestation topic: %w", err)
	}

	blockSub, err := blockTopic.Subscribe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("networking: subscribe block topic: %w", err)
	}
	attestationSub, err := attestationTopic.Subscribe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("networking: subscribe attestation topic: %w", err)
	}

	svc := &Service{
		host:             cfg.Host,
		pubsub:           ps,
		handlers:         cfg.Handlers,
		logger:           logger,
		blockTopic:       blockTopic,
		blockSub:         blockSub,
		attestationTopic: attestationTopic,
		attestationSub:   attestationSub,
		ctx:              ctx,
		cancel:           cancel,
	}

	for _, pi := range cfg.Bootnodes {
		if err := cfg.Host.Connect(ctx, pi); err != nil {
			logger.Warn("bootnode connect failed", "peer", pi.ID, "error", err)
			svc.failedBootnodes = append(svc.failedBootnodes, pi)
		} else {
			logger.Info("connected to bootnode", "peer", pi.ID)
		}
	}

	return svc, nil
}

// Start launches the gossip read loops and bootnode retry loop.
func (s *Service) Start() {
	s.wg.Add(2)
	go s.readBlocks()
	go s.readAttestations()

	if len(s.failedBootnodes) > 0 {
		s.wg.Add(1)
		go s.retryBootnodes()
	}

	s.logger.Info("networking started", "peer_id", s.host.ID(), "addrs", s.host.Addrs())
}

// Stop tears down subscriptions and the host.
func (s *Service) Stop() {
	s.cancel()
	s.blockSub.Cancel()
	s.attestationSub.Cancel()
	s.wg.Wait()
	s.host.Close()
	s.logger.Info("networking stopped")
}

// PublishBlock gossips a produced block.
func (s *Service) PublishBlock(ctx context.Context, block *types.Block) error {
	data, err := block.MarshalSSZ()
	if err != nil {
		return fmt.Errorf("networking: marshal block: %w", err)
	}
	return s.blockTopic.Publish(ctx, CompressMessage(data))
}

// PublishAttestation gossips a produced attestation vote.
func (s *Service) PublishAttestation(ctx context.Context, vote *types.SignedVote) error {
	data, err := vote.MarshalSSZ()
	if err != nil {
		return fmt.Errorf("networking: marshal attestation: %w", err)
	}
	return s.attestationTopic.Publish(ctx, CompressMessage(data))
}

// PeerCount reports the number of connected peers.
func (s *Service) PeerCount() int { return len(s.host.Network().Peers()) }

const bootnodeRetryInterval = 30 * time.Second

func (s *Service) retryBootnodes() {
	defer s.wg.Done()
	ticker := time.NewTicker(bootnodeRetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			var remaining []peer.AddrInfo
			for _, pi := range s.failedBootnodes {
				if err := s.host.Connect(s.ctx, pi); err != nil {
					remaining = append(remaining, pi)
				} else {
					s.logger.Info("reconnected to bootnode", "peer", pi.ID)
				}
			}
			s.failedBootnodes = remaining
			if len(s.failedBootnodes) == 0 {
				return
			}
		}
	}
}

func (s *Service) readBlocks() {
	defer s.wg.Done()
	for {
		msg, err := s.blockSub.Next(s.ctx)
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.logger.Error("block subscription error", "error", err)
			continue
		}
		if msg.ReceivedFrom == s.host.ID() {
			continue
		}
		s.handleBlockMessage(msg.Data, msg.ReceivedFrom)
	}
}

func (s *Service) handleBlockMessage(data []byte, from peer.ID) {
	decoded, err := DecompressMessage(data)
	if err != nil {
		s.logger.Debug("block decompress failed", "error", err)
		return
	}
	block := &types.Block{}
	if err := block.UnmarshalSSZ(decoded); err != nil {
		s.logger.Debug("block decode failed", "error", err)
		return
	}
	if s.handlers == nil || s.handlers.OnBlock == nil {
		return
	}
	if err := s.handlers.OnBlock(s.ctx, block, from); err != nil {
		s.logger.Warn("handle gossip block failed", "slot", block.Slot, "error", err)
	}
}

func (s *Service) readAttestations() {
	defer s.wg.Done()
	for {
		msg, err := s.attestationSub.Next(s.ctx)
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.logger.Error("attestation subscription error", "error", err)
			continue
		}
		if msg.ReceivedFrom == s.host.ID() {
			continue
		}
		s.handleAttestationMessage(msg.Data)
	}
}

func (s *Service) handleAttestationMessage(data []byte) {
	decoded, err := DecompressMessage(data)
	if err != nil {
		s.logger.Debug("attestation decompress failed", "error", err)
		return
	}
	vote := &types.SignedVote{}
	if err := vote.UnmarshalSSZ(decoded); err != nil {
		s.logger.Debug("attestation decode failed", "error", err)
		return
	}
	if s.handlers == nil || s.handlers.OnAttestation == nil {
		return
	}
	if err := s.handlers.OnAttestation(s.ctx, vote); err != nil {
		s.logger.Warn("handle gossip attestation failed", "error", err)
	}
}
