package reqresp

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/golang/snappy"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"

	"github.com/geanlabs/gean/types"
)

const (
	ReadTimeout  = 10 * time.Second
	WriteTimeout = 10 * time.Second
	MaxMsgSize   = 10 * 1024 * 1024
)

// Response codes, one byte preceding every response chunk.
const (
	RespCodeSuccess     byte = 0x00
	RespCodeInvalidReq  byte = 0x01
	RespCodeServerError byte = 0x02
)

// StreamHandler manages request/response protocol streams over a
// libp2p host.
type StreamHandler struct {
	host    host.Host
	handler *Handler
}

// NewStreamHandler creates a stream handler dispatching to handler.
func NewStreamHandler(h host.Host, handler *Handler) *StreamHandler {
	return &StreamHandler{host: h, handler: handler}
}

// RegisterProtocols installs the inbound stream handlers.
func (s *StreamHandler) RegisterProtocols() {
	s.host.SetStreamHandler(protocol.ID(StatusProtocolV1), s.handleStatusStream)
	s.host.SetStreamHandler(protocol.ID(BlocksByRootProtocolV1), s.handleBlocksByRootStream)
}

func (s *StreamHandler) handleStatusStream(stream network.Stream) {
	defer stream.Close()

	_ = stream.SetReadDeadline(time.Now().Add(ReadTimeout))
	data, err := readMessage(stream)
	if err != nil {
		slog.Debug("status stream: read failed", "error", err)
		writeErrorResponse(stream, RespCodeInvalidReq)
		return
	}

	var peerStatus Status
	if err := peerStatus.UnmarshalSSZ(data); err != nil {
		slog.Debug("status stream: decode failed", "error", err)
		writeErrorResponse(stream, RespCodeInvalidReq)
		return
	}

	respData, err := s.handler.GetStatus().MarshalSSZ()
	if err != nil {
		writeErrorResponse(stream, RespCodeServerError)
		return
	}

	_ = stream.SetWriteDeadline(time.Now().Add(WriteTimeout))
	if err := writeSuccessResponse(stream, respData); err != nil {
		slog.Debug("status stream: write failed", "error", err)
	}
}

func (s *StreamHandler) handleBlocksByRootStream(stream network.Stream) {
	defer stream.Close()

	_ = stream.SetReadDeadline(time.Now().Add(ReadTimeout))
	data, err := readMessage(stream)
	if err != nil {
		writeErrorResponse(stream, RespCodeInvalidReq)
		return
	}

	var request BlocksByRootRequest
	if err := request.UnmarshalSSZ(data); err != nil {
		writeErrorResponse(stream, RespCodeInvalidReq)
		return
	}

	blocks := s.handler.HandleBlocksByRoot(&request)

	_ = stream.SetWriteDeadline(time.Now().Add(WriteTimeout))
	for _, block := range blocks {
		blockData, err := block.MarshalSSZ()
		if err != nil {
			continue
		}
		writeSuccessResponse(stream, blockData)
	}
}

// SendStatus performs the handshake with a peer and returns their
// status.
func (s *StreamHandler) SendStatus(ctx context.Context, peerID peer.ID, status *Status) (*Status, error) {
	stream, err := s.host.NewStream(ctx, peerID, protocol.ID(StatusProtocolV1))
	if err != nil {
		return nil, fmt.Errorf("reqresp: open stream: %w", err)
	}
	defer stream.Close()

	data, err := status.MarshalSSZ()
	if err != nil {
		return nil, fmt.Errorf("reqresp: marshal status: %w", err)
	}

	_ = stream.SetWriteDeadline(time.Now().Add(WriteTimeout))
	if err := writeMessage(stream, data); err != nil {
		return nil, fmt.Errorf("reqresp: write request: %w", err)
	}
	if err := stream.CloseWrite(); err != nil {
		return nil, fmt.Errorf("reqresp: close write: %w", err)
	}

	_ = stream.SetReadDeadline(time.Now().Add(ReadTimeout))
	respCode, respData, err := readResponse(stream)
	if err != nil {
		return nil, fmt.Errorf("reqresp: read response: %w", err)
	}
	if respCode != RespCodeSuccess {
		return nil, fmt.Errorf("reqresp: peer returned error code %d", respCode)
	}

	var peerStatus Status
	if err := peerStatus.UnmarshalSSZ(respData); err != nil {
		return nil, fmt.Errorf("reqresp: unmarshal status: %w", err)
	}
	return &peerStatus, nil
}

// RequestBlocksByRoot fetches the blocks matching roots from a peer.
// Unknown roots are silently absent from the result.
func (s *StreamHandler) RequestBlocksByRoot(ctx context.Context, peerID peer.ID, roots []types.Root) ([]*types.Block, error) {
	stream, err := s.host.NewStream(ctx, peerID, protocol.ID(BlocksByRootProtocolV1))
	if err != nil {
		return nil, fmt.Errorf("reqresp: open stream: %w", err)
	}
	defer stream.Close()

	request := &BlocksByRootRequest{Roots: roots}
	data, err := request.MarshalSSZ()
	if err != nil {
		return nil, fmt.Errorf("reqresp: marshal request: %w", err)
	}

	_ = stream.SetWriteDeadline(time.Now().Add(WriteTimeout))
	if err := writeMessage(stream, data); err != nil {
		return nil, fmt.Errorf("reqresp: write request: %w", err)
	}
	if err := stream.CloseWrite(); err != nil {
		return nil, fmt.Errorf("reqresp: close write: %w", err)
	}

	var blocks []*types.Block
	_ = stream.SetReadDeadline(time.Now().Add(ReadTimeout))
	for {
		respCode, respData, err := readResponse(stream)
		if err != nil {
			break
		}
		if respCode != RespCodeSuccess {
			continue
		}
		block := &types.Block{}
		if err := block.UnmarshalSSZ(respData); err != nil {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// Framed message I/O: varint uncompressed-length prefix followed by a
// snappy-compressed SSZ payload.

func readMessage(r io.Reader) ([]byte, error) {
	buf := make([]byte, MaxMsgSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	buf = buf[:n]

	if len(buf) < 2 {
		return nil, fmt.Errorf("reqresp: message too short")
	}

	uncompressedSize, varintLen := binary.Uvarint(buf)
	if varintLen <= 0 {
		return nil, fmt.Errorf("reqresp: invalid varint")
	}
	if uncompressedSize > MaxMsgSize {
		return nil, fmt.Errorf("reqresp: message too large: %d", uncompressedSize)
	}

	decoded, err := snappy.Decode(nil, buf[varintLen:])
	if err != nil {
		return nil, fmt.Errorf("reqresp: snappy decode: %w", err)
	}
	if uint64(len(decoded)) != uncompressedSize {
		return nil, fmt.Errorf("reqresp: size mismatch: declared %d, got %d", uncompressedSize, len(decoded))
	}
	return decoded, nil
}

func writeMessage(w io.Writer, data []byte) error {
	compressed := snappy.Encode(nil, data)

	varintBuf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(varintBuf, uint64(len(data)))
	if _, err := w.Write(varintBuf[:n]); err != nil {
		return err
	}
	_, err := w.Write(compressed)
	return err
}

func readResponse(r io.Reader) (byte, []byte, error) {
	codeBuf := make([]byte, 1)
	if _, err := io.ReadFull(r, codeBuf); err != nil {
		return 0, nil, err
	}
	data, err := readMessage(r)
	return codeBuf[0], data, err
}

func writeSuccessResponse(w io.Writer, data []byte) error {
	if _, err := w.Write([]byte{RespCodeSuccess}); err != nil {
		return err
	}
	return writeMessage(w, data)
}

func writeErrorResponse(w io.Writer, code byte) error {
	_, err := w.Write([]byte{code})
	return err
}
