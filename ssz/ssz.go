// Package ssz implements the Merkle-tree hashing half of the SSZ codec.
// Byte-level marshaling of fixed-size fields and offsets is handled
// directly by github.com/ferranbt/fastssz's package-level helpers from
// the generated-style methods in package types; this package supplies
// the hash_tree_root side: chunking, binary Merkleization, and the
// bitlist variant used for State.JustifiedSlots and
// State.JustificationsValidators.
package ssz

import "crypto/sha256"

// BytesPerChunk is the SSZ Merkle tree leaf width.
const BytesPerChunk = 32

// Root is a 32-byte Merkle hash-tree-root.
type Root = [32]byte

// ZeroHash is the all-zero root, also the hash of an empty subtree.
var ZeroHash = Root{}

// HashNodes returns sha256(a || b), the single internal-node hash used
// throughout SSZ Merkleization.
func HashNodes(a, b Root) Root {
	h := sha256.New()
	h.Write(a[:])
	h.Write(b[:])
	var out Root
	copy(out[:], h.Sum(nil))
	return out
}

// Chunk hashes an arbitrary byte slice into 32-byte chunks, zero-padding
// the final partial chunk.
func Chunk(data []byte) []Root {
	if len(data) == 0 {
		return nil
	}
	n := (len(data) + BytesPerChunk - 1) / BytesPerChunk
	chunks := make([]Root, n)
	for i := 0; i < n; i++ {
		copy(chunks[i][:], data[i*BytesPerChunk:])
	}
	return chunks
}

func nextPowerOfTwo(x int) int {
	if x <= 1 {
		return 1
	}
	n := x - 1
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	return n + 1
}

// zeroSubtreeRoot returns the root of a perfectly-balanced all-zero tree
// with the given leaf width.
func zeroSubtreeRoot(width int) Root {
	h := ZeroHash
	for width > 1 {
		h = HashNodes(h, h)
		width /= 2
	}
	return h
}

// Merkleize computes the binary Merkle root of chunks, right-padded with
// zero chunks up to the next power of two of max(len(chunks), limit).
// limit == 0 means "no declared capacity": pad only to len(chunks).
func Merkleize(chunks []Root, limit int) Root {
	n := len(chunks)
	if n == 0 {
		if limit > 0 {
			return zeroSubtreeRoot(nextPowerOfTwo(limit))
		}
		return ZeroHash
	}

	width := nextPowerOfTwo(n)
	if limit > 0 && limit > n {
		width = nextPowerOfTwo(limit)
	}
	if width == 1 {
		return chunks[0]
	}

	level := make([]Root, width)
	copy(level, chunks)

	for len(level) > 1 {
		next := make([]Root, len(level)/2)
		for i := range next {
			next[i] = HashNodes(level[2*i], level[2*i+1])
		}
		level = next
	}
	return level[0]
}

// MixInLength returns hash(root || uint64_le(length)), used to finish
// hashing any SSZ list.
func MixInLength(root Root, length uint64) Root {
	var lenChunk Root
	putUint64LE(lenChunk[:8], length)
	return HashNodes(root, lenChunk)
}

// HashTreeRootList hashes a list of pre-hashed element roots under the
// given element-count limit and mixes in the list's actual length.
func HashTreeRootList(elementRoots []Root, limit int) Root {
	return MixInLength(Merkleize(elementRoots, limit), uint64(len(elementRoots)))
}

// HashTreeRootBasicList hashes a list of fixed-size basic-type values
// (e.g. uint64s or 32-byte roots) packed into chunks, then mixes in length.
func HashTreeRootBasicList(packed []byte, elementSize, limit, count int) Root {
	chunks := Chunk(packed)
	chunkLimit := 0
	if limit > 0 {
		chunkLimit = (limit*elementSize + BytesPerChunk - 1) / BytesPerChunk
	}
	return MixInLength(Merkleize(chunks, chunkLimit), uint64(count))
}

// HashTreeRootBitlist hashes an SSZ Bitlist[N] value. bits is the packed
// bitlist representation used by github.com/OffchainLabs/go-bitfield
// (data bytes followed by a single delimiter bit marking the true
// bit-length); limit is N, the maximum bit-length.
func HashTreeRootBitlist(bits []byte, limit uint64) Root {
	bitLen := bitlistLen(bits)
	data := stripDelimiter(bits, bitLen)

	chunkLimit := int((limit + 255) / 256)
	root := Merkleize(Chunk(data), chunkLimit)
	return MixInLength(root, bitLen)
}

// bitlistLen returns the logical bit length encoded by a go-bitfield
// Bitlist: the position of the highest set bit in the final byte marks
// the delimiter.
func bitlistLen(bits []byte) uint64 {
	if len(bits) == 0 {
		return 0
	}
	last := bits[len(bits)-1]
	if last == 0 {
		return 0
	}
	msb := 0
	for b := last; b != 0; b >>= 1 {
		msb++
	}
	return uint64((len(bits)-1)*8 + msb - 1)
}

// stripDelimiter clears the delimiter bit so the remaining bits hash as
// plain packed data.
func stripDelimiter(bits []byte, bitLen uint64) []byte {
	if len(bits) == 0 {
		return nil
	}
	out := make([]byte, len(bits))
	copy(out, bits)
	msbIndex := bitLen % 8
	out[len(out)-1] &^= 1 << msbIndex
	return out
}

func putUint64LE(dst []byte, x uint64) {
	dst[0] = byte(x)
	dst[1] = byte(x >> 8)
	dst[2] = byte(x >> 16)
	dst[3] = byte(x >> 24)
	dst[4] = byte(x >> 32)
	dst[5] = byte(x >> 40)
	dst[6] = byte(x >> 48)
	dst[7] = byte(x >> 56)
}
