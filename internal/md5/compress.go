package md5

import (
	"encoding/binary"
	"math/bits"
)

// State is the running (A, B, C, D) state carried from block to block.
type State [4]uint32

// NewState returns the RFC 1321 initial state.
func NewState() State {
	return State{initA, initB, initC, initD}
}

// Compress folds one block into the state: 64 steps followed by the
// addition of the pre-block state.
func Compress(s *State, b *Block) {
	a, bb, c, d := s[0], s[1], s[2], s[3]

	for step := 0; step < Steps; step++ {
		round, i := step/StepsPerRound, step%StepsPerRound

		t := a + mixers[round](bb, c, d) + b.Words[schedule[round][i]] + k[step]
		a, bb, c, d = d, bb+bits.RotateLeft32(t, shifts[round][i%4]), bb, c
	}

	s[0] += a
	s[1] += bb
	s[2] += c
	s[3] += d
}

// Digest serializes the state as A, B, C, D, each little-endian.
func (s *State) Digest() [Size]byte {
	var out [Size]byte
	for i, w := range s {
		binary.LittleEndian.PutUint32(out[4*i:], w)
	}
	return out
}

// CompressAll runs every block through [Compress], strictly in order,
// starting from the initial state, and returns the digest. The sequence must
// have the shape [Frame] produces; anything else panics with an
// [*InvariantError].
func CompressAll(blocks []Block) [Size]byte {
	if err := checkSequence(blocks); err != nil {
		panic(err)
	}
	s := NewState()
	for i := range blocks {
		Compress(&s, &blocks[i])
	}
	return s.Digest()
}

// Sum returns the MD5 digest of data.
func Sum(data []byte) [Size]byte {
	return CompressAll(Frame(data))
}
