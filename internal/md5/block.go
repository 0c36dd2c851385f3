package md5

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Kind identifies which padding case a [Block] represents.
type Kind uint8

const (
	// KindFull holds 64 bytes of input and no padding.
	KindFull Kind = iota
	// KindTail holds the last 0-55 input bytes, the padding marker, zero
	// fill and the 64-bit bit length.
	KindTail
	// KindOverflow holds the last 56-63 input bytes, the padding marker and
	// zero fill. The length did not fit and follows in a KindLength block.
	KindOverflow
	// KindLength holds zero fill and the 64-bit bit length only.
	KindLength
)

func (k Kind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindTail:
		return "tail"
	case KindOverflow:
		return "overflow"
	case KindLength:
		return "length"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Block is one 512-bit unit of framed input, stored as sixteen
// little-endian 32-bit words.
type Block struct {
	Kind  Kind
	Words [WordsPerBlock]uint32
}

// NewBlock builds a block from exactly sixteen words. Any other count is a
// programming error and panics with an [*InvariantError].
func NewBlock(kind Kind, words []uint32) Block {
	if len(words) != WordsPerBlock {
		panic(invariantf("block needs %d words, got %d", WordsPerBlock, len(words)))
	}
	b := Block{Kind: kind}
	copy(b.Words[:], words)
	return b
}

// blockFromBytes decodes 64 bytes into little-endian words.
func blockFromBytes(kind Kind, p []byte) Block {
	if len(p) != BlockSize {
		panic(invariantf("block needs %d bytes, got %d", BlockSize, len(p)))
	}
	b := Block{Kind: kind}
	for i := range b.Words {
		b.Words[i] = binary.LittleEndian.Uint32(p[4*i:])
	}
	return b
}

// Bytes returns the block's 64 bytes in message order.
func (b *Block) Bytes() [BlockSize]byte {
	var out [BlockSize]byte
	for i, w := range b.Words {
		binary.LittleEndian.PutUint32(out[4*i:], w)
	}
	return out
}

// String renders the block as an 8x8 grid of bytes written in binary, one
// row per eight bytes.
func (b *Block) String() string {
	raw := b.Bytes()
	var sb strings.Builder
	sb.Grow(8 * (8*9 + 1))
	for row := 0; row < 8; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < 8; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(byteBits(raw[8*row+col]))
		}
	}
	return sb.String()
}

// byteBits renders one byte as eight binary digits, most significant first.
func byteBits(v byte) string {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = '0' + (v>>(7-i))&1
	}
	return string(buf[:])
}
