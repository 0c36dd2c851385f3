package md5

import "encoding/binary"

// BitLength returns the MD5 length field for an input of n bytes: the bit
// length reduced modulo 2^64.
func BitLength(n int) uint64 {
	return uint64(n) << 3
}

// Frame splits input into padded 512-bit blocks. Every full 64-byte chunk
// becomes a [KindFull] block, then the remainder is padded:
//
//   - 0-55 bytes left: one [KindTail] block carrying the length.
//   - 56-63 bytes left: a [KindOverflow] block followed by a [KindLength] block.
//
// Empty and block-aligned inputs end in a [KindTail] block with no data
// bytes. The length field always describes the whole input.
func Frame(input []byte) []Block {
	full := len(input) / BlockSize
	length := BitLength(len(input))

	blocks := make([]Block, 0, full+2)
	for i := 0; i < full; i++ {
		blocks = append(blocks, blockFromBytes(KindFull, input[i*BlockSize:(i+1)*BlockSize]))
	}

	rest := input[full*BlockSize:]
	var buf [BlockSize]byte
	copy(buf[:], rest)
	buf[len(rest)] = paddingMarker

	if len(rest) < lengthOffset {
		binary.LittleEndian.PutUint64(buf[lengthOffset:], length)
		return append(blocks, blockFromBytes(KindTail, buf[:]))
	}

	blocks = append(blocks, blockFromBytes(KindOverflow, buf[:]))

	var last [BlockSize]byte
	binary.LittleEndian.PutUint64(last[lengthOffset:], length)
	return append(blocks, blockFromBytes(KindLength, last[:]))
}

// checkSequence verifies the shape Frame guarantees: at least one block,
// full blocks first, exactly one padding tail, and an overflow block only
// when directly followed by a length block.
func checkSequence(blocks []Block) error {
	if len(blocks) == 0 {
		return invariantf("empty block sequence")
	}
	last := len(blocks) - 1
	for i := range blocks {
		kind := blocks[i].Kind
		switch kind {
		case KindFull:
			if i == last {
				return invariantf("block %d: sequence ends without padding", i)
			}
		case KindTail, KindLength:
			if i != last {
				return invariantf("block %d: %s block before end of sequence", i, kind)
			}
			if kind == KindLength && (i == 0 || blocks[i-1].Kind != KindOverflow) {
				return invariantf("block %d: length block without overflow block", i)
			}
		case KindOverflow:
			if i+1 != last || blocks[last].Kind != KindLength {
				return invariantf("block %d: overflow block not followed by length block", i)
			}
		default:
			return invariantf("block %d: unknown kind %s", i, kind)
		}
	}
	return nil
}
