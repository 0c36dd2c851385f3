// Package md5 implements the MD5 message digest as defined in RFC 1321.
//
// The computation is split in two stages:
//
//   - [Frame] converts an input byte sequence into an ordered sequence of
//     512-bit [Block] values, appending the padding marker, zero fill and the
//     64-bit little-endian bit length. Padding is always present, even when
//     the input is already a multiple of 64 bytes.
//
//   - [CompressAll] threads the four-word running state through every block
//     in order, running 4 rounds of 16 steps each, and serializes the final
//     state little-endian into the 16-byte digest.
//
// [Sum] combines both stages.
//
// # Block Kinds
//
// A [Block] is a tagged union over the shapes the framer produces:
//
//   - [KindFull]: 64 bytes of input data, no padding.
//   - [KindTail]: 0-55 bytes of input, the 0x80 marker, zeros, and the length.
//   - [KindOverflow]: 56-63 bytes of input, the 0x80 marker and zeros. There is
//     no room left for the length.
//   - [KindLength]: zeros and the length. Always follows [KindOverflow].
//
// # Invariants
//
// The constant tables are verified when the package is initialised, and
// [CompressAll] verifies the shape of the block sequence it is given. A
// violation is a programming error and panics with an [*InvariantError].
//
// MD5 is cryptographically broken. This package exists for bit-exact
// reproducibility of the published algorithm, not for protecting secrets.
package md5
