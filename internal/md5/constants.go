package md5

const (
	// Size is the size of an MD5 digest in bytes.
	Size = 16
	// BlockSize is the size of one framed block in bytes (512 bits).
	BlockSize = 64
	// WordsPerBlock is the number of 32-bit words in a block.
	WordsPerBlock = 16

	// Rounds is the number of rounds applied to each block.
	Rounds = 4
	// StepsPerRound is the number of steps in one round.
	StepsPerRound = 16
	// Steps is the total number of steps applied to each block.
	Steps = Rounds * StepsPerRound

	// lengthOffset is the byte offset of the 64-bit length field inside the
	// final block. Input tails shorter than this fit alongside the length.
	lengthOffset = BlockSize - 8

	// paddingMarker is the single 1 bit that terminates the input, followed
	// by seven zero bits.
	paddingMarker = 0x80
)

// Initial running state (A, B, C, D).
const (
	initA = 0x67452301
	initB = 0xefcdab89
	initC = 0x98badcfe
	initD = 0x10325476
)

// k holds the additive constants, floor(abs(sin(i+1)) * 2^32), one per step.
var k = [Steps]uint32{
	// round 1
	0xd76aa478, 0xe8c7b756, 0x242070db, 0xc1bdceee,
	0xf57c0faf, 0x4787c62a, 0xa8304613, 0xfd469501,
	0x698098d8, 0x8b44f7af, 0xffff5bb1, 0x895cd7be,
	0x6b901122, 0xfd987193, 0xa679438e, 0x49b40821,
	// round 2
	0xf61e2562, 0xc040b340, 0x265e5a51, 0xe9b6c7aa,
	0xd62f105d, 0x02441453, 0xd8a1e681, 0xe7d3fbc8,
	0x21e1cde6, 0xc33707d6, 0xf4d50d87, 0x455a14ed,
	0xa9e3e905, 0xfcefa3f8, 0x676f02d9, 0x8d2a4c8a,
	// round 3
	0xfffa3942, 0x8771f681, 0x6d9d6122, 0xfde5380c,
	0xa4beea44, 0x4bdecfa9, 0xf6bb4b60, 0xbebfbc70,
	0x289b7ec6, 0xeaa127fa, 0xd4ef3085, 0x04881d05,
	0xd9d4d039, 0xe6db99e5, 0x1fa27cf8, 0xc4ac5665,
	// round 4
	0xf4292244, 0x432aff97, 0xab9423a7, 0xfc93a039,
	0x655b59c3, 0x8f0ccc92, 0xffeff47d, 0x85845dd1,
	0x6fa87e4f, 0xfe2ce6e0, 0xa3014314, 0x4e0811a1,
	0xf7537e82, 0xbd3af235, 0x2ad7d2bb, 0xeb86d391,
}

// shifts holds the left-rotation amounts. Each round cycles through its four
// amounts four times.
var shifts = [Rounds][4]int{
	{7, 12, 17, 22},
	{5, 9, 14, 20},
	{4, 11, 16, 23},
	{6, 10, 15, 21},
}

// schedule selects which message word feeds each step of each round.
var schedule = [Rounds][StepsPerRound]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{1, 6, 11, 0, 5, 10, 15, 4, 9, 14, 3, 8, 13, 2, 7, 12},
	{5, 8, 11, 14, 1, 4, 7, 10, 13, 0, 3, 6, 9, 12, 15, 2},
	{0, 7, 14, 5, 12, 3, 10, 1, 8, 15, 6, 13, 4, 11, 2, 9},
}

// mixers are the per-round boolean functions F, G, H and I. All operators
// are bitwise over the full 32-bit word.
var mixers = [Rounds]func(b, c, d uint32) uint32{
	func(b, c, d uint32) uint32 { return (b & c) | (^b & d) },
	func(b, c, d uint32) uint32 { return (b & d) | (c &^ d) },
	func(b, c, d uint32) uint32 { return b ^ c ^ d },
	func(b, c, d uint32) uint32 { return c ^ (b | ^d) },
}

func init() {
	if err := checkTables(); err != nil {
		panic(err)
	}
}

// checkTables verifies that every schedule row is a permutation of the
// block's word indices and that every rotation stays inside a word.
func checkTables() error {
	for r, row := range schedule {
		var seen [WordsPerBlock]bool
		for step, idx := range row {
			if idx < 0 || idx >= WordsPerBlock {
				return invariantf("round %d step %d: word index %d out of range", r+1, step, idx)
			}
			if seen[idx] {
				return invariantf("round %d: word index %d scheduled twice", r+1, idx)
			}
			seen[idx] = true
		}
	}
	for r, row := range shifts {
		for _, s := range row {
			if s <= 0 || s >= 32 {
				return invariantf("round %d: rotation %d out of range", r+1, s)
			}
		}
	}
	return nil
}
