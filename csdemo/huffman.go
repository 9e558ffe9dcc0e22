package csdemo

// huffmanPeekBits is the width of the table-driving peek: wide enough to
// cover the longest canonical code (17 bits) below in one lookup.
const huffmanPeekBits = 17

// huffmanEntry captures one canonical-Huffman code: the field-path op symbol
// it names, the bit length of its prefix, and the prefix itself as printed
// (a plain binary literal with its natural leading zeros dropped - bitLen is
// what restores them).
type huffmanEntry struct {
	symbol uint8
	bitLen uint8
	prefix uint32
}

// huffmanTable is the literal (value, len(prefix), prefix) canonical Huffman
// tree used to encode field-path op sequences (weights dropped; only the
// derived code matters for decoding).
var huffmanTable = []huffmanEntry{
	{0, 1, 0b0},
	{39, 2, 0b10},
	{8, 5, 0b11000},
	{2, 6, 0b110010},
	{29, 6, 0b110011},
	{4, 5, 0b11010},
	{30, 9, 0b110110000},
	{38, 10, 0b1101100010},
	{35, 16, 0b1101100011000000},
	{34, 16, 0b1101100011000001},
	{27, 15, 0b110110001100001},
	{25, 16, 0b1101100011000100},
	{24, 16, 0b1101100011000101},
	{33, 16, 0b1101100011000110},
	{28, 16, 0b1101100011000111},
	{13, 16, 0b1101100011001000},
	{15, 17, 0b11011000110010010},
	{14, 17, 0b11011000110010011},
	{6, 15, 0b110110001100101},
	{21, 17, 0b11011000110011000},
	{20, 17, 0b11011000110011001},
	{23, 17, 0b11011000110011010},
	{22, 17, 0b11011000110011011},
	{17, 17, 0b11011000110011100},
	{16, 17, 0b11011000110011101},
	{19, 17, 0b11011000110011110},
	{18, 17, 0b11011000110011111},
	{5, 12, 0b110110001101},
	{36, 11, 0b11011000111},
	{10, 8, 0b11011001},
	{7, 8, 0b11011010},
	{12, 9, 0b110110110},
	{37, 9, 0b110110111},
	{9, 8, 0b11011100},
	{31, 9, 0b110111010},
	{26, 9, 0b110111011},
	{32, 8, 0b11011110},
	{3, 8, 0b11011111},
	{1, 4, 0b1110},
	{11, 4, 0b1111},
}

// huffmanLUT maps a little-endian huffmanPeekBits-wide peek value directly to
// (symbol, codeLen). Built once from huffmanTable: each code's prefix is a
// string read most-significant-bit first in consumption order (the leftmost
// printed digit is the first bit taken off the wire), while a BitReader.Peek
// result packs consumed bits LSB first (bit 0 of the peek is the first bit
// taken). buildHuffmanLUT reverses one into the other and then fans each
// code out across every peek value whose low bitLen bits match, leaving the
// remaining high bits free to vary.
var huffmanLUT = buildHuffmanLUT()

type huffmanLUTEntry struct {
	symbol  uint8
	codeLen uint8
}

func buildHuffmanLUT() []huffmanLUTEntry {
	size := 1 << huffmanPeekBits
	lut := make([]huffmanLUTEntry, size)

	for _, e := range huffmanTable {
		var low uint32
		for j := 0; j < int(e.bitLen); j++ {
			bit := (e.prefix >> uint(int(e.bitLen)-1-j)) & 1
			low |= bit << uint(j)
		}

		free := huffmanPeekBits - int(e.bitLen)
		for high := uint32(0); high < (uint32(1) << uint(free)); high++ {
			idx := low | (high << e.bitLen)
			lut[idx] = huffmanLUTEntry{symbol: e.symbol, codeLen: e.bitLen}
		}
	}

	return lut
}

// huffmanLookup returns the (symbol, codeLen) pair for a huffmanPeekBits-wide
// little-endian peek value.
func huffmanLookup(peek uint32) (uint8, uint8) {
	e := huffmanLUT[peek&((1<<huffmanPeekBits)-1)]
	return e.symbol, e.codeLen
}
