package chain

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ProgramID is the Meteora DLMM program.
var ProgramID = solana.MustPublicKeyFromBase58("LBUzKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo")

// BinsPerArray is the number of bins stored in one BinArray account.
const BinsPerArray = 70

// Account layouts include the 8 byte anchor discriminator.
const (
	lbPairActiveIDOffset   = 76
	lbPairBinStepOffset    = 80
	lbPairTokenXMintOffset = 88
	lbPairTokenYMintOffset = 120
	lbPairMinSize          = lbPairTokenYMintOffset + 32

	binArrayIndexOffset = 8
	binArrayPairOffset  = 24
	binArrayBinsOffset  = 56
	binSize             = 144
	binArraySize        = binArrayBinsOffset + BinsPerArray*binSize

	mintDecimalsOffset = 44
)

var binArraySeed = []byte("bin_array")

// LbPair holds the fields of a DLMM pair account needed for range sizing.
type LbPair struct {
	ActiveID   int32
	BinStep    uint16
	TokenXMint solana.PublicKey
	TokenYMint solana.PublicKey
}

// DecodeLbPair decodes an LbPair account.
func DecodeLbPair(data []byte) (LbPair, error) {
	if len(data) < lbPairMinSize {
		return LbPair{}, fmt.Errorf("lb pair account too short: %d bytes", len(data))
	}
	pair := LbPair{
		ActiveID:   int32(binary.LittleEndian.Uint32(data[lbPairActiveIDOffset:])),
		BinStep:    binary.LittleEndian.Uint16(data[lbPairBinStepOffset:]),
		TokenXMint: solana.PublicKeyFromBytes(data[lbPairTokenXMintOffset : lbPairTokenXMintOffset+32]),
		TokenYMint: solana.PublicKeyFromBytes(data[lbPairTokenYMintOffset : lbPairTokenYMintOffset+32]),
	}
	if pair.BinStep == 0 {
		return LbPair{}, fmt.Errorf("lb pair has zero bin step")
	}
	return pair, nil
}

// BinReserve is the token reserve of one bin.
type BinReserve struct {
	AmountX uint64
	AmountY uint64
}

// BinArray is a decoded BinArray account.
type BinArray struct {
	Index  int64
	LbPair solana.PublicKey
	Bins   [BinsPerArray]BinReserve
}

// DecodeBinArray decodes a BinArray account.
func DecodeBinArray(data []byte) (BinArray, error) {
	if len(data) < binArraySize {
		return BinArray{}, fmt.Errorf("bin array account too short: %d bytes", len(data))
	}
	arr := BinArray{
		Index:  int64(binary.LittleEndian.Uint64(data[binArrayIndexOffset:])),
		LbPair: solana.PublicKeyFromBytes(data[binArrayPairOffset : binArrayPairOffset+32]),
	}
	for i := 0; i < BinsPerArray; i++ {
		offset := binArrayBinsOffset + i*binSize
		arr.Bins[i] = BinReserve{
			AmountX: binary.LittleEndian.Uint64(data[offset:]),
			AmountY: binary.LittleEndian.Uint64(data[offset+8:]),
		}
	}
	return arr, nil
}

// BinID returns the bin id stored at slot i of the array.
func (a BinArray) BinID(i int) int {
	return int(a.Index)*BinsPerArray + i
}

// BinArrayIndex returns the index of the BinArray holding binID.
func BinArrayIndex(binID int) int64 {
	idx := binID / BinsPerArray
	if binID < 0 && binID%BinsPerArray != 0 {
		idx--
	}
	return int64(idx)
}

// DeriveBinArray derives the BinArray PDA for a pair and array index.
func DeriveBinArray(lbPair solana.PublicKey, index int64) (solana.PublicKey, error) {
	indexBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(indexBytes, uint64(index))
	addr, _, err := solana.FindProgramAddress([][]byte{binArraySeed, lbPair.Bytes(), indexBytes}, ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive bin array %d: %w", index, err)
	}
	return addr, nil
}

// DecodeMintDecimals reads the decimals of an SPL (or Token-2022) mint account.
func DecodeMintDecimals(data []byte) (uint8, error) {
	if len(data) <= mintDecimalsOffset {
		return 0, fmt.Errorf("mint account too short: %d bytes", len(data))
	}
	return data[mintDecimalsOffset], nil
}
