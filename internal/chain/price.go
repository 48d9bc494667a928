package chain

import "math"

func binBase(binStep uint16) float64 {
	return 1 + float64(binStep)/10000
}

// BinPrice returns the UI price of token X in token Y for a bin.
func BinPrice(binID int, binStep uint16, decimalsX, decimalsY uint8) float64 {
	return math.Pow(binBase(binStep), float64(binID)) * math.Pow10(int(decimalsX)-int(decimalsY))
}

// PriceAtOffset walks a reference price by offset bins.
func PriceAtOffset(referencePrice float64, offset int, binStep uint16) float64 {
	return referencePrice * math.Pow(binBase(binStep), float64(offset))
}

// BinIDFromPrice returns the bin whose price is closest to price.
func BinIDFromPrice(price float64, binStep uint16, decimalsX, decimalsY uint8) int {
	if price <= 0 || binStep == 0 {
		return 0
	}
	raw := price / math.Pow10(int(decimalsX)-int(decimalsY))
	return int(math.Round(math.Log(raw) / math.Log(binBase(binStep))))
}

// UIAmount converts a raw token amount into UI units.
func UIAmount(raw uint64, decimals uint8) float64 {
	return float64(raw) / math.Pow10(int(decimals))
}
