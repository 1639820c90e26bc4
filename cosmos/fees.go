package cosmos

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// ParseFees parses a single coin such as "100stake" into its denom and amount.
func ParseFees(fees string) (string, uint64, error) {
	coin, err := sdk.ParseCoinNormalized(fees)
	if err != nil {
		return "", 0, fmt.Errorf("invalid fees %q: %w", fees, err)
	}

	if !coin.Amount.IsUint64() {
		return "", 0, fmt.Errorf("fee amount out of range: %s", coin.Amount)
	}

	return coin.Denom, coin.Amount.Uint64(), nil
}
