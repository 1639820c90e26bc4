package ethtxhelper

import (
	"context"
	"errors"
	"math/big"
	"net"
	"strings"
)

func IsRetryableEthError(err error) bool {
	if err == nil {
		return false
	}

	// Context was explicitly canceled or deadline exceeded; not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	retryableMessages := []string{
		"replacement tx underpriced",
		"nonce too low",
		"intrinsic gas too low",
		"tx with the same nonce is already present",
		"rejected future tx due to low slots",
		"already known",
	}
	errStr := err.Error()

	for _, msg := range retryableMessages {
		if strings.Contains(errStr, msg) {
			return true
		}
	}

	return false
}

// MulPercentage returns value * percentage / 100.
func MulPercentage(value *big.Int, percentage uint64) *big.Int {
	res := new(big.Int).Mul(value, new(big.Int).SetUint64(percentage))

	return res.Div(res, big.NewInt(100))
}
