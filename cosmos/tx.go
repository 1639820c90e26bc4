package cosmos

import (
	"encoding/json"
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/x/auth/migrations/legacytx"
)

const (
	peggyCodespace    = "peggy"
	sdkCodespace      = "sdk"
	peggyErrDuplicate = uint32(2)
	peggyErrOutdated  = uint32(7)
	sdkErrTxInMempool = uint32(19)
	sdkErrWrongSeq    = uint32(32)
)

type txParams struct {
	chainID       string
	accountNumber uint64
	sequence      uint64
	fee           legacytx.StdFee
	memo          string
}

func newStdFee(denom string, amount uint64, gas uint64) (legacytx.StdFee, error) {
	fee := legacytx.StdFee{
		Amount: sdk.NewCoins(),
		Gas:    gas,
	}

	if amount > 0 {
		if err := sdk.ValidateDenom(denom); err != nil {
			return legacytx.StdFee{}, fmt.Errorf("invalid fee denom: %w", err)
		}

		fee.Amount = sdk.NewCoins(sdk.NewCoin(denom, sdkmath.NewIntFromUint64(amount)))
	}

	return fee, nil
}

// signBytes returns the canonical amino json sign document of msgs.
func signBytes(params txParams, msgs []sdk.Msg) ([]byte, error) {
	msgsBytes := make([]json.RawMessage, len(msgs))

	for i, msg := range msgs {
		bz, err := aminoCdc.MarshalJSON(msg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %T: %w", msg, err)
		}

		msgsBytes[i] = bz
	}

	feeBytes, err := aminoCdc.MarshalJSON(params.fee)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fee: %w", err)
	}

	bz, err := aminoCdc.MarshalJSON(legacytx.StdSignDoc{
		AccountNumber: params.accountNumber,
		ChainID:       params.chainID,
		Fee:           feeBytes,
		Memo:          params.memo,
		Msgs:          msgsBytes,
		Sequence:      params.sequence,
	})
	if err != nil {
		return nil, err
	}

	return sdk.MustSortJSON(bz), nil
}

// buildSignedTx converts msgs to peggy module messages, signs them with key
// and returns the amino json encoded StdTx.
func buildSignedTx(key *Key, params txParams, msgs []core.Msg) ([]byte, error) {
	sdkMsgs := make([]sdk.Msg, len(msgs))

	for i, msg := range msgs {
		converted, err := toSdkMsg(msg)
		if err != nil {
			return nil, err
		}

		sdkMsgs[i] = converted
	}

	bz, err := signBytes(params, sdkMsgs)
	if err != nil {
		return nil, fmt.Errorf("failed to create sign document: %w", err)
	}

	signature, err := key.Sign(bz)
	if err != nil {
		return nil, fmt.Errorf("failed to sign tx: %w", err)
	}

	return aminoCdc.MarshalJSON(legacytx.StdTx{
		Msgs: sdkMsgs,
		Fee:  params.fee,
		Signatures: []legacytx.StdSignature{{
			PubKey:    key.PubKey(),
			Signature: signature,
		}},
		Memo: params.memo,
	})
}

// classifyTxResponse maps a check tx result to a submit result. Result code
// meanings are the ones of the peggy module and of the sdk root codespace.
func classifyTxResponse(code uint32, codespace string, log string, txHash string) core.SubmitResult {
	if code == 0 {
		return core.AppliedResult(txHash)
	}

	reason := fmt.Sprintf("codespace=%s code=%d: %s", codespace, code, log)

	switch {
	case codespace == peggyCodespace && (code == peggyErrDuplicate || code == peggyErrOutdated):
		return core.AlreadyAppliedResult(reason)
	case codespace == sdkCodespace && code == sdkErrTxInMempool:
		return core.AlreadyAppliedResult(reason)
	case isSequenceMismatch(code, codespace, log):
		return core.TransientResult(fmt.Errorf("%w: %s", errSequenceMismatch, reason))
	default:
		return core.RejectedResult(reason)
	}
}

func isSequenceMismatch(code uint32, codespace string, log string) bool {
	return (codespace == sdkCodespace && code == sdkErrWrongSeq) ||
		strings.Contains(log, "account sequence mismatch")
}
