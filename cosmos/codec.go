package cosmos

import (
	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/std"
	"github.com/cosmos/cosmos-sdk/x/auth/migrations/legacytx"
)

const (
	stdTxAminoName   = "cosmos-sdk/StdTx"
	accountAminoName = "cosmos-sdk/Account"
)

// aminoCdc encodes transactions, messages and query responses of the peggy
// module in legacy amino json.
var aminoCdc = codec.NewLegacyAmino()

func registerLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(legacytx.StdTx{}, stdTxAminoName, nil)
	cdc.RegisterConcrete(&baseAccount{}, accountAminoName, nil)
	cdc.RegisterConcrete(&msgValsetConfirm{}, msgValsetConfirmName, nil)
	cdc.RegisterConcrete(&msgConfirmBatch{}, msgConfirmBatchName, nil)
	cdc.RegisterConcrete(&msgDepositClaim{}, msgDepositClaimName, nil)
	cdc.RegisterConcrete(&msgWithdrawClaim{}, msgWithdrawClaimName, nil)
	cdc.RegisterConcrete(&msgValsetUpdatedClaim{}, msgValsetUpdatedClaimName, nil)
}

func init() {
	std.RegisterLegacyAminoCodec(aminoCdc)
	registerLegacyAminoCodec(aminoCdc)
	aminoCdc.Seal()
}
