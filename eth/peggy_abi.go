package eth

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	sendToCosmosEventName     = "SendToCosmosEvent"
	batchExecutedEventName    = "TransactionBatchExecutedEvent"
	valsetUpdatedEventName    = "ValsetUpdatedEvent"
	peggyIDMethodName         = "state_peggyId"
	lastValsetNonceMethodName = "state_lastValsetNonce"
	lastBatchNonceMethodName  = "state_lastBatchNonces"
	lastEventNonceMethodName  = "state_lastEventNonce"
	updateValsetMethodName    = "updateValset"
	submitBatchMethodName     = "submitBatch"
)

const peggyABIJSON = `[
	{"type":"function","name":"state_peggyId","stateMutability":"view","inputs":[],
		"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"state_lastValsetNonce","stateMutability":"view","inputs":[],
		"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"state_lastEventNonce","stateMutability":"view","inputs":[],
		"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"state_lastBatchNonces","stateMutability":"view",
		"inputs":[{"name":"","type":"address"}],
		"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"updateValset","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"_newValidators","type":"address[]"},
		{"name":"_newPowers","type":"uint256[]"},
		{"name":"_newValsetNonce","type":"uint256"},
		{"name":"_currentValidators","type":"address[]"},
		{"name":"_currentPowers","type":"uint256[]"},
		{"name":"_currentValsetNonce","type":"uint256"},
		{"name":"_v","type":"uint8[]"},
		{"name":"_r","type":"bytes32[]"},
		{"name":"_s","type":"bytes32[]"}]},
	{"type":"function","name":"submitBatch","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"_currentValidators","type":"address[]"},
		{"name":"_currentPowers","type":"uint256[]"},
		{"name":"_currentValsetNonce","type":"uint256"},
		{"name":"_v","type":"uint8[]"},
		{"name":"_r","type":"bytes32[]"},
		{"name":"_s","type":"bytes32[]"},
		{"name":"_amounts","type":"uint256[]"},
		{"name":"_destinations","type":"address[]"},
		{"name":"_fees","type":"uint256[]"},
		{"name":"_batchNonce","type":"uint256"},
		{"name":"_tokenContract","type":"address"}]},
	{"type":"event","name":"SendToCosmosEvent","anonymous":false,"inputs":[
		{"name":"_tokenContract","type":"address","indexed":true},
		{"name":"_sender","type":"address","indexed":true},
		{"name":"_destination","type":"bytes32","indexed":true},
		{"name":"_amount","type":"uint256","indexed":false},
		{"name":"_eventNonce","type":"uint256","indexed":false}]},
	{"type":"event","name":"TransactionBatchExecutedEvent","anonymous":false,"inputs":[
		{"name":"_batchNonce","type":"uint256","indexed":true},
		{"name":"_token","type":"address","indexed":true},
		{"name":"_eventNonce","type":"uint256","indexed":false}]},
	{"type":"event","name":"ValsetUpdatedEvent","anonymous":false,"inputs":[
		{"name":"_newValsetNonce","type":"uint256","indexed":true},
		{"name":"_eventNonce","type":"uint256","indexed":false},
		{"name":"_validators","type":"address[]","indexed":false},
		{"name":"_powers","type":"uint256[]","indexed":false}]}
]`

var (
	peggyABI     abi.ABI
	peggyABIErr  error
	peggyABIOnce sync.Once
)

// GetPeggyABI returns the parsed abi of the bridge contract.
func GetPeggyABI() (*abi.ABI, error) {
	peggyABIOnce.Do(func() {
		peggyABI, peggyABIErr = abi.JSON(strings.NewReader(peggyABIJSON))
	})

	return &peggyABI, peggyABIErr
}
