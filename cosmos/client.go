package cosmos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/cometbft/cometbft/libs/bytes"
	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	libclient "github.com/cometbft/cometbft/rpc/jsonrpc/client"
	tmtypes "github.com/cometbft/cometbft/types"
	"github.com/hashicorp/go-hclog"
)

const (
	peggyQueryPrefix = "custom/peggy/"
	accountQueryPath = "custom/auth/account"
)

var (
	errSequenceMismatch = errors.New("account sequence mismatch")
	errAccountNotFound  = errors.New("account not found")
)

// CometRPC is the subset of the cometbft rpc client used by the consensus client.
type CometRPC interface {
	ABCIQuery(ctx context.Context, path string, data bytes.HexBytes) (*coretypes.ResultABCIQuery, error)
	BroadcastTxSync(ctx context.Context, tx tmtypes.Tx) (*coretypes.ResultBroadcastTx, error)
	Status(ctx context.Context) (*coretypes.ResultStatus, error)
}

type ConsensusClientImpl struct {
	rpc    CometRPC
	config core.ConsensusChainConfig
	key    *Key
	logger hclog.Logger

	lock          sync.Mutex
	chainID       string
	accountNumber uint64
	sequence      uint64
	accountLoaded bool
}

var _ core.ConsensusChain = (*ConsensusClientImpl)(nil)

func NewConsensusClient(
	config core.ConsensusChainConfig, key *Key, timeout time.Duration, logger hclog.Logger,
) (*ConsensusClientImpl, error) {
	rpc, err := newRPCClient(config.NodeURL, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create cosmos rpc client: %w", err)
	}

	return NewConsensusClientWithRPC(rpc, config, key, logger), nil
}

func NewConsensusClientWithRPC(
	rpc CometRPC, config core.ConsensusChainConfig, key *Key, logger hclog.Logger,
) *ConsensusClientImpl {
	return &ConsensusClientImpl{
		rpc:     rpc,
		config:  config,
		key:     key,
		chainID: config.ChainID,
		logger:  logger,
	}
}

func newRPCClient(addr string, timeout time.Duration) (*rpchttp.HTTP, error) {
	httpClient, err := libclient.DefaultHTTPClient(addr)
	if err != nil {
		return nil, err
	}

	httpClient.Timeout = timeout

	return rpchttp.NewWithClient(addr, "/websocket", httpClient)
}

// Address returns the orchestrator account address.
func (c *ConsensusClientImpl) Address() string {
	return c.key.Address()
}

func (c *ConsensusClientImpl) GetLastEventNonce(ctx context.Context, orchestrator string) (uint64, error) {
	value, err := c.query(ctx, peggyQueryPrefix+"lastEventNonce/"+orchestrator, nil)
	if err != nil || isEmptyValue(value) {
		return 0, err
	}

	var res lastEventNonceResponse
	if err := aminoCdc.UnmarshalJSON(value, &res); err == nil {
		return res.Nonce, nil
	}

	var nonce uint64
	if err := aminoCdc.UnmarshalJSON(value, &nonce); err != nil {
		return 0, fmt.Errorf("failed to decode last event nonce: %w", err)
	}

	return nonce, nil
}

func (c *ConsensusClientImpl) GetLatestValsets(ctx context.Context) ([]*core.Valset, error) {
	var valsets []valsetResponse

	if _, err := c.queryAmino(ctx, peggyQueryPrefix+"lastValsetRequests", &valsets); err != nil {
		return nil, err
	}

	result := make([]*core.Valset, len(valsets))
	for i, v := range valsets {
		result[i] = v.toCore()
	}

	return result, nil
}

func (c *ConsensusClientImpl) GetValset(ctx context.Context, nonce uint64) (*core.Valset, error) {
	var valset valsetResponse

	found, err := c.queryAmino(ctx, fmt.Sprintf("%svalsetRequest/%d", peggyQueryPrefix, nonce), &valset)
	if err != nil || !found {
		return nil, err
	}

	return valset.toCore(), nil
}

func (c *ConsensusClientImpl) GetCurrentValset(ctx context.Context) (*core.Valset, error) {
	var valset valsetResponse

	found, err := c.queryAmino(ctx, peggyQueryPrefix+"currentValset", &valset)
	if err != nil || !found {
		return nil, err
	}

	return valset.toCore(), nil
}

func (c *ConsensusClientImpl) GetValsetConfirms(ctx context.Context, nonce uint64) ([]*core.Confirm, error) {
	var confirms []msgValsetConfirm

	if _, err := c.queryAmino(ctx, fmt.Sprintf("%svalsetConfirms/%d", peggyQueryPrefix, nonce), &confirms); err != nil {
		return nil, err
	}

	result := make([]*core.Confirm, len(confirms))
	for i, confirm := range confirms {
		result[i] = valsetConfirmToCore(confirm)
	}

	return result, nil
}

func (c *ConsensusClientImpl) GetLatestBatches(ctx context.Context) ([]*core.Batch, error) {
	var batches []outgoingTxBatch

	if _, err := c.queryAmino(ctx, peggyQueryPrefix+"lastBatches", &batches); err != nil {
		return nil, err
	}

	result := make([]*core.Batch, len(batches))
	for i, b := range batches {
		result[i] = b.toCore()
	}

	return result, nil
}

func (c *ConsensusClientImpl) GetBatchConfirms(
	ctx context.Context, nonce uint64, tokenContract string,
) ([]*core.Confirm, error) {
	var confirms []msgConfirmBatch

	path := fmt.Sprintf("%sbatchConfirms/%d/%s", peggyQueryPrefix, nonce, tokenContract)

	if _, err := c.queryAmino(ctx, path, &confirms); err != nil {
		return nil, err
	}

	result := make([]*core.Confirm, len(confirms))
	for i, confirm := range confirms {
		result[i] = batchConfirmToCore(confirm)
	}

	return result, nil
}

// Broadcast signs msgs into a single transaction and broadcasts it. Account
// number and sequence are cached and reloaded after a sequence mismatch.
func (c *ConsensusClientImpl) Broadcast(ctx context.Context, msgs ...core.Msg) core.SubmitResult {
	if len(msgs) == 0 {
		return core.AlreadyAppliedResult("nothing to broadcast")
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.ensureAccount(ctx); err != nil {
		return core.TransientResult(err)
	}

	fee, err := newStdFee(c.config.FeeDenom, c.config.FeeAmount, c.config.Gas)
	if err != nil {
		return core.RejectedResult(err.Error())
	}

	txBytes, err := buildSignedTx(c.key, txParams{
		chainID:       c.chainID,
		accountNumber: c.accountNumber,
		sequence:      c.sequence,
		fee:           fee,
	}, msgs)
	if err != nil {
		return core.RejectedResult(err.Error())
	}

	res, err := c.rpc.BroadcastTxSync(ctx, txBytes)
	if err != nil {
		return core.TransientResult(fmt.Errorf("failed to broadcast tx sync: %w", err))
	}

	result := classifyTxResponse(res.Code, res.Codespace, res.Log, res.Hash.String())

	switch {
	case res.Code == 0:
		c.sequence++
	case isSequenceMismatch(res.Code, res.Codespace, res.Log):
		c.accountLoaded = false
	}

	c.logger.Debug("Tx broadcasted", "msgs", len(msgs), "type", msgs[0].MsgType(),
		"outcome", result.Outcome, "hash", res.Hash.String(), "code", res.Code)

	return result
}

func (c *ConsensusClientImpl) ensureAccount(ctx context.Context) error {
	if c.chainID == "" {
		status, err := c.rpc.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		c.chainID = status.NodeInfo.Network
	}

	if c.accountLoaded {
		return nil
	}

	params, err := aminoCdc.MarshalJSON(queryAccountParams{Address: c.key.Address()})
	if err != nil {
		return err
	}

	value, err := c.query(ctx, accountQueryPath, params)
	if err != nil {
		return err
	}

	if isEmptyValue(value) {
		return fmt.Errorf("%w: %s", errAccountNotFound, c.key.Address())
	}

	var account baseAccount
	if err := aminoCdc.UnmarshalJSON(value, &account); err != nil {
		return fmt.Errorf("failed to decode account: %w", err)
	}

	c.accountNumber = account.AccountNumber
	c.sequence = account.Sequence
	c.accountLoaded = true

	return nil
}

func (c *ConsensusClientImpl) query(ctx context.Context, path string, data []byte) ([]byte, error) {
	res, err := c.rpc.ABCIQuery(ctx, path, data)
	if err != nil {
		return nil, fmt.Errorf("failed to get ABCI query %s: %w", path, err)
	}

	if res.Response.Code != 0 {
		return nil, fmt.Errorf("ABCI query %s failed with code %d: %s", path, res.Response.Code, res.Response.Log)
	}

	return res.Response.Value, nil
}

// queryAmino decodes the amino json query value into out. It returns false
// and leaves out untouched when the value is empty.
func (c *ConsensusClientImpl) queryAmino(ctx context.Context, path string, out interface{}) (bool, error) {
	value, err := c.query(ctx, path, nil)
	if err != nil {
		return false, err
	}

	if isEmptyValue(value) {
		return false, nil
	}

	if err := aminoCdc.UnmarshalJSON(value, out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return true, nil
}

func isEmptyValue(value []byte) bool {
	trimmed := strings.TrimSpace(string(value))

	return trimmed == "" || trimmed == "null"
}
