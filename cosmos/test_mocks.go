package cosmos

import (
	"context"

	"github.com/cometbft/cometbft/libs/bytes"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	tmtypes "github.com/cometbft/cometbft/types"
	"github.com/stretchr/testify/mock"
)

type CometRPCMock struct {
	mock.Mock
}

var _ CometRPC = (*CometRPCMock)(nil)

func (m *CometRPCMock) ABCIQuery(
	ctx context.Context, path string, data bytes.HexBytes,
) (*coretypes.ResultABCIQuery, error) {
	args := m.Called(ctx, path, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*coretypes.ResultABCIQuery), args.Error(1)
}

func (m *CometRPCMock) BroadcastTxSync(ctx context.Context, tx tmtypes.Tx) (*coretypes.ResultBroadcastTx, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*coretypes.ResultBroadcastTx), args.Error(1)
}

func (m *CometRPCMock) Status(ctx context.Context) (*coretypes.ResultStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*coretypes.ResultStatus), args.Error(1)
}
