package components

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Ethernal-Tech/peggy-orchestrator/cosmos"
	"github.com/Ethernal-Tech/peggy-orchestrator/eth"
	ethtxhelper "github.com/Ethernal-Tech/peggy-orchestrator/eth/txhelper"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator"
	batchrelayer "github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/batch_relayer"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	databaseaccess "github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/database_access"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/observer"
	valsetrelayer "github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/valset_relayer"
	"github.com/Ethernal-Tech/peggy-orchestrator/telemetry"
	"github.com/hashicorp/go-hclog"
)

// KeyMaterial holds the two validator keys the orchestrator signs with.
type KeyMaterial struct {
	EthPrivateKey  string
	CosmosMnemonic string
}

type Clients struct {
	Source    *eth.PeggySmartContractImpl
	Consensus *cosmos.ConsensusClientImpl
	Decoder   *eth.EventDecoderImpl
	EthWallet *ethtxhelper.EthTxWallet
	CosmosKey *cosmos.Key
}

type OrchestratorComponentsImpl struct {
	orchestrator *orchestrator.OrchestratorImpl
	hintsDB      core.HintsDB
	telemetry    *telemetry.Telemetry
	logger       hclog.Logger
	doneCh       chan struct{}
	started      bool
}

func NewOrchestratorComponents(
	appConfig *core.AppConfig, keys KeyMaterial, logger hclog.Logger,
) (*OrchestratorComponentsImpl, error) {
	clients, err := NewClients(appConfig, keys, logger)
	if err != nil {
		return nil, err
	}

	hintsDB, err := databaseaccess.NewDatabase(appConfig.Settings.HintsDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open hints database: %w", err)
	}

	var (
		config       = appConfig.Orchestrator
		orchAddress  = clients.CosmosKey.Address()
		sourceSigner = eth.NewSigner(clients.EthWallet)
	)

	eventObserver := observer.NewEventObserver(
		config, orchAddress, appConfig.SourceChain.BridgeContractAddress,
		clients.Source, clients.Consensus, clients.Decoder, hintsDB, logger.Named("event_observer"))
	valsetRelayer := valsetrelayer.NewValsetRelayer(
		config, orchAddress, clients.Source, clients.Consensus, sourceSigner, logger.Named("valset_relayer"))
	batchRelayer := batchrelayer.NewBatchRelayer(
		config, orchAddress, clients.Source, clients.Consensus, sourceSigner, logger.Named("batch_relayer"))

	orch := orchestrator.NewOrchestrator(
		config, eventObserver, valsetRelayer, batchRelayer, logger.Named("orchestrator"))

	logger.Info("Orchestrator created", "cosmos address", orchAddress, "eth address", sourceSigner.Address(),
		"contract", appConfig.SourceChain.BridgeContractAddress)

	return &OrchestratorComponentsImpl{
		orchestrator: orch,
		hintsDB:      hintsDB,
		telemetry:    telemetry.NewTelemetry(appConfig.Telemetry, orch.Status, logger.Named("telemetry")),
		logger:       logger,
		doneCh:       make(chan struct{}),
	}, nil
}

// NewClients creates both chain clients from the configuration. Chain client
// timeouts equal the loop period.
func NewClients(appConfig *core.AppConfig, keys KeyMaterial, logger hclog.Logger) (*Clients, error) {
	ethWallet, err := ethtxhelper.NewEthTxWallet(keys.EthPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid ethereum key: %w", err)
	}

	cosmosKey, err := cosmos.NewKeyFromMnemonic(keys.CosmosMnemonic, appConfig.ConsensusChain.AddressPrefix)
	if err != nil {
		return nil, fmt.Errorf("invalid cosmos phrase: %w", err)
	}

	decoder, err := eth.NewEventDecoder(appConfig.ConsensusChain.AddressPrefix)
	if err != nil {
		return nil, err
	}

	sc := appConfig.SourceChain

	txHelperOpts := []ethtxhelper.TxRelayerOption{
		ethtxhelper.WithNodeURL(sc.NodeURL),
		ethtxhelper.WithDynamicTx(sc.DynamicTx),
		ethtxhelper.WithDefaultGasLimit(sc.MinGasLimit),
		ethtxhelper.WithGasFeeMultiplier(sc.GasFeeMultiplier),
		ethtxhelper.WithZeroGasPrice(sc.ZeroGasPrice),
	}
	if sc.ChainID != 0 {
		txHelperOpts = append(txHelperOpts, ethtxhelper.WithChainID(new(big.Int).SetUint64(sc.ChainID)))
	}

	ethHelper := eth.NewEthHelperWrapper(ethWallet, logger.Named("eth_helper"), txHelperOpts...)

	source, err := eth.NewPeggySmartContract(
		sc.BridgeContractAddress, ethHelper, decoder,
		eth.NewGasLimitHolder(sc.MinGasLimit, sc.MaxGasLimit, sc.GasLimitSteps),
		sc.GasLimitMultiplier, logger.Named("peggy_contract"))
	if err != nil {
		return nil, err
	}

	consensus, err := cosmos.NewConsensusClient(
		appConfig.ConsensusChain, cosmosKey, appConfig.Orchestrator.LoopPeriod(), logger.Named("cosmos_client"))
	if err != nil {
		return nil, err
	}

	return &Clients{
		Source:    source,
		Consensus: consensus,
		Decoder:   decoder,
		EthWallet: ethWallet,
		CosmosKey: cosmosKey,
	}, nil
}

func (c *OrchestratorComponentsImpl) Start(ctx context.Context) error {
	c.logger.Debug("Starting orchestrator components")

	if err := c.telemetry.Start(); err != nil {
		return err
	}

	c.started = true

	go func() {
		defer close(c.doneCh)

		c.orchestrator.Start(ctx)
	}()

	return nil
}

// Dispose waits for the orchestrator loop to exit and releases resources.
// The context passed to Start must be cancelled first.
func (c *OrchestratorComponentsImpl) Dispose() error {
	c.logger.Info("Disposing orchestrator components")

	if c.started {
		<-c.doneCh
	}

	errs := make([]error, 0)

	if err := c.hintsDB.Close(); err != nil {
		c.logger.Error("Failed to close hints db", "err", err)
		errs = append(errs, fmt.Errorf("failed to close hints db: %w", err))
	}

	if err := c.telemetry.Close(context.Background()); err != nil {
		c.logger.Error("Failed to close telemetry", "err", err)
		errs = append(errs, fmt.Errorf("failed to close telemetry: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while disposing orchestrator components: %w", errors.Join(errs...))
	}

	c.logger.Info("Orchestrator components disposed")

	return nil
}
