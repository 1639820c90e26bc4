package clirunorchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	loggerInfra "github.com/Ethernal-Tech/cardano-infrastructure/logger"
	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	"github.com/Ethernal-Tech/peggy-orchestrator/cosmos"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/components"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/spf13/cobra"
)

const (
	configFlag          = "config"
	cosmosPhraseFlag    = "cosmos-phrase"
	ethereumKeyFlag     = "ethereum-key"
	cosmosRPCFlag       = "cosmos-rpc"
	ethereumRPCFlag     = "ethereum-rpc"
	feesFlag            = "fees"
	contractAddressFlag = "contract-address"
	dataDirFlag         = "data-dir"
	secretsConfigFlag   = "secrets-config"

	configFlagDesc          = "path to config json file"
	cosmosPhraseFlagDesc    = "cosmos mnemonic of the orchestrator account"
	ethereumKeyFlagDesc     = "hex encoded ethereum private key of the validator"
	cosmosRPCFlagDesc       = "cosmos tendermint rpc url"
	ethereumRPCFlagDesc     = "ethereum json rpc url"
	feesFlagDesc            = "fee paid for every cosmos transaction, for example 100stake"
	contractAddressFlagDesc = "bridge contract address"
	dataDirFlagDesc         = "path to data directory when using local secrets manager"
	secretsConfigFlagDesc   = "path to secrets manager config file"
)

type runOrchestratorParams struct {
	config          string
	cosmosPhrase    string
	ethereumKey     string
	cosmosRPC       string
	ethereumRPC     string
	fees            string
	contractAddress string
	dataDir         string
	secretsConfig   string

	appConfig *core.AppConfig
	keys      components.KeyMaterial
}

func (p *runOrchestratorParams) validateFlags() error {
	appConfig, err := core.LoadAppConfig(p.config)
	if err != nil {
		return err
	}

	overrides := core.ConfigOverrides{
		EthereumRPC:     p.ethereumRPC,
		CosmosRPC:       p.cosmosRPC,
		ContractAddress: p.contractAddress,
	}

	if p.fees != "" {
		overrides.FeeDenom, overrides.FeeAmount, err = cosmos.ParseFees(p.fees)
		if err != nil {
			return fmt.Errorf("--%s: %w", feesFlag, err)
		}
	}

	appConfig.ApplyOverrides(overrides)

	if err := appConfig.Validate(); err != nil {
		return err
	}

	keys, err := components.ResolveKeyMaterial(p.ethereumKey, p.cosmosPhrase, p.dataDir, p.secretsConfig)
	if err != nil {
		return fmt.Errorf("failed to load keys: %w", err)
	}

	p.appConfig, p.keys = appConfig, keys

	return nil
}

func (p *runOrchestratorParams) setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.config, configFlag, "", configFlagDesc)
	cmd.Flags().StringVar(&p.cosmosPhrase, cosmosPhraseFlag, "", cosmosPhraseFlagDesc)
	cmd.Flags().StringVar(&p.ethereumKey, ethereumKeyFlag, "", ethereumKeyFlagDesc)
	cmd.Flags().StringVar(&p.cosmosRPC, cosmosRPCFlag, "", cosmosRPCFlagDesc)
	cmd.Flags().StringVar(&p.ethereumRPC, ethereumRPCFlag, "", ethereumRPCFlagDesc)
	cmd.Flags().StringVar(&p.fees, feesFlag, "", feesFlagDesc)
	cmd.Flags().StringVar(&p.contractAddress, contractAddressFlag, "", contractAddressFlagDesc)
	cmd.Flags().StringVar(&p.dataDir, dataDirFlag, "", dataDirFlagDesc)
	cmd.Flags().StringVar(&p.secretsConfig, secretsConfigFlag, "", secretsConfigFlagDesc)

	cmd.MarkFlagsMutuallyExclusive(dataDirFlag, secretsConfigFlag)
}

func (p *runOrchestratorParams) Execute() (common.ICommandResult, error) {
	logger, err := loggerInfra.NewLogger(p.appConfig.Settings.Logger)
	if err != nil {
		return nil, err
	}

	orchestratorComponents, err := components.NewOrchestratorComponents(p.appConfig, p.keys, logger)
	if err != nil {
		logger.Error("orchestrator components creation failed", "err", err)

		return nil, err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := orchestratorComponents.Start(ctx); err != nil {
		logger.Error("orchestrator components start failed", "err", err)
		cancel()

		return nil, errors.Join(err, orchestratorComponents.Dispose())
	}

	<-ctx.Done()

	if err := orchestratorComponents.Dispose(); err != nil {
		return nil, err
	}

	return &CmdResult{}, nil
}
