package cliquerystatus

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/components"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

const (
	configFlag          = "config"
	cosmosPhraseFlag    = "cosmos-phrase"
	ethereumKeyFlag     = "ethereum-key"
	cosmosRPCFlag       = "cosmos-rpc"
	ethereumRPCFlag     = "ethereum-rpc"
	contractAddressFlag = "contract-address"
	dataDirFlag         = "data-dir"
	secretsConfigFlag   = "secrets-config"
	outputJSONFlag      = "json"

	configFlagDesc          = "path to config json file"
	cosmosPhraseFlagDesc    = "cosmos mnemonic of the orchestrator account"
	ethereumKeyFlagDesc     = "hex encoded ethereum private key of the validator"
	cosmosRPCFlagDesc       = "cosmos tendermint rpc url"
	ethereumRPCFlagDesc     = "ethereum json rpc url"
	contractAddressFlagDesc = "bridge contract address"
	dataDirFlagDesc         = "path to data directory when using local secrets manager"
	secretsConfigFlagDesc   = "path to secrets manager config file"
	outputJSONFlagDesc      = "print the status as json"
)

type queryStatusParams struct {
	config          string
	cosmosPhrase    string
	ethereumKey     string
	cosmosRPC       string
	ethereumRPC     string
	contractAddress string
	dataDir         string
	secretsConfig   string
	outputJSON      bool

	appConfig *core.AppConfig
	keys      components.KeyMaterial
}

func (p *queryStatusParams) validateFlags() error {
	appConfig, err := core.LoadAppConfig(p.config)
	if err != nil {
		return err
	}

	appConfig.ApplyOverrides(core.ConfigOverrides{
		EthereumRPC:     p.ethereumRPC,
		CosmosRPC:       p.cosmosRPC,
		ContractAddress: p.contractAddress,
	})

	if !common.IsValidURL(appConfig.SourceChain.NodeURL) {
		return fmt.Errorf("invalid --%s: %s", ethereumRPCFlag, appConfig.SourceChain.NodeURL)
	}

	if !common.IsValidURL(appConfig.ConsensusChain.NodeURL) {
		return fmt.Errorf("invalid --%s: %s", cosmosRPCFlag, appConfig.ConsensusChain.NodeURL)
	}

	keys, err := components.ResolveKeyMaterial(p.ethereumKey, p.cosmosPhrase, p.dataDir, p.secretsConfig)
	if err != nil {
		return fmt.Errorf("failed to load keys: %w", err)
	}

	p.appConfig, p.keys = appConfig, keys

	return nil
}

func (p *queryStatusParams) setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.config, configFlag, "", configFlagDesc)
	cmd.Flags().StringVar(&p.cosmosPhrase, cosmosPhraseFlag, "", cosmosPhraseFlagDesc)
	cmd.Flags().StringVar(&p.ethereumKey, ethereumKeyFlag, "", ethereumKeyFlagDesc)
	cmd.Flags().StringVar(&p.cosmosRPC, cosmosRPCFlag, "", cosmosRPCFlagDesc)
	cmd.Flags().StringVar(&p.ethereumRPC, ethereumRPCFlag, "", ethereumRPCFlagDesc)
	cmd.Flags().StringVar(&p.contractAddress, contractAddressFlag, "", contractAddressFlagDesc)
	cmd.Flags().StringVar(&p.dataDir, dataDirFlag, "", dataDirFlagDesc)
	cmd.Flags().StringVar(&p.secretsConfig, secretsConfigFlag, "", secretsConfigFlagDesc)
	cmd.Flags().BoolVar(&p.outputJSON, outputJSONFlag, false, outputJSONFlagDesc)

	cmd.MarkFlagsMutuallyExclusive(dataDirFlag, secretsConfigFlag)
}

func (p *queryStatusParams) Execute() (common.ICommandResult, error) {
	clients, err := components.NewClients(p.appConfig, p.keys, hclog.NewNullLogger())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.appConfig.Orchestrator.LoopPeriod())
	defer cancel()

	result, err := collectStatus(ctx, clients.Source, clients.Consensus,
		clients.CosmosKey.Address(), clients.EthWallet.GetAddressHex())
	if err != nil {
		return nil, err
	}

	result.SourceEventNonce, err = clients.Source.GetLastEventNonce(ctx)
	if err != nil {
		return nil, err
	}

	result.asJSON = p.outputJSON

	return result, nil
}

func collectStatus(
	ctx context.Context, source core.SourceChain, consensus core.ConsensusChain,
	orchestrator string, ethAddress string,
) (*CmdResult, error) {
	result := &CmdResult{
		Orchestrator: orchestrator,
		EthAddress:   ethAddress,
	}

	var err error

	result.LastEventNonce, err = consensus.GetLastEventNonce(ctx, orchestrator)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve last event nonce: %w", err)
	}

	result.LatestHeight, err = source.GetLatestBlockHeight(ctx)
	if err != nil {
		return nil, err
	}

	result.LastValsetNonce, err = source.GetLastValsetNonce(ctx)
	if err != nil {
		return nil, err
	}

	valsets, err := consensus.GetLatestValsets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve latest valsets: %w", err)
	}

	for _, valset := range valsets {
		if valset.Nonce > result.LastValsetNonce {
			result.PendingValsets = append(result.PendingValsets, PendingValset{
				Nonce:      valset.Nonce,
				Members:    len(valset.Members),
				TotalPower: valset.TotalPower().String(),
			})
		}
	}

	batches, err := consensus.GetLatestBatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve latest batches: %w", err)
	}

	executed := map[string]uint64{}

	for _, batch := range batches {
		token := strings.ToLower(batch.TokenContract)

		lastNonce, exists := executed[token]
		if !exists {
			lastNonce, err = source.GetLastBatchNonce(ctx, batch.TokenContract)
			if err != nil {
				return nil, err
			}

			executed[token] = lastNonce
		}

		if batch.Nonce > lastNonce {
			result.PendingBatches = append(result.PendingBatches, PendingBatch{
				TokenContract: batch.TokenContract,
				Nonce:         batch.Nonce,
				Transactions:  len(batch.Transactions),
			})
		}
	}

	return result, nil
}
