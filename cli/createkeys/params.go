package clicreatekeys

import (
	"fmt"

	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	"github.com/Ethernal-Tech/peggy-orchestrator/cosmos"
	"github.com/Ethernal-Tech/peggy-orchestrator/eth"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/spf13/cobra"
)

const (
	dataDirFlag         = "data-dir"
	secretsConfigFlag   = "secrets-config"
	addressPrefixFlag   = "address-prefix"
	forceRegenerateFlag = "force"
	showPrivateKeyFlag  = "show-pk"

	dataDirFlagDesc         = "(mandatory secrets-config not specified) Path to data directory when using local secrets manager" //nolint:lll
	secretsConfigFlagDesc   = "(mandatory data-dir not specified) Path to secrets manager config file"
	addressPrefixFlagDesc   = "bech32 prefix of cosmos addresses"
	forceRegenerateFlagDesc = "force regenerating keys even if they exist in specified directory"
	showPrivateKeyFlagDesc  = "show private key and mnemonic in output"
)

type createKeysParams struct {
	dataDir         string
	secretsConfig   string
	addressPrefix   string
	forceRegenerate bool
	showPrivateKey  bool
}

func (p *createKeysParams) validateFlags() error {
	if p.dataDir == "" && p.secretsConfig == "" {
		return fmt.Errorf("specify at least one of: %s, %s", dataDirFlag, secretsConfigFlag)
	}

	if p.addressPrefix == "" {
		return fmt.Errorf("--%s flag not specified", addressPrefixFlag)
	}

	return nil
}

func (p *createKeysParams) setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.dataDir, dataDirFlag, "", dataDirFlagDesc)
	cmd.Flags().StringVar(&p.secretsConfig, secretsConfigFlag, "", secretsConfigFlagDesc)
	cmd.Flags().StringVar(&p.addressPrefix, addressPrefixFlag, core.DefaultAddressPrefix, addressPrefixFlagDesc)
	cmd.Flags().BoolVar(&p.forceRegenerate, forceRegenerateFlag, false, forceRegenerateFlagDesc)
	cmd.Flags().BoolVar(&p.showPrivateKey, showPrivateKeyFlag, false, showPrivateKeyFlagDesc)

	cmd.MarkFlagsMutuallyExclusive(dataDirFlag, secretsConfigFlag)
}

func (p *createKeysParams) Execute() (common.ICommandResult, error) {
	secretsManager, err := common.GetSecretsManager(p.dataDir, p.secretsConfig, true)
	if err != nil {
		return nil, err
	}

	wallet, err := eth.CreateAndSaveOrchestratorEthWallet(secretsManager, p.forceRegenerate)
	if err != nil {
		return nil, fmt.Errorf("failed to create ethereum key: %w", err)
	}

	mnemonic, err := cosmos.CreateAndSaveOrchestratorMnemonic(secretsManager, p.forceRegenerate)
	if err != nil {
		return nil, fmt.Errorf("failed to create cosmos mnemonic: %w", err)
	}

	key, err := cosmos.NewKeyFromMnemonic(mnemonic, p.addressPrefix)
	if err != nil {
		return nil, err
	}

	return &CmdResult{
		EthAddress:     wallet.GetAddressHex(),
		EthPrivateKey:  wallet.GetPrivateKeyHex(),
		CosmosAddress:  key.Address(),
		CosmosPubKey:   key.PubKeyBase64(),
		CosmosMnemonic: mnemonic,
		showPrivateKey: p.showPrivateKey,
	}, nil
}
