package components

import (
	"errors"

	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	"github.com/Ethernal-Tech/peggy-orchestrator/cosmos"
	"github.com/Ethernal-Tech/peggy-orchestrator/eth"
)

// ResolveKeyMaterial returns keys given on the command line. Missing keys are
// read from the secrets manager at dataDir or described by secretsConfig.
func ResolveKeyMaterial(ethKey, cosmosPhrase, dataDir, secretsConfig string) (KeyMaterial, error) {
	keys := KeyMaterial{
		EthPrivateKey:  ethKey,
		CosmosMnemonic: cosmosPhrase,
	}

	if keys.EthPrivateKey != "" && keys.CosmosMnemonic != "" {
		return keys, nil
	}

	if dataDir == "" && secretsConfig == "" {
		return keys, errors.New("keys not specified and no secrets manager configured")
	}

	secretsManager, err := common.GetSecretsManager(dataDir, secretsConfig, true)
	if err != nil {
		return keys, err
	}

	if keys.EthPrivateKey == "" {
		wallet, err := eth.GetOrchestratorEthWallet(secretsManager)
		if err != nil {
			return keys, err
		}

		keys.EthPrivateKey = wallet.GetPrivateKeyHex()
	}

	if keys.CosmosMnemonic == "" {
		keys.CosmosMnemonic, err = cosmos.GetOrchestratorMnemonic(secretsManager)
		if err != nil {
			return keys, err
		}
	}

	return keys, nil
}
