package cosmos

import (
	"strings"

	"github.com/Ethernal-Tech/cardano-infrastructure/secrets"
	"github.com/Ethernal-Tech/peggy-orchestrator/common"
)

// GetOrchestratorMnemonic loads the orchestrator account mnemonic from the secrets manager.
func GetOrchestratorMnemonic(secretsManager secrets.SecretsManager) (string, error) {
	mnemonic, err := common.GetSecretString(secretsManager, common.OrchestratorCosmosMnemonicSecretName)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(mnemonic), nil
}

// CreateAndSaveOrchestratorMnemonic generates a new mnemonic unless one exists
// already and forceRegenerate is not set.
func CreateAndSaveOrchestratorMnemonic(
	secretsManager secrets.SecretsManager, forceRegenerate bool,
) (string, error) {
	if secretsManager.HasSecret(common.OrchestratorCosmosMnemonicSecretName) && !forceRegenerate {
		return GetOrchestratorMnemonic(secretsManager)
	}

	mnemonic, err := CreateMnemonic()
	if err != nil {
		return "", err
	}

	err = common.SetSecretString(
		secretsManager, common.OrchestratorCosmosMnemonicSecretName, mnemonic, forceRegenerate)

	return mnemonic, err
}
