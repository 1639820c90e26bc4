package eth

import (
	"strings"

	"github.com/Ethernal-Tech/cardano-infrastructure/secrets"
	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	ethtxhelper "github.com/Ethernal-Tech/peggy-orchestrator/eth/txhelper"
)

// GetOrchestratorEthWallet loads the orchestrator signing key from the secrets manager.
func GetOrchestratorEthWallet(secretsManager secrets.SecretsManager) (*ethtxhelper.EthTxWallet, error) {
	pk, err := common.GetSecretString(secretsManager, common.OrchestratorEthKeySecretName)
	if err != nil {
		return nil, err
	}

	return ethtxhelper.NewEthTxWallet(strings.TrimSpace(pk))
}

// CreateAndSaveOrchestratorEthWallet generates a new signing key unless one
// exists already and forceRegenerate is not set.
func CreateAndSaveOrchestratorEthWallet(
	secretsManager secrets.SecretsManager, forceRegenerate bool,
) (*ethtxhelper.EthTxWallet, error) {
	if secretsManager.HasSecret(common.OrchestratorEthKeySecretName) && !forceRegenerate {
		return GetOrchestratorEthWallet(secretsManager)
	}

	wallet, err := ethtxhelper.GenerateNewEthTxWallet()
	if err != nil {
		return nil, err
	}

	err = common.SetSecretString(
		secretsManager, common.OrchestratorEthKeySecretName, wallet.GetPrivateKeyHex(), forceRegenerate)

	return wallet, err
}
