package common

import (
	"errors"
	"fmt"

	secretsInfra "github.com/Ethernal-Tech/cardano-infrastructure/secrets"
	secretsInfraHelper "github.com/Ethernal-Tech/cardano-infrastructure/secrets/helper"
	secretsInfraLocal "github.com/Ethernal-Tech/cardano-infrastructure/secrets/local"
)

var (
	// OrchestratorEthKeySecretName holds the hex encoded ethereum signing key
	OrchestratorEthKeySecretName = secretsInfra.OtherKeyLocalPrefix + "orchestrator_eth_key"
	// OrchestratorCosmosMnemonicSecretName holds the bip39 mnemonic of the cosmos account
	OrchestratorCosmosMnemonicSecretName = secretsInfra.OtherKeyLocalPrefix + "orchestrator_cosmos_mnemonic"
)

// GetSecretsManager function resolves secrets manager instance based on provided data or config paths.
// insecureLocalStore defines if utilization of local secrets manager is allowed.
func GetSecretsManager(
	dataPath, configPath string, insecureLocalStore bool,
) (secretsInfra.SecretsManager, error) {
	if configPath != "" {
		secretsConfig, err := secretsInfra.ReadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid secrets configuration: %w", err)
		}

		return secretsInfraHelper.CreateSecretsManager(secretsConfig)
	}

	// local file system secrets are allowed only with the explicit insecure flag
	if !insecureLocalStore {
		return nil, errors.New("insecure local storage not supported")
	}

	return secretsInfraLocal.SecretsManagerFactory(&secretsInfra.SecretsManagerConfig{
		Path: dataPath,
		Type: secretsInfra.Local,
	})
}

// GetSecretString returns secret stored under name as string.
func GetSecretString(secretsManager secretsInfra.SecretsManager, name string) (string, error) {
	if !secretsManager.HasSecret(name) {
		return "", fmt.Errorf("secret %s does not exist", name)
	}

	bytes, err := secretsManager.GetSecret(name)
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s: %w", name, err)
	}

	return string(bytes), nil
}

// SetSecretString stores value under name. Existing secret is replaced only if force is set.
func SetSecretString(secretsManager secretsInfra.SecretsManager, name, value string, force bool) error {
	if secretsManager.HasSecret(name) {
		if !force {
			return fmt.Errorf("secret %s already exists", name)
		}

		if err := secretsManager.RemoveSecret(name); err != nil {
			return fmt.Errorf("failed to remove secret %s: %w", name, err)
		}
	}

	return secretsManager.SetSecret(name, []byte(value))
}
