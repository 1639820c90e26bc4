package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/Ethernal-Tech/cardano-infrastructure/logger"
	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	"github.com/Ethernal-Tech/peggy-orchestrator/telemetry"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

const (
	DefaultLoopPeriodMilis        = uint64(10_000)
	DefaultConfirmationDepth      = uint64(6)
	DefaultBlockRangeLimit        = uint64(5_000)
	DefaultMaxMessagesPerTx       = 10
	DefaultPowerThresholdPercent  = uint64(66)
	DefaultAttestationResendTicks = uint64(10)
	DefaultCosmosGas              = uint64(500_000)
	DefaultGasLimitMultiplier     = 1.2
	DefaultGasFeeMultiplier       = uint64(170)
	DefaultMinGasLimit            = uint64(300_000)
	DefaultMaxGasLimit            = uint64(3_000_000)
	DefaultGasLimitSteps          = uint64(5)
	DefaultAddressPrefix          = "cosmos"
)

// OrchestratorConfig holds the constants of the orchestration loop. A single
// value is passed to every phase constructor.
type OrchestratorConfig struct {
	// LoopPeriodMilis is the fixed tick period; it also bounds every chain call.
	LoopPeriodMilis uint64 `json:"loopPeriodMs"`
	// ConfirmationDepth is the number of blocks an event must be buried under.
	ConfirmationDepth uint64 `json:"confirmationDepth"`
	// BlockRangeLimit caps the height range of a single log query.
	BlockRangeLimit uint64 `json:"blockRangeLimit"`
	// StartHeight is the height the bridge contract was deployed at.
	StartHeight            uint64 `json:"startHeight"`
	MaxMessagesPerTx       int    `json:"maxMessagesPerTx"`
	PowerThresholdPercent  uint64 `json:"powerThresholdPercent"`
	AttestationResendTicks uint64 `json:"attestationResendTicks"`
}

func (c OrchestratorConfig) LoopPeriod() time.Duration {
	return time.Duration(c.LoopPeriodMilis) * time.Millisecond
}

// SourceChainConfig describes the ethereum node and bridge contract. A zero
// ChainID means the chain id is queried from the node.
type SourceChainConfig struct {
	NodeURL               string  `json:"nodeUrl"`
	BridgeContractAddress string  `json:"contractAddress"`
	ChainID               uint64  `json:"chainId"`
	DynamicTx             bool    `json:"dynamicTx"`
	ZeroGasPrice          bool    `json:"zeroGasPrice"`
	GasFeeMultiplier      uint64  `json:"gasFeeMultiplier"`
	GasLimitMultiplier    float64 `json:"gasLimitMultiplier"`
	MinGasLimit           uint64  `json:"minGasLimit"`
	MaxGasLimit           uint64  `json:"maxGasLimit"`
	GasLimitSteps         uint64  `json:"gasLimitSteps"`
}

type ConsensusChainConfig struct {
	NodeURL       string `json:"nodeUrl"`
	ChainID       string `json:"chainId"`
	AddressPrefix string `json:"addressPrefix"`
	FeeDenom      string `json:"feeDenom"`
	FeeAmount     uint64 `json:"feeAmount"`
	Gas           uint64 `json:"gas"`
}

type AppSettings struct {
	Logger      logger.LoggerConfig `json:"logger"`
	HintsDBPath string              `json:"hintsDbPath"`
}

type AppConfig struct {
	Orchestrator   OrchestratorConfig        `json:"orchestrator"`
	SourceChain    SourceChainConfig         `json:"sourceChain"`
	ConsensusChain ConsensusChainConfig      `json:"consensusChain"`
	Settings       AppSettings               `json:"appSettings"`
	Telemetry      telemetry.TelemetryConfig `json:"telemetry"`
}

// FillOut sets defaults for every zero valued optional setting.
func (appConfig *AppConfig) FillOut() {
	oc := &appConfig.Orchestrator

	if oc.LoopPeriodMilis == 0 {
		oc.LoopPeriodMilis = DefaultLoopPeriodMilis
	}

	if oc.ConfirmationDepth == 0 {
		oc.ConfirmationDepth = DefaultConfirmationDepth
	}

	if oc.BlockRangeLimit == 0 {
		oc.BlockRangeLimit = DefaultBlockRangeLimit
	}

	if oc.MaxMessagesPerTx <= 0 {
		oc.MaxMessagesPerTx = DefaultMaxMessagesPerTx
	}

	if oc.PowerThresholdPercent == 0 {
		oc.PowerThresholdPercent = DefaultPowerThresholdPercent
	}

	if oc.AttestationResendTicks == 0 {
		oc.AttestationResendTicks = DefaultAttestationResendTicks
	}

	sc := &appConfig.SourceChain

	if sc.GasLimitMultiplier == 0 {
		sc.GasLimitMultiplier = DefaultGasLimitMultiplier
	}

	if sc.GasFeeMultiplier == 0 {
		sc.GasFeeMultiplier = DefaultGasFeeMultiplier
	}

	if sc.MinGasLimit == 0 {
		sc.MinGasLimit = DefaultMinGasLimit
	}

	if sc.MaxGasLimit == 0 {
		sc.MaxGasLimit = DefaultMaxGasLimit
	}

	if sc.GasLimitSteps == 0 {
		sc.GasLimitSteps = DefaultGasLimitSteps
	}

	if appConfig.ConsensusChain.AddressPrefix == "" {
		appConfig.ConsensusChain.AddressPrefix = DefaultAddressPrefix
	}

	if appConfig.ConsensusChain.Gas == 0 {
		appConfig.ConsensusChain.Gas = DefaultCosmosGas
	}
}

// Validate returns an error for settings that cannot work at all. Such errors
// are fatal at startup.
func (appConfig *AppConfig) Validate() error {
	if !common.IsValidURL(appConfig.SourceChain.NodeURL) {
		return fmt.Errorf("invalid ethereum rpc url: %s", appConfig.SourceChain.NodeURL)
	}

	if !common.IsValidURL(appConfig.ConsensusChain.NodeURL) {
		return fmt.Errorf("invalid cosmos rpc url: %s", appConfig.ConsensusChain.NodeURL)
	}

	if !ethcommon.IsHexAddress(appConfig.SourceChain.BridgeContractAddress) {
		return fmt.Errorf("invalid bridge contract address: %s", appConfig.SourceChain.BridgeContractAddress)
	}

	if appConfig.ConsensusChain.FeeDenom == "" {
		return errors.New("fee denom not specified")
	}

	if appConfig.Orchestrator.PowerThresholdPercent > 100 {
		return fmt.Errorf("invalid power threshold: %d%%", appConfig.Orchestrator.PowerThresholdPercent)
	}

	if appConfig.SourceChain.MaxGasLimit < appConfig.SourceChain.MinGasLimit {
		return fmt.Errorf("max gas limit %d lower than min gas limit %d",
			appConfig.SourceChain.MaxGasLimit, appConfig.SourceChain.MinGasLimit)
	}

	return nil
}

// ConfigOverrides are command line values that replace the config file values
// when not empty.
type ConfigOverrides struct {
	EthereumRPC     string
	CosmosRPC       string
	ContractAddress string
	FeeDenom        string
	FeeAmount       uint64
}

func (appConfig *AppConfig) ApplyOverrides(overrides ConfigOverrides) {
	if overrides.EthereumRPC != "" {
		appConfig.SourceChain.NodeURL = overrides.EthereumRPC
	}

	if overrides.CosmosRPC != "" {
		appConfig.ConsensusChain.NodeURL = overrides.CosmosRPC
	}

	if overrides.ContractAddress != "" {
		appConfig.SourceChain.BridgeContractAddress = overrides.ContractAddress
	}

	if overrides.FeeDenom != "" {
		appConfig.ConsensusChain.FeeDenom = overrides.FeeDenom
		appConfig.ConsensusChain.FeeAmount = overrides.FeeAmount
	}
}

// LoadAppConfig reads the config file at path. An empty path returns the
// default configuration.
func LoadAppConfig(path string) (*AppConfig, error) {
	appConfig := &AppConfig{}

	if path != "" {
		loaded, err := common.LoadJson[AppConfig](path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}

		appConfig = loaded
	}

	appConfig.FillOut()

	return appConfig, nil
}
