package cligenerateconfig

import (
	"fmt"
	"path"
	"time"

	"github.com/Ethernal-Tech/cardano-infrastructure/logger"
	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	"github.com/Ethernal-Tech/peggy-orchestrator/cosmos"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/Ethernal-Tech/peggy-orchestrator/telemetry"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

const (
	outputDirFlag       = "output-dir"
	outputFileNameFlag  = "output-file-name"
	ethereumRPCFlag     = "ethereum-rpc"
	contractAddressFlag = "contract-address"
	startHeightFlag     = "start-height"
	cosmosRPCFlag       = "cosmos-rpc"
	chainIDFlag         = "chain-id"
	addressPrefixFlag   = "address-prefix"
	feesFlag            = "fees"
	logsPathFlag        = "logs-path"
	dbsPathFlag         = "dbs-path"
	prometheusAddrFlag  = "prometheus-addr"

	outputDirFlagDesc       = "path to config json output directory"
	outputFileNameFlagDesc  = "config json output file name"
	ethereumRPCFlagDesc     = "ethereum json rpc url"
	contractAddressFlagDesc = "bridge contract address"
	startHeightFlagDesc     = "height the bridge contract was deployed at"
	cosmosRPCFlagDesc       = "cosmos tendermint rpc url"
	chainIDFlagDesc         = "cosmos chain id, queried from the node when empty"
	addressPrefixFlagDesc   = "bech32 prefix of cosmos addresses"
	feesFlagDesc            = "fee paid for every cosmos transaction, for example 100stake"
	logsPathFlagDesc        = "path to where logs will be stored"
	dbsPathFlagDesc         = "path to where the hints database will be stored, empty keeps hints in memory"
	prometheusAddrFlagDesc  = "prometheus listen address, empty disables telemetry"

	defaultOutputDir      = "./"
	defaultOutputFileName = "config.json"
	defaultLogsPath       = "./logs"
)

type generateConfigParams struct {
	outputDir       string
	outputFileName  string
	ethereumRPC     string
	contractAddress string
	startHeight     uint64
	cosmosRPC       string
	chainID         string
	addressPrefix   string
	fees            string
	logsPath        string
	dbsPath         string
	prometheusAddr  string
}

func (p *generateConfigParams) validateFlags() error {
	if !common.IsValidURL(p.ethereumRPC) {
		return fmt.Errorf("invalid --%s flag: %s", ethereumRPCFlag, p.ethereumRPC)
	}

	if !common.IsValidURL(p.cosmosRPC) {
		return fmt.Errorf("invalid --%s flag: %s", cosmosRPCFlag, p.cosmosRPC)
	}

	if !ethcommon.IsHexAddress(p.contractAddress) {
		return fmt.Errorf("invalid --%s flag: %s", contractAddressFlag, p.contractAddress)
	}

	if _, _, err := cosmos.ParseFees(p.fees); err != nil {
		return fmt.Errorf("invalid --%s flag: %w", feesFlag, err)
	}

	return nil
}

func (p *generateConfigParams) setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.outputDir, outputDirFlag, defaultOutputDir, outputDirFlagDesc)
	cmd.Flags().StringVar(&p.outputFileName, outputFileNameFlag, defaultOutputFileName, outputFileNameFlagDesc)
	cmd.Flags().StringVar(&p.ethereumRPC, ethereumRPCFlag, "", ethereumRPCFlagDesc)
	cmd.Flags().StringVar(&p.contractAddress, contractAddressFlag, "", contractAddressFlagDesc)
	cmd.Flags().Uint64Var(&p.startHeight, startHeightFlag, 0, startHeightFlagDesc)
	cmd.Flags().StringVar(&p.cosmosRPC, cosmosRPCFlag, "", cosmosRPCFlagDesc)
	cmd.Flags().StringVar(&p.chainID, chainIDFlag, "", chainIDFlagDesc)
	cmd.Flags().StringVar(&p.addressPrefix, addressPrefixFlag, core.DefaultAddressPrefix, addressPrefixFlagDesc)
	cmd.Flags().StringVar(&p.fees, feesFlag, "", feesFlagDesc)
	cmd.Flags().StringVar(&p.logsPath, logsPathFlag, defaultLogsPath, logsPathFlagDesc)
	cmd.Flags().StringVar(&p.dbsPath, dbsPathFlag, "", dbsPathFlagDesc)
	cmd.Flags().StringVar(&p.prometheusAddr, prometheusAddrFlag, "", prometheusAddrFlagDesc)
}

func (p *generateConfigParams) Execute() (common.ICommandResult, error) {
	feeDenom, feeAmount, err := cosmos.ParseFees(p.fees)
	if err != nil {
		return nil, err
	}

	hintsDBPath := ""
	if p.dbsPath != "" {
		hintsDBPath = path.Join(path.Clean(p.dbsPath), "orchestrator_hints.db")
	}

	appConfig := &core.AppConfig{
		Orchestrator: core.OrchestratorConfig{
			StartHeight: p.startHeight,
		},
		SourceChain: core.SourceChainConfig{
			NodeURL:               p.ethereumRPC,
			BridgeContractAddress: p.contractAddress,
			DynamicTx:             true,
		},
		ConsensusChain: core.ConsensusChainConfig{
			NodeURL:       p.cosmosRPC,
			ChainID:       p.chainID,
			AddressPrefix: p.addressPrefix,
			FeeDenom:      feeDenom,
			FeeAmount:     feeAmount,
		},
		Settings: core.AppSettings{
			Logger: logger.LoggerConfig{
				LogFilePath:   path.Join(p.logsPath, "orchestrator.log"),
				LogLevel:      hclog.Debug,
				JSONLogFormat: false,
				AppendFile:    true,
			},
			HintsDBPath: hintsDBPath,
		},
		Telemetry: telemetry.TelemetryConfig{
			PrometheusAddr: p.prometheusAddr,
			PullTime:       10 * time.Second,
		},
	}
	appConfig.FillOut()

	outputDirPath := path.Clean(p.outputDir)
	if err := common.CreateDirectoryIfNotExists(outputDirPath, 0770); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	configPath := path.Join(outputDirPath, p.outputFileName)
	if err := common.SaveJson(configPath, appConfig, 0660); err != nil {
		return nil, fmt.Errorf("failed to create orchestrator config json: %w", err)
	}

	return &CmdResult{configPath: configPath}, nil
}
