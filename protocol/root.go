package protocol

import (
	"fmt"
	"os"
	"strings"

	"github.com/datazip-inc/tsvingest/constants"
	driver "github.com/datazip-inc/tsvingest/drivers/tsv/driver"
	"github.com/datazip-inc/tsvingest/utils"
	"github.com/datazip-inc/tsvingest/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	// registers the mongodb store
	_ "github.com/datazip-inc/tsvingest/destination/mongodb"
)

const (
	flagDir          = "dir"
	flagRecursive    = "recursive"
	flagBatchSize    = "batch-size"
	flagUniqueField  = "unique-field"
	flagStrictHeader = "strict-header"
	flagLimit        = "limit"
	flagNoInt64Only  = "no-int64-only"
	flagDryRun       = "dry-run"
	flagMongoURI     = "mongo-uri"
	flagDatabase     = "db"
	flagCollection   = "collection"
	flagConfig       = "config"
	flagLogLevel     = "log-level"
	flagLogFile      = "log-file"
)

var (
	configPath string
	commands   = []*cobra.Command{}
	connector  *driver.TSV
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "tsvingest",
	Short: "Ingest TSV files into a document store",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("failed to bind flags: %s", err)
		}
		viper.Set(constants.LogLevel, viper.GetString(flagLogLevel))
		viper.Set(constants.LogFile, viper.GetString(flagLogFile))
		logger.Init()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return fmt.Errorf("'%s' is an invalid command. Use 'tsvingest --help' to display usage guide", args[0])
	},
}

// CreateRootCommand wires the subcommands around source
func CreateRootCommand(source *driver.TSV) *cobra.Command {
	connector = source
	RootCmd.AddCommand(commands...)
	return RootCmd
}

// Execute runs the command line and exits on failure
func Execute(source *driver.TSV) {
	if err := CreateRootCommand(source).Execute(); err != nil {
		logger.Fatal(err)
	}
}

// loadSourceConfig fills connector's config from the optional JSON config file, then from
// flags and TSVINGEST_* environment variables that were actually set
func loadSourceConfig(flags *pflag.FlagSet) error {
	config := connector.GetConfigRef()
	if configPath != "" {
		if err := utils.UnmarshalFile(configPath, config); err != nil {
			return err
		}
	}

	if isSet(flags, flagDir) {
		config.Dir = viper.GetString(flagDir)
	}
	if isSet(flags, flagRecursive) {
		config.Recursive = viper.GetBool(flagRecursive)
	}
	if isSet(flags, flagBatchSize) {
		config.BatchSize = viper.GetInt(flagBatchSize)
	}
	if isSet(flags, flagUniqueField) {
		config.UniqueField = viper.GetString(flagUniqueField)
	}
	if isSet(flags, flagStrictHeader) {
		config.StrictHeader = viper.GetBool(flagStrictHeader)
	}
	if isSet(flags, flagLimit) {
		config.Limit = viper.GetInt64(flagLimit)
	}
	if isSet(flags, flagNoInt64Only) {
		config.NoInt64Only = viper.GetBool(flagNoInt64Only)
	}
	if isSet(flags, flagDryRun) {
		config.DryRun = viper.GetBool(flagDryRun)
	}
	return nil
}

func isSet(flags *pflag.FlagSet, name string) bool {
	if flag := flags.Lookup(name); flag != nil && flag.Changed {
		return true
	}
	_, found := os.LookupEnv(envKey(name))
	return found
}

func envKey(name string) string {
	return constants.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func init() {
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv(flagMongoURI, envKey(flagMongoURI), constants.MongoURIEnv)

	commands = append(commands, ingestCmd, previewCmd)
	RootCmd.PersistentFlags().StringVarP(&configPath, flagConfig, "", "", "(Optional) JSON file with the source options")
	RootCmd.PersistentFlags().StringP(flagDir, "", "", "(Required) Directory containing TSV files")
	RootCmd.PersistentFlags().BoolP(flagRecursive, "", false, "(Optional) Recurse into subdirectories")
	RootCmd.PersistentFlags().StringP(flagLogLevel, "", "info", "(Optional) Log level")
	RootCmd.PersistentFlags().StringP(flagLogFile, "", "", "(Optional) Rotated log file written next to the console output")
	RootCmd.PersistentFlags().Int64P(flagLimit, "", 0, "(Optional) Stop after this many rows in total, 0 for no limit")
	RootCmd.PersistentFlags().BoolP(flagNoInt64Only, "", false, "(Optional) Keep integers outside the signed 64-bit range as integers")
	// Disable Cobra CLI's built-in usage and error handling
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
}
