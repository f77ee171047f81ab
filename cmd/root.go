package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/faldi95/supplynet/internal/models"
	"github.com/faldi95/supplynet/internal/network"
	"github.com/faldi95/supplynet/internal/simulator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile    string
	noProgress bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "supplynet",
	Short: "Generates a synthetic wine supply network and draws it on a map",
	Long: `supplynet builds a small wine supply chain (two wineries, a wholesaler, a retailer and
randomly generated customers in German cities), geocodes every location and writes an
interactive HTML map of the network. The network can optionally be exported to files,
Kafka, S3 or Postgres.`,
	Run: func(cmd *cobra.Command, args []string) {
		if noProgress {
			viper.Set("show_progress", false)
		}

		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		logger, err := newLogger(verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		sugar := logger.Sugar()
		if used := viper.ConfigFileUsed(); used != "" {
			sugar.Infof("Using config file: %s", used)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sim := simulator.NewSimulator(cfg, sugar)
		if err := sim.Run(ctx); err != nil {
			if errors.Is(err, network.ErrMissingFixedLocation) {
				fmt.Fprintf(os.Stderr, "Not all critical locations could be geocoded, no map was written: %v\n", err)
			} else {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			logger.Sync()
			os.Exit(1)
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.supplynet.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	flags := rootCmd.Flags()
	flags.Int64("seed", 42, "Random seed for customer generation (0 for a time based seed)")
	flags.Int("customer-count", 20, "Number of customers to generate")
	flags.String("country", models.DefaultCountry, "Country appended to every geocoding query")
	flags.String("map-output-file", models.DefaultMapOutputFile, "Path of the generated HTML map")
	flags.String("output-format", "", "Export format for the network (console, json, csv, parquet)")
	flags.String("output-path", "", "Base directory for file exports")
	flags.Bool("kafka-enabled", false, "Publish the network to Kafka")
	flags.String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	flags.String("database-url", "", "Postgres URL to store the network in")
	flags.BoolVar(&noProgress, "no-progress", false, "Disable the geocoding progress bar")

	bindFlag("seed", "seed")
	bindFlag("customer_count", "customer-count")
	bindFlag("country", "country")
	bindFlag("map_output_file", "map-output-file")
	bindFlag("output_format", "output-format")
	bindFlag("output_path", "output-path")
	bindFlag("kafka_enabled", "kafka-enabled")
	bindFlag("kafka_broker_list", "kafka-broker-list")
	bindFlag("database.url", "database-url")
}

func bindFlag(key, flag string) {
	cobra.CheckErr(viper.BindPFlag(key, rootCmd.Flags().Lookup(flag)))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		return
	}

	home, err := os.UserHomeDir()
	cobra.CheckErr(err)

	viper.AddConfigPath(home)
	viper.SetConfigType("yaml")
	viper.SetConfigName(".supplynet")
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return config.Build()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
