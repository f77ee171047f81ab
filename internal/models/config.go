package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type GeocodingConfig struct {
	Endpoint   string        `mapstructure:"endpoint" validate:"required,url"`
	UserAgent  string        `mapstructure:"user_agent" validate:"required"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MinDelay   time.Duration `mapstructure:"min_delay" validate:"gte=0"`
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0"`
	ErrorWait  time.Duration `mapstructure:"error_wait" validate:"gte=0"`
}

type MapConfig struct {
	CenterLat float64 `mapstructure:"center_latitude" validate:"gte=-90,lte=90"`
	CenterLon float64 `mapstructure:"center_longitude" validate:"gte=-180,lte=180"`
	Zoom      int     `mapstructure:"zoom" validate:"gte=0,lte=20"`
	Tiles     string  `mapstructure:"tiles" validate:"required"`
}

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider" validate:"omitempty,oneof=s3"`
	BucketName string `mapstructure:"bucket_name" validate:"required_with=Provider"`
	Region     string `mapstructure:"region"`
	UploadMap  bool   `mapstructure:"upload_map"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type Config struct {
	Seed          int64    `mapstructure:"seed"`
	CustomerCount int      `mapstructure:"customer_count" validate:"gt=0"`
	Country       string   `mapstructure:"country"`
	Cities        []string `mapstructure:"cities" validate:"min=1,dive,required"`

	RetailerLocation       string `mapstructure:"retailer_location" validate:"required"`
	WholesalerLocation     string `mapstructure:"wholesaler_location" validate:"required"`
	WineryMoselLocation    string `mapstructure:"winery_mosel_location" validate:"required"`
	WineryRheingauLocation string `mapstructure:"winery_rheingau_location" validate:"required"`

	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	Map       MapConfig       `mapstructure:"map"`

	MapOutputFile string `mapstructure:"map_output_file" validate:"required"`
	ShowProgress  bool   `mapstructure:"show_progress"`

	// Optional network exports
	OutputFormat      string             `mapstructure:"output_format" validate:"omitempty,oneof=console json csv parquet"`
	OutputPath        string             `mapstructure:"output_path"`
	OutputFolder      string             `mapstructure:"output_folder"`
	OutputDestination string             `mapstructure:"output_destination" validate:"omitempty,oneof=local cloud"`
	CloudStorage      CloudStorageConfig `mapstructure:"cloud_storage"`
	KafkaEnabled      bool               `mapstructure:"kafka_enabled"`
	KafkaBrokerList   string             `mapstructure:"kafka_broker_list" validate:"required_if=KafkaEnabled true"`
	Database          DatabaseConfig     `mapstructure:"database"`
}

// SetDefaults registers the default configuration on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("seed", 42)
	v.SetDefault("customer_count", 20)
	v.SetDefault("country", DefaultCountry)
	v.SetDefault("cities", DefaultCities)
	v.SetDefault("retailer_location", DefaultRetailerLocation)
	v.SetDefault("wholesaler_location", DefaultWholesalerLocation)
	v.SetDefault("winery_mosel_location", DefaultWineryMoselLocation)
	v.SetDefault("winery_rheingau_location", DefaultWineryRheingauLocation)

	v.SetDefault("geocoding.endpoint", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoding.user_agent", "my_supply_chain_app_v1_longer_timeout")
	v.SetDefault("geocoding.timeout", "15s")
	v.SetDefault("geocoding.min_delay", "1s")
	v.SetDefault("geocoding.max_retries", 2)
	v.SetDefault("geocoding.error_wait", "5s")

	v.SetDefault("map.center_latitude", 51.1657)
	v.SetDefault("map.center_longitude", 10.4515)
	v.SetDefault("map.zoom", 6)
	v.SetDefault("map.tiles", "CartoDB positron")

	v.SetDefault("map_output_file", DefaultMapOutputFile)
	v.SetDefault("show_progress", true)
	v.SetDefault("output_folder", "supplynet")
	v.SetDefault("output_destination", "local")
	v.SetDefault("kafka_broker_list", "localhost:9092")
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.GetViper()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}

	v.SetEnvPrefix("supplynet")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// the default config file is optional, an explicit one is not
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

var validate = validator.New()

func (cfg *Config) Validate() error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
