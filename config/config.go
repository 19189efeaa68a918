package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"github.com/moyu-x/file-organiser/internal"
)

// EnvPrefix 环境变量前缀，例如 ORGANISER_LOGGING_LEVEL
const EnvPrefix = "ORGANISER"

type Config struct {
	Organise struct {
		HashAlgorithm      string `mapstructure:"hash_algorithm"`
		SkipLargerThan     int64  `mapstructure:"skip_larger_than"`
		SniffExtensionless bool   `mapstructure:"sniff_extensionless"`
	}
	Performance struct {
		Workers int
	}
	Journal struct {
		Enabled bool
		Path    string
	}
	Logging struct {
		Level string
		File  string
	}
}

var cfg Config

func SetDefaults() {
	viper.SetDefault("organise.hash_algorithm", internal.DefaultAlgorithm)
	viper.SetDefault("organise.skip_larger_than", 0)
	viper.SetDefault("organise.sniff_extensionless", false)
	viper.SetDefault("performance.workers", internal.DefaultWorkers)
	viper.SetDefault("journal.enabled", false)
	viper.SetDefault("journal.path", internal.DefaultJournalPath)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}

// Load 读取配置；path 为空时在默认位置查找 config.yaml，找不到时使用默认值
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		viper.AddConfigPath("$HOME/.file-organiser")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/file-organiser")
	}

	SetDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func Get() *Config {
	return &cfg
}
