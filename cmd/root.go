package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fabula/internal/config"
	"fabula/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fabula",
	Short: "Fabula - photo to story API service",
	Long: `Fabula turns an uploaded photograph into a short creative story.
It analyzes the image with a multimodal model, writes a narrative from the
analysis, and can narrate the result as speech. English and Chinese are
supported per session.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.fabula")
	}

	// 环境变量设置
	viper.SetEnvPrefix("FABULA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 设置默认值
	setDefaults()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	// 反序列化到结构体
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

func setDefaults() {
	// Server
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "120s")

	// AI
	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.model", "gpt-4o")
	viper.SetDefault("ai.options.temperature", 0.9)
	viper.SetDefault("ai.options.max_tokens", 1000)
	viper.SetDefault("ai.options.top_p", 0.95)

	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.time_format", "RFC3339")

	// MongoDB
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "fabula")
	viper.SetDefault("mongo.max_pool_size", 100)
	viper.SetDefault("mongo.min_pool_size", 10)

	// Redis
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.db", 0)

	// Session
	viper.SetDefault("session.cookie_name", "fabula_session")
	viper.SetDefault("session.ttl", "24h")

	// Storage
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.local.base_path", "./data")
	viper.SetDefault("storage.local.base_url", "http://localhost:5000/static")

	// Image
	viper.SetDefault("image.max_dimension", 1024)
	viper.SetDefault("image.temp_dir", "./tmp/uploads")

	// TTS
	viper.SetDefault("tts.api_url", "https://openspeech.bytedance.com/api/v1/tts")
	viper.SetDefault("tts.cluster", "volcano_tts")
	viper.SetDefault("tts.sample_rate", 44100)
	viper.SetDefault("tts.voices.en", "BV001_streaming")
	viper.SetDefault("tts.voices.zh", "BV115_streaming")
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}
