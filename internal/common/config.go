package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Exporter ExporterConfig `toml:"exporter"`
	Mcx      McxConfig      `toml:"mcx"`
	Storage  StorageConfig  `toml:"storage"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ExporterConfig struct {
	Name        string `toml:"name"`
	Environment string `toml:"environment"`
	Port        int    `toml:"port"`
	Format      string `toml:"format"`
	OutputDir   string `toml:"output_dir"`
}

// McxConfig carries the MCX case-management API credentials. The instance
// selects the vendor subdomain; company scopes the login.
type McxConfig struct {
	Instance string `toml:"instance"`
	Company  string `toml:"company"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Timeout  int    `toml:"timeout_seconds"`
}

type StorageConfig struct {
	DatabasePath  string `toml:"database_path"`
	BackupDir     string `toml:"backup_dir"`
	RetentionDays int    `toml:"retention_days"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	Output     string `toml:"output"`
	MaxSize    int    `toml:"max_size"`
	MaxBackups int    `toml:"max_backups"`
}

func DefaultConfig() *Config {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)
	execName := filepath.Base(execPath)
	execName = execName[:len(execName)-len(filepath.Ext(execName))]

	defaultDBPath := filepath.Join(execDir, "data", execName+".db")

	return &Config{
		Exporter: ExporterConfig{
			Name:        execName,
			Environment: "development",
			Port:        8080,
			Format:      "csv",
			OutputDir:   ".",
		},
		Mcx: McxConfig{
			Timeout: 30,
		},
		Storage: StorageConfig{
			DatabasePath:  defaultDBPath,
			BackupDir:     "./backups",
			RetentionDays: 90,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "both",
			MaxSize:    100,
			MaxBackups: 3,
		},
	}
}

func LoadConfig(configFile string) (*Config, error) {
	config := DefaultConfig()

	if configFile == "" {
		// Auto-detect config file
		execPath, _ := os.Executable()
		execDir := filepath.Dir(execPath)
		execName := filepath.Base(execPath)
		execName = execName[:len(execName)-len(filepath.Ext(execName))]

		possiblePaths := []string{
			filepath.Join(execDir, execName+".toml"),
			filepath.Join(execDir, "config.toml"),
			"config.toml",
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			applyEnvOverrides(config)
			return config, nil
		}
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if instance := os.Getenv("MCX_INSTANCE"); instance != "" {
		config.Mcx.Instance = instance
	}
	if company := os.Getenv("MCX_COMPANY"); company != "" {
		config.Mcx.Company = company
	}
	if username := os.Getenv("MCX_USERNAME"); username != "" {
		config.Mcx.Username = username
	}
	if password := os.Getenv("MCX_PASSWORD"); password != "" {
		config.Mcx.Password = password
	}

	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		config.Storage.DatabasePath = dbPath
	}
	if backupDir := os.Getenv("BACKUP_DIR"); backupDir != "" {
		config.Storage.BackupDir = backupDir
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		config.Logging.Format = logFormat
	}
	if logOutput := os.Getenv("LOG_OUTPUT"); logOutput != "" {
		config.Logging.Output = logOutput
	}

	if format := os.Getenv("EXPORT_FORMAT"); format != "" {
		config.Exporter.Format = format
	}
	if outputDir := os.Getenv("OUTPUT_DIR"); outputDir != "" {
		config.Exporter.OutputDir = outputDir
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if portNum, err := strconv.Atoi(port); err == nil {
			config.Exporter.Port = portNum
		}
	}
}

func (c *Config) Validate() error {
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage database_path is required")
	}

	if c.Exporter.Port <= 0 {
		c.Exporter.Port = 8080
	}

	validFormats := []string{"csv", "json", "xlsx"}
	validFormat := false
	for _, format := range validFormats {
		if c.Exporter.Format == format {
			validFormat = true
			break
		}
	}
	if !validFormat {
		return fmt.Errorf("invalid export format: %s", c.Exporter.Format)
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLogLevels {
		if c.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validOutputs := []string{"console", "file", "both"}
	validOutput := false
	for _, output := range validOutputs {
		if c.Logging.Output == output {
			validOutput = true
			break
		}
	}
	if !validOutput {
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}

	return nil
}

// ValidateCredentials checks the fields needed to reach the MCX API. The
// serve command reads only from local storage and skips this.
func (c *Config) ValidateCredentials() error {
	if c.Mcx.Instance == "" {
		return fmt.Errorf("mcx instance is required (config or MCX_INSTANCE)")
	}
	if c.Mcx.Company == "" {
		return fmt.Errorf("mcx company is required (config or MCX_COMPANY)")
	}
	if c.Mcx.Username == "" {
		return fmt.Errorf("mcx username is required (config or MCX_USERNAME)")
	}
	if c.Mcx.Password == "" {
		return fmt.Errorf("mcx password is required (config or MCX_PASSWORD)")
	}
	return nil
}
