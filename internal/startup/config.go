package startup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Timmoth/doodles/internal/logging"

	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "doodles.yaml"

// Config holds all application configuration
type Config struct {
	RawDir      string
	OutputDir   string
	MetricsFile string
	AutoOrient  bool
	VipsEnabled bool

	// ConfigFile is the YAML file that was loaded, empty if none
	ConfigFile string
}

// fileConfig mirrors the optional doodles.yaml. Pointers distinguish
// "not set" from false.
type fileConfig struct {
	RawDir      string `yaml:"raw_dir"`
	OutputDir   string `yaml:"output_dir"`
	MetricsFile string `yaml:"metrics_file"`
	AutoOrient  *bool  `yaml:"auto_orient"`
	VipsEnabled *bool  `yaml:"vips_enabled"`
}

// DefaultConfig returns the built-in defaults: raw_doodles in, doodles out
func DefaultConfig() *Config {
	return &Config{
		RawDir:      "raw_doodles",
		OutputDir:   "doodles",
		VipsEnabled: true,
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML
// file and environment variables, in increasing precedence, then resolves
// and prepares the directories.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	config := DefaultConfig()

	configPath, explicit := os.LookupEnv("DOODLES_CONFIG")
	if !explicit {
		configPath = defaultConfigFile
	}
	fc, err := readConfigFile(configPath)
	switch {
	case err == nil:
		config.ConfigFile = configPath
		fc.applyTo(config)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		logging.Debug("  No %s found, using defaults", defaultConfigFile)
	default:
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	config.RawDir = getEnv("RAW_DIR", config.RawDir)
	config.OutputDir = getEnv("OUTPUT_DIR", config.OutputDir)
	config.MetricsFile = getEnv("METRICS_FILE", config.MetricsFile)
	config.AutoOrient = getEnvBool("AUTO_ORIENT", config.AutoOrient)
	config.VipsEnabled = getEnvBool("VIPS_ENABLED", config.VipsEnabled)

	if config.ConfigFile != "" {
		logging.Info("  CONFIG FILE:    %s", config.ConfigFile)
	}
	logging.Info("  RAW_DIR:        %s", config.RawDir)
	logging.Info("  OUTPUT_DIR:     %s", config.OutputDir)
	logging.Info("  METRICS_FILE:   %s", valueOrDisabled(config.MetricsFile))
	logging.Info("  AUTO_ORIENT:    %v", config.AutoOrient)
	logging.Info("  VIPS_ENABLED:   %v", config.VipsEnabled)
	logging.Info("  LOG_LEVEL:      %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	if err := config.resolvePaths(); err != nil {
		return nil, err
	}

	if err := checkRawDirectory(config.RawDir); err != nil {
		return nil, fmt.Errorf("raw directory error: %w", err)
	}

	if err := ensureDirectory(config.OutputDir); err != nil {
		return nil, fmt.Errorf("output directory error: %w", err)
	}
	if err := testWriteAccess(config.OutputDir); err != nil {
		return nil, fmt.Errorf("output directory is not writable: %w", err)
	}
	logging.Info("  [OK] Output directory is writable")

	return config, nil
}

func readConfigFile(path string) (*fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &fc, nil
}

func (fc *fileConfig) applyTo(c *Config) {
	if fc.RawDir != "" {
		c.RawDir = fc.RawDir
	}
	if fc.OutputDir != "" {
		c.OutputDir = fc.OutputDir
	}
	if fc.MetricsFile != "" {
		c.MetricsFile = fc.MetricsFile
	}
	if fc.AutoOrient != nil {
		c.AutoOrient = *fc.AutoOrient
	}
	if fc.VipsEnabled != nil {
		c.VipsEnabled = *fc.VipsEnabled
	}
}

func (c *Config) resolvePaths() error {
	var err error

	c.RawDir, err = filepath.Abs(c.RawDir)
	if err != nil {
		return fmt.Errorf("failed to resolve raw directory path: %w", err)
	}
	logging.Info("  Raw directory (absolute):    %s", c.RawDir)

	c.OutputDir, err = filepath.Abs(c.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory path: %w", err)
	}
	logging.Info("  Output directory (absolute): %s", c.OutputDir)

	if c.MetricsFile != "" {
		c.MetricsFile, err = filepath.Abs(c.MetricsFile)
		if err != nil {
			return fmt.Errorf("failed to resolve metrics file path: %w", err)
		}
	}

	return nil
}

func checkRawDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}
	logging.Debug("    [OK] Raw directory exists")
	return nil
}

func ensureDirectory(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Output directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func valueOrDisabled(v string) string {
	if v == "" {
		return "(disabled)"
	}
	return v
}
