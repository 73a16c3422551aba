package app

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentstation/unattend"
	"github.com/agentstation/unattend/pkg/constants"
	"github.com/agentstation/unattend/pkg/errors"
	"github.com/agentstation/unattend/pkg/provenance"
	"github.com/agentstation/unattend/pkg/reconciler"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "UNATTEND"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Inputs and outputs
	TemplatePath string
	MappingPath  string
	OutputPath   string
	ReportPath   string
	BaseDir      string

	// Document layout
	Namespace     string
	EntryElement  string
	PathAttribute string
	Comment       string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (UNATTEND_*)
// 3. .env files
// 4. Config file (.unattend.yaml in the working or home directory)
// 5. Defaults
//
// An explicit configFile must exist; the default locations are optional.
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "reading "+configFile, err)
		}
	} else {
		v.SetConfigName(".unattend")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "reading "+v.ConfigFileUsed(), err)
			}
		}
	}

	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color") || os.Getenv("NO_COLOR") != "",
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		TemplatePath: v.GetString("template"),
		MappingPath:  v.GetString("mapping"),
		OutputPath:   v.GetString("output"),
		ReportPath:   v.GetString("report"),
		BaseDir:      v.GetString("base_dir"),

		Namespace:     v.GetString("namespace"),
		EntryElement:  v.GetString("entry_element"),
		PathAttribute: v.GetString("path_attribute"),
		Comment:       v.GetString("comment"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", v.GetString("log_format")),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", v.GetString("log_output")),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("template", constants.DefaultTemplatePath)
	v.SetDefault("mapping", constants.DefaultMappingPath)
	v.SetDefault("output", constants.DefaultOutputPath)
	v.SetDefault("entry_element", constants.EntryElement)
	v.SetDefault("path_attribute", constants.PathAttribute)
	v.SetDefault("comment", provenance.DefaultComment)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// flagFields maps flag names to the config field they set.
var flagFields = map[string]func(dst, src *Config){
	"verbose":   func(d, s *Config) { d.Verbose = s.Verbose },
	"quiet":     func(d, s *Config) { d.Quiet = s.Quiet },
	"no-color":  func(d, s *Config) { d.NoColor = s.NoColor },
	"format":    func(d, s *Config) { d.Format = s.Format },
	"log-level": func(d, s *Config) { d.LogLevel = s.LogLevel },
	"template":  func(d, s *Config) { d.TemplatePath = s.TemplatePath },
	"mapping":   func(d, s *Config) { d.MappingPath = s.MappingPath },
	"output":    func(d, s *Config) { d.OutputPath = s.OutputPath },
	"report":    func(d, s *Config) { d.ReportPath = s.ReportPath },
	"base-dir":  func(d, s *Config) { d.BaseDir = s.BaseDir },
}

// MergeFlags copies the values of the flags that were set on the command
// line from src into c.
func (c *Config) MergeFlags(flags *pflag.FlagSet, src *Config) {
	flags.Visit(func(f *pflag.Flag) {
		if set, ok := flagFields[f.Name]; ok {
			set(c, src)
		}
	})
}

// Unattend returns the library configuration for a run.
func (c *Config) Unattend() unattend.Config {
	return unattend.Config{
		TemplatePath: c.TemplatePath,
		MappingPath:  c.MappingPath,
		OutputPath:   c.OutputPath,
		BaseDir:      c.BaseDir,
		ReportPath:   c.ReportPath,
	}
}

// ReconcilerOptions returns the document layout options for a run.
func (c *Config) ReconcilerOptions() []reconciler.Option {
	opts := []reconciler.Option{
		reconciler.WithNamespace(c.Namespace),
		reconciler.WithProvenance(true),
	}
	if c.EntryElement != "" {
		opts = append(opts, reconciler.WithEntryElement(c.EntryElement))
	}
	if c.PathAttribute != "" {
		opts = append(opts, reconciler.WithPathAttribute(c.PathAttribute))
	}
	if c.Comment != "" {
		opts = append(opts, reconciler.WithComment(c.Comment))
	}
	return opts
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
