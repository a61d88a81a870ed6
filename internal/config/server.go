package config

import (
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	LogLevel      string              `mapstructure:"log_level"`
	SchemaFile    string              `mapstructure:"schema_file"`
	WorkspaceFile string              `mapstructure:"workspace_file"`
	Connection    string              `mapstructure:"connection"`
	LSP           LSPConfig           `mapstructure:"lsp"`
	Completion    CompletionConfig    `mapstructure:"completion"`
	Introspection IntrospectionConfig `mapstructure:"introspection"`
}

// LSPConfig holds language server transport settings.
type LSPConfig struct {
	// TCP port to listen on; 0 serves over stdio.
	Port int `mapstructure:"port"`
	// Language id completion providers are registered under.
	LanguageID string `mapstructure:"language_id"`
}

// CompletionConfig controls how candidates are returned to the editor.
type CompletionConfig struct {
	// Filter and rank candidates by the word under the cursor.
	FuzzyFilter bool `mapstructure:"fuzzy_filter"`
	// Maximum number of items per response; 0 means unlimited.
	MaxItems int `mapstructure:"max_items"`
}

// IntrospectionConfig controls reading a schema from a live database.
type IntrospectionConfig struct {
	Schemas       []string `mapstructure:"schemas"`
	ExcludeTables []string `mapstructure:"exclude_tables"`
	// Connect timeout (seconds).
	ConnectTimeout int `mapstructure:"connect_timeout"`
}

func LoadServerConfig(configPath string) (*ServerConfig, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("schema_file", "")
	v.SetDefault("workspace_file", "")
	v.SetDefault("connection", "")

	v.SetDefault("lsp.port", 0)
	v.SetDefault("lsp.language_id", "sql")

	v.SetDefault("completion.fuzzy_filter", false)
	v.SetDefault("completion.max_items", 0)

	v.SetDefault("introspection.schemas", []string{"public"})
	v.SetDefault("introspection.exclude_tables", []string{})
	v.SetDefault("introspection.connect_timeout", 10)

	// PEEK_LSP_PORT overrides lsp.port, and so on.
	v.SetEnvPrefix("peek")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
