package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config carries the runtime settings for the stagehand binary. Values
// come from defaults, an optional YAML config file, and STAGEHAND_*
// environment variables, in increasing precedence.
type Config struct {
	DBPath string `mapstructure:"db_path"`

	// AdminGroup gates directory administration (groups and accounts).
	AdminGroup string `mapstructure:"admin_group"`
	// SuperAdminUser is the distinguished account that can never be
	// disabled or stripped of the admin group, so the directory cannot
	// lock every administrator out.
	SuperAdminUser string `mapstructure:"super_admin_user"`
	// AppCreatorGroup gates application creation and editing.
	AppCreatorGroup string `mapstructure:"app_creator_group"`
	// PlanCreatorGroup gates plan creation.
	PlanCreatorGroup string `mapstructure:"plan_creator_group"`

	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	SMTPFrom string `mapstructure:"smtp_from"`
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "stagehand.db"
	}
	return filepath.Join(home, ".stagehand", "stagehand.db")
}

// Load reads configuration from the given file path (optional, "" skips
// the file) layered under STAGEHAND_* environment variables.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault("db_path", defaultDBPath())
	v.SetDefault("admin_group", "admin")
	v.SetDefault("super_admin_user", "root_01")
	v.SetDefault("app_creator_group", "project_lead")
	v.SetDefault("plan_creator_group", "project_manager")
	v.SetDefault("smtp_host", "localhost")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_from", "stagehand@localhost")

	v.SetEnvPrefix("STAGEHAND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
