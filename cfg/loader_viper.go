package cfg

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "cfg/yaml"
	defaultConfigName = "mode"
	envPrefix         = "CLASSNAMES"
)

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"token":     "github_api.access_token",
	"branch":    "github_api.default_branch",
	"verbose":   "crawl.verbose",
	"start-id":  "crawl.start_id",
	"end-id":    "crawl.end_id",
	"most-used": "crawl.most_used",
	"out":       "export.dir",
}

type ViperLoader struct {
	v            *viper.Viper
	file         string
	watch        bool
	requireToken bool

	once                  sync.Once
	mu                    sync.RWMutex
	cfg                   *Config
	configChangeCallbacks []func(*Config)
}

// NewViperLoader reads file if given, otherwise looks for cfg/yaml/mode.yaml.
// A missing default file is not an error: defaults, env and flags still apply.
func NewViperLoader(file string, watch bool) (*ViperLoader, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &ViperLoader{
		v:                     v,
		file:                  file,
		watch:                 watch,
		requireToken:          true,
		configChangeCallbacks: make([]func(*Config), 0),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "github-classnames")
	v.SetDefault("app.version", "0.0.1")

	v.SetDefault("github_api.access_token", "")
	v.SetDefault("github_api.token_file", DefaultTokenFile)
	v.SetDefault("github_api.api_url", DefaultApiUrl)
	v.SetDefault("github_api.default_branch", DefaultBranch)
	v.SetDefault("github_api.request_timeout_sec", 30)
	v.SetDefault("github_api.rate_limit_reset_min", 1)
	v.SetDefault("github_api.requests_per_second", 0)

	v.SetDefault("crawl.verbose", false)
	v.SetDefault("crawl.start_id", 0)
	v.SetDefault("crawl.end_id", DefaultEndID)
	v.SetDefault("crawl.most_used", DefaultMostUsed)
	v.SetDefault("crawl.page_size", MaxPageSize)
	v.SetDefault("crawl.repos_per_page", MaxPageSize)
	v.SetDefault("crawl.tree_workers", 1)

	v.SetDefault("export.dir", DefaultExportDir)
	v.SetDefault("export.all_file", DefaultAllFile)
	v.SetDefault("export.most_used_file", DefaultMostUsedFile)
	v.SetDefault("export.compress", false)

	v.SetDefault("mysql.enabled", false)
	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", "3306")
	v.SetDefault("mysql.username", "root")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.database", "github_classnames")
	v.SetDefault("mysql.max_idle_connection", 10)
	v.SetDefault("mysql.max_open_connection", 100)
	v.SetDefault("mysql.max_life_time_connection", 3600)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.producer.topic_repo", DefaultTopicRepo)
	v.SetDefault("kafka.group_id", DefaultConsumerGroup)

	v.SetDefault("ui.port", 8080)
}

// WithoutToken accepts a config without an API token.
func (yl *ViperLoader) WithoutToken() *ViperLoader {
	yl.requireToken = false
	return yl
}

// BindFlags lets command line flags override file and env values.
func (yl *ViperLoader) BindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := yl.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("[ERROR][CONFIG] failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func (yl *ViperLoader) Load() (*Config, error) {
	var err error
	yl.once.Do(func() {
		err = yl.loadConfig()
		if err == nil && yl.IsWatchChange() {
			yl.v.OnConfigChange(func(e fsnotify.Event) {
				fmt.Printf("[INFO][CONFIG] Config file changed: %s\n", e.Name)
				if errReload := yl.reloadConfig(); errReload != nil {
					fmt.Printf("[ERROR][CONFIG] Failed to reload config: %v\n", errReload)
				}
			})
			yl.v.WatchConfig()
		}
	})

	if err != nil {
		return nil, err
	}

	yl.mu.RLock()
	defer yl.mu.RUnlock()
	return yl.cfg, nil
}

// IsWatchChange reports whether a config file is being watched.
func (yl *ViperLoader) IsWatchChange() bool {
	return yl.watch && yl.v.ConfigFileUsed() != ""
}

func (yl *ViperLoader) RegisterConfigChangeCallback(callback func(*Config)) {
	yl.mu.Lock()
	yl.configChangeCallbacks = append(yl.configChangeCallbacks, callback)
	yl.mu.Unlock()
}

func (yl *ViperLoader) loadConfig() error {
	if yl.file != "" {
		yl.v.SetConfigFile(yl.file)
	} else {
		yl.v.AddConfigPath(defaultConfigPath)
		yl.v.SetConfigName(defaultConfigName)
		yl.v.SetConfigType("yaml")
	}

	if err := yl.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if yl.file != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("[ERROR][CONFIG] failed to read config file: %w", err)
		}
	}

	cfg, err := yl.decode()
	if err != nil {
		return err
	}

	yl.mu.Lock()
	yl.cfg = cfg
	yl.mu.Unlock()

	return nil
}

func (yl *ViperLoader) decode() (*Config, error) {
	cfg := &Config{}
	if err := yl.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("[ERROR][CONFIG] failed to unmarshal config: %w", err)
	}
	if err := cfg.ResolveToken(); err != nil {
		return nil, err
	}
	validate := cfg.Validate
	if !yl.requireToken {
		validate = cfg.ValidateBounds
	}
	if err := validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (yl *ViperLoader) reloadConfig() error {
	cfg, err := yl.decode()
	if err != nil {
		return err
	}

	// Update the instance
	yl.mu.Lock()
	yl.cfg = cfg

	// Notify all registered callbacks
	callbacks := make([]func(*Config), len(yl.configChangeCallbacks))
	copy(callbacks, yl.configChangeCallbacks)
	yl.mu.Unlock()
	for _, callback := range callbacks {
		go callback(cfg)
	}

	fmt.Println("[INFO][CONFIG] Configuration reloaded successfully")
	return nil
}
