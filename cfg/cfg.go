package cfg

import (
	"fmt"
	"math"
)

const (
	DefaultApiUrl        = "https://api.github.com"
	DefaultBranch        = "master"
	DefaultTokenFile     = ".github-oauth.token"
	DefaultEndID         = math.MaxInt32
	DefaultMostUsed      = 20
	MaxPageSize          = 100
	DefaultExportDir     = "results"
	DefaultAllFile       = "all-names.csv"
	DefaultMostUsedFile  = "most-used.csv"
	DefaultTopicRepo     = "classnames.repo-scanned"
	DefaultConsumerGroup = "classnames-consumer-group"
)

type (
	App struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
	}

	GithubApi struct {
		AccessToken       string  `mapstructure:"access_token"`
		TokenFile         string  `mapstructure:"token_file"`
		ApiUrl            string  `mapstructure:"api_url"`
		DefaultBranch     string  `mapstructure:"default_branch"`
		RequestTimeoutSec int     `mapstructure:"request_timeout_sec"`
		RateLimitResetMin int     `mapstructure:"rate_limit_reset_min"`
		RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	}

	Crawl struct {
		Verbose      bool  `mapstructure:"verbose"`
		StartID      int64 `mapstructure:"start_id"`
		EndID        int64 `mapstructure:"end_id"`
		MostUsed     int   `mapstructure:"most_used"`
		PageSize     int   `mapstructure:"page_size"`
		ReposPerPage int   `mapstructure:"repos_per_page"`
		TreeWorkers  int   `mapstructure:"tree_workers"`
	}

	Export struct {
		Dir          string `mapstructure:"dir"`
		AllFile      string `mapstructure:"all_file"`
		MostUsedFile string `mapstructure:"most_used_file"`
		Compress     bool   `mapstructure:"compress"`
	}

	Mysql struct {
		Enabled               bool   `mapstructure:"enabled"`
		Host                  string `mapstructure:"host"`
		Port                  string `mapstructure:"port"`
		Username              string `mapstructure:"username"`
		Password              string `mapstructure:"password"`
		Database              string `mapstructure:"database"`
		MaxIdleConnection     int    `mapstructure:"max_idle_connection"`
		MaxOpenConnection     int    `mapstructure:"max_open_connection"`
		MaxLifeTimeConnection int    `mapstructure:"max_life_time_connection"`
	}

	KafkaProducer struct {
		TopicRepo string `mapstructure:"topic_repo"`
	}

	Kafka struct {
		Enabled  bool          `mapstructure:"enabled"`
		Brokers  []string      `mapstructure:"brokers"`
		Producer KafkaProducer `mapstructure:"producer"`
		GroupID  string        `mapstructure:"group_id"`
	}

	Ui struct {
		Port int `mapstructure:"port"`
	}
)

type Config struct {
	App       App       `mapstructure:"app"`
	GithubApi GithubApi `mapstructure:"github_api"`
	Crawl     Crawl     `mapstructure:"crawl"`
	Export    Export    `mapstructure:"export"`
	Mysql     Mysql     `mapstructure:"mysql"`
	Kafka     Kafka     `mapstructure:"kafka"`
	Ui        Ui        `mapstructure:"ui"`
}

// String hides the token so the config can be logged.
func (c *Config) String() string {
	return fmt.Sprintf("Configuration: (token hidden), verbose=%t, startId=%d, endId=%d, mostUsed=%d, branch=%s",
		c.Crawl.Verbose, c.Crawl.StartID, c.Crawl.EndID, c.Crawl.MostUsed, c.GithubApi.DefaultBranch)
}
