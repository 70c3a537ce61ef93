package cfg

type MockLoader struct {
	Config *Config
}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (ml *MockLoader) Load() (*Config, error) {
	if ml.Config != nil {
		return ml.Config, nil
	}
	return &Config{
		// App
		App: App{
			Name:    "github-classnames",
			Version: "0.0.1",
		},

		// GithubApi
		GithubApi: GithubApi{
			AccessToken:       "mock-token",
			TokenFile:         DefaultTokenFile,
			ApiUrl:            DefaultApiUrl,
			DefaultBranch:     DefaultBranch,
			RequestTimeoutSec: 30,
			RateLimitResetMin: 1,
		},

		// Crawl
		Crawl: Crawl{
			StartID:      0,
			EndID:        DefaultEndID,
			MostUsed:     DefaultMostUsed,
			PageSize:     MaxPageSize,
			ReposPerPage: MaxPageSize,
			TreeWorkers:  1,
		},

		// Export
		Export: Export{
			Dir:          DefaultExportDir,
			AllFile:      DefaultAllFile,
			MostUsedFile: DefaultMostUsedFile,
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "github_classnames",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// Kafka
		Kafka: Kafka{
			Brokers:  []string{"127.0.0.1:9092"},
			Producer: KafkaProducer{TopicRepo: DefaultTopicRepo},
			GroupID:  DefaultConsumerGroup,
		},

		Ui: Ui{Port: 8080},
	}, nil
}
