package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-classnames/cfg"
)

func TestDSN(t *testing.T) {
	loader, err := cfg.NewMockLoader()
	require.NoError(t, err)
	config, err := loader.Load()
	require.NoError(t, err)

	mysql, err := NewMysql(config)
	require.NoError(t, err)

	dsn := mysql.DSN()
	assert.Contains(t, dsn, "root:root@tcp(127.0.0.1:3306)/github_classnames")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
	assert.NoError(t, mysql.Close())
}
