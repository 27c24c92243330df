package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConfString(t *testing.T) {
	require.Nil(t, parseConfString("rkpi2.yaml"))
	require.Nil(t, parseConfString("level=trace"))
	require.Equal(t, []byte("{log: {level: trace}}"), parseConfString("log.level=trace"))
	require.Equal(t, []byte("{rkpi2: {level: 19}}"), parseConfString("rkpi2.level=19"))
}

func TestLoadConfig(t *testing.T) {
	configs = [][]byte{
		[]byte("log:\n  level: debug\napi:\n  listen: \":1984\""),
		[]byte("{log: {level: trace}}"),
	}
	defer func() { configs = nil }()

	var cfg struct {
		Log map[string]string `yaml:"log"`
		API struct {
			Listen string `yaml:"listen"`
		} `yaml:"api"`
	}

	LoadConfig(&cfg)

	// the second config wins, but untouched keys survive
	require.Equal(t, "trace", cfg.Log["level"])
	require.Equal(t, ":1984", cfg.API.Listen)
}
