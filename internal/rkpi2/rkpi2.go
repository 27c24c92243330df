package rkpi2

import (
	"github.com/reekpie/rkpi2/internal/api"
	"github.com/reekpie/rkpi2/internal/api/ws"
	"github.com/reekpie/rkpi2/internal/app"
	"github.com/rs/zerolog"
)

func Init() {
	var cfg struct {
		Mod struct {
			Level int `yaml:"level"`
		} `yaml:"rkpi2"`
	}

	app.LoadConfig(&cfg)

	log = app.GetLogger("rkpi2")

	// zstd level for stream.rkpi2 responses without an explicit level param
	defaultLevel = cfg.Mod.Level

	api.HandleFunc("api/probe", apiProbe)
	api.HandleFunc("api/stream.wav", apiStreamWav)
	api.HandleFunc("api/stream.rkpi2", apiStreamRkpi2)

	ws.HandleFunc("rkpi2", wsRkpi2)
}

var log zerolog.Logger
var defaultLevel int
