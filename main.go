package main

import (
	"github.com/reekpie/rkpi2/internal/api"
	"github.com/reekpie/rkpi2/internal/api/ws"
	"github.com/reekpie/rkpi2/internal/app"
	"github.com/reekpie/rkpi2/internal/rkpi2"
	"github.com/reekpie/rkpi2/internal/streams"
	"github.com/reekpie/rkpi2/pkg/shell"
)

func main() {
	app.Init() // init config and logs

	api.Init() // init HTTP API server
	ws.Init()  // init websocket handler

	streams.Init() // load named sources list
	rkpi2.Init()   // probe, conversion and streaming endpoints

	shell.RunUntilSignal()
}
