package main

import (
	"github.com/openfsq/qms/backend/internal/server"
	"github.com/openfsq/qms/backend/internal/util"
	"github.com/openfsq/qms/backend/pkg/logger"
	"github.com/openfsq/qms/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
