package main

import (
	"fmt"
	"os"

	"drive-linkbot/bot"
	"drive-linkbot/config"
	"drive-linkbot/handlers"
	"drive-linkbot/utils"

	"github.com/rs/zerolog/log"
)

func main() {
	settings, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := utils.NewLogger(settings.Log.Level, settings.Log.Pretty)
	log.Logger = logger

	bot.Run(settings, logger, handlers.Register)
}
