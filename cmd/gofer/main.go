// Copyright (C) 2025 the gofer authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/term"

	"gofer/internal/config"
	"gofer/internal/tools"
	systemprompt "gofer/system_prompt"
)

var (
	debugMode  = flag.Bool("d", false, "Enable debug mode")
	logFile    = flag.String("log-file", "", "Log file path (logs disabled by default)")
	configPath = flag.String("config", "", "Config file path")
)

func main() {
	flag.Parse()

	logger := initLogger(*debugMode, *logFile)
	logger.Info().Msg("gofer starting")

	// A .env next to the binary is a convenience for development setups.
	_ = godotenv.Load()

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.Apply()

	if cfg.APIKey == "" {
		logger.Fatal().Msg("no API key configured (set OPENAI_API_KEY or api_key in config)")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIURL != "" {
		clientConfig.BaseURL = cfg.APIURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	registry := tools.NewRegistryWithPolicy(cfg.ToolPolicy())
	defer registry.Close()

	systemPrompt, err := systemprompt.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load system prompt")
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	a := newAgent(client, registry, cfg, logger, interactive, systemPrompt)
	if err := a.run(); err != nil {
		logger.Fatal().Err(err).Msg("agent loop failed")
	}
}

func initLogger(debug bool, logFilePath string) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var output io.Writer
	if logFilePath != "" {
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		output = file
	} else {
		// No logging to console by default - the transcript owns the terminal.
		output = io.Discard
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
