package main

import (
	"fmt"
	"net/http"

	"secretai/internal/config"
	"secretai/pkg/secretai"
)

const defaultChatModel = "deepseek-r1:70b"

// settings is the configuration after flags, environment, file and
// built-in defaults have been merged, in that order of precedence.
type settings struct {
	SDK     secretai.Config
	Chat    config.ChatConfig
	Headers http.Header
	Source  string // config file path, empty when none was found
}

func loadSettings(path string, explicit secretai.Config, getenv func(string) string) (*settings, error) {
	var (
		file *config.Config
		err  error
	)
	if path != "" {
		file, err = config.Load(path)
	} else {
		file, path, err = config.Find()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	defaults := file.SDK().Overlay(secretai.DefaultConfig())

	chat := file.Chat
	if chat.Model == "" {
		chat.Model = defaultChatModel
	}

	headers := http.Header{}
	for name, value := range file.ExpandedHeaders() {
		headers.Set(name, value)
	}

	return &settings{
		SDK:     explicit.Resolve(getenv, defaults),
		Chat:    chat,
		Headers: headers,
		Source:  path,
	}, nil
}
