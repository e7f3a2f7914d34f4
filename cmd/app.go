package cmd

import (
	"fmt"

	"github.com/longkey1/gemchat/internal/gemchat/asker"
	"github.com/longkey1/gemchat/internal/gemchat/config"
	"github.com/longkey1/gemchat/internal/gemchat/conversation"
	"github.com/longkey1/gemchat/internal/gemini"
	"github.com/longkey1/gemchat/internal/logger"
	"github.com/longkey1/gemchat/internal/storage"
)

// app holds the components shared by the chat commands
type app struct {
	cfg    *config.Config
	store  *conversation.Store
	client *gemini.Client
	asker  *asker.Asker

	closeStorage func() error
}

// newApp loads the configuration and opens the history store.
// The API settings are only validated when requireAPI is set.
func newApp(requireAPI bool) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if requireAPI {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}

	st, err := storage.Open(cfg.Storage, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage, err)
	}
	logger.L.Debug("storage opened", "backend", cfg.Storage, "data_dir", cfg.DataDir)

	store := conversation.NewStore(st)
	client := gemini.NewClient(cfg)

	return &app{
		cfg:          cfg,
		store:        store,
		client:       client,
		asker:        asker.New(client, store),
		closeStorage: st.Close,
	}, nil
}

func (a *app) Close() error {
	return a.closeStorage()
}
