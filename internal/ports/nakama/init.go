package nakama

import (
	"context"
	"database/sql"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"bloktris/internal/app"
	"bloktris/internal/bot"
	"bloktris/internal/config"
)

const (
	gameConfigPath    = "data/game_config.json"
	botIdentitiesPath = "data/bot_identities.json"
	envTicketSecret   = "bloktris_ticket_secret"
)

// InitModule wires storage, RPCs and the match handler for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		logger.Warn("InitModule: Could not load game config, using defaults: %v", err)
	}
	cfg := *config.GetGameConfig()
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg.ApplyEnv(env)

	identities := cfg.BotIdentitiesPath
	if identities == "" {
		identities = botIdentitiesPath
	}
	if err := bot.LoadIdentities(identities); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	}

	store := NewNakamaMatchStore(nk, cfg.StorageCollection, cfg.StorageKey)
	svc := app.NewService(store, nil, nil)
	tickets := app.NewTicketService(env[envTicketSecret], time.Duration(cfg.TicketTTLSeconds)*time.Second)
	if env[envTicketSecret] == "" {
		logger.Warn("InitModule: %s not set, replay tickets disabled.", envTicketSecret)
	}

	if err := RegisterRPCs(initializer, svc, tickets); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameBloktris, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(svc, tickets, cfg), nil
	}); err != nil {
		return err
	}

	logger.Info("Bloktris Go module loaded.")
	return nil
}
