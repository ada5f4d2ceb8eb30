package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

type (
	Config struct {
		TelegramAPIToken string  `env:"TOKEN,required"`
		AdminIDs         []int64 `env:"ADMINS,required"`
		ChatIDs          []int64 `env:"CHATS,required"`
		DefaultLanguage  string  `env:"LANG,default=en"`
		LogLevel         int     `env:"LOG_LEVEL,default=4"`
		DotPath          string  `env:"DOT_PATH,default=~/.modwarden"`
		MetricsAddr      string  `env:"METRICS_ADDR,default=:2112"`
		Moderation       Moderation
		Flood            Flood
	}

	Moderation struct {
		WarnBanThreshold int           `env:"WARN_BAN_THRESHOLD,default=3"`
		WarnBanDuration  time.Duration `env:"WARN_BAN_DURATION,default=720h"`
	}

	Flood struct {
		Window      time.Duration `env:"FLOOD_WINDOW,default=3m"`
		Limit       int           `env:"FLOOD_LIMIT,default=10"`
		RestrictFor time.Duration `env:"FLOOD_RESTRICT_FOR,default=3m"`
	}
)

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

func Load() (Config, error) {
	once.Do(func() {
		cfg := &Config{}
		envcfg := envconfig.Config{
			Lookuper: envconfig.PrefixLookuper("MW_", envconfig.OsLookuper()),
			Target:   cfg,
		}
		if err := envconfig.ProcessWith(context.Background(), &envcfg); err != nil {
			globalErr = fmt.Errorf("process env config: %w", err)
			return
		}
		dotPath, err := homedir.Expand(cfg.DotPath)
		if err != nil {
			globalErr = fmt.Errorf("expand dot path: %w", err)
			return
		}
		cfg.DotPath = dotPath
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

func Get() Config {
	cfg, err := Load()
	if err != nil {
		log.WithField("error", err.Error()).Error("cant load config")
	}
	return cfg
}
