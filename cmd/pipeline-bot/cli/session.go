package cli

import (
	"errors"
	"fmt"

	"github.com/davarch/pipeline-bot/internal/infrastructure/config"
	"github.com/davarch/pipeline-bot/internal/infrastructure/gitlab_http"
	"github.com/davarch/pipeline-bot/internal/infrastructure/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// session is what every GitLab facing command starts from.
type session struct {
	cfg config.Config
	log *zap.Logger
	gl  *gitlab_http.Client
}

func (s *session) close() { _ = s.log.Sync() }

// urlTokenArgs accepts either nothing or both the API url and the token.
func urlTokenArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != 2 {
		return errors.New("expected <api-url> <token> or no positional arguments")
	}
	return nil
}

// loadConfig reads the config file and lets the command line win over it.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, err
	}

	if len(args) == 2 {
		cfg.GitLab.BaseURL = args[0]
		cfg.GitLab.Token = args[1]
	}

	if cmd.Flags().Changed("group-name") {
		cfg.Bot.GroupName = groupName
	}

	return cfg, nil
}

func connect(cmd *cobra.Command, args []string) (*session, error) {
	log, err := logging.New(logLevel)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		_ = log.Sync()
		return nil, err
	}

	gl := gitlab_http.New(cfg.GitLab.BaseURL, cfg.GitLab.Token, cfg.GitLab.Timeout, cfg.GitLab.HTTPCache)

	user, err := gl.Authenticate(cmd.Context())
	if err != nil {
		log.Error("authentication failed", zap.String("gitlab", cfg.GitLab.BaseURL), zap.Error(err))
		_ = log.Sync()
		return nil, fmt.Errorf("connect to %s: %w", cfg.GitLab.BaseURL, err)
	}

	log.Info("connection established",
		zap.String("gitlab", cfg.GitLab.BaseURL),
		zap.String("user", user),
		zap.Bool("http_cache", cfg.GitLab.HTTPCache),
	)

	return &session{cfg: cfg, log: log, gl: gl}, nil
}

// addBoolPair registers --name and its negation --no-name.
func addBoolPair(cmd *cobra.Command, name string, def bool, usage string) {
	cmd.Flags().Bool(name, def, usage)
	cmd.Flags().Bool("no-"+name, false, "same as --"+name+"=false")
}

// boolPair resolves --name/--no-name against fallback. The negation wins.
func boolPair(cmd *cobra.Command, name string, fallback bool) bool {
	f := cmd.Flags()
	if no, _ := f.GetBool("no-" + name); no {
		return false
	}
	if f.Changed(name) {
		v, _ := f.GetBool(name)
		return v
	}
	return fallback
}
