package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GitLab struct {
		BaseURL   string        `yaml:"base_url"`
		Token     string        `yaml:"token"`
		Timeout   time.Duration `yaml:"timeout"`
		HTTPCache bool          `yaml:"http_cache"`
	} `yaml:"gitlab"`

	Bot struct {
		GroupName           string        `yaml:"group_name"`
		MaxDays             int           `yaml:"max_days"`
		SkipArchived        bool          `yaml:"skip_archived"`
		DryRun              bool          `yaml:"dry_run"`
		IncludeParentGroups bool          `yaml:"include_parent_groups"`
		Every               time.Duration `yaml:"every"`
		PauseFile           string        `yaml:"pause_file"`
	} `yaml:"bot"`

	Stats struct {
		CSVFile string `yaml:"csv_file"`
		DBPath  string `yaml:"db_path"`
	} `yaml:"stats"`

	Dashboard struct {
		DataFile string `yaml:"data_file"`
		OutDir   string `yaml:"out_dir"`
	} `yaml:"dashboard"`
}

// Load reads path on top of the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	var c Config

	c.GitLab.BaseURL = "https://gitlab.com"
	c.GitLab.Timeout = 10 * time.Second
	c.Bot.MaxDays = 10
	c.Bot.SkipArchived = true
	c.Bot.PauseFile = expandHome("~/.cache/pipeline-bot.paused")
	c.Stats.CSVFile = "gitlab_stats.csv"
	c.Dashboard.DataFile = "data.json"
	c.Dashboard.OutDir = "html"

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return c, fmt.Errorf("parse %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return c, err
		}
	}

	if v := os.Getenv("GITLAB_BASE_URL"); v != "" {
		c.GitLab.BaseURL = v
	}

	if v := os.Getenv("GITLAB_TOKEN"); v != "" {
		c.GitLab.Token = v
	}

	if v := os.Getenv("GITLAB_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.GitLab.Timeout = d
		}
	}

	if v := os.Getenv("GITLAB_HTTP_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.GitLab.HTTPCache = b
		}
	}

	if v := os.Getenv("GITLAB_GROUP"); v != "" {
		c.Bot.GroupName = v
	}

	if v := os.Getenv("BOT_PAUSE_FILE"); v != "" {
		c.Bot.PauseFile = v
	}

	c.Bot.PauseFile = expandHome(c.Bot.PauseFile)
	c.Stats.DBPath = expandHome(c.Stats.DBPath)

	if c.GitLab.BaseURL == "" {
		c.GitLab.BaseURL = "https://gitlab.com"
	}

	if c.GitLab.Timeout <= 0 {
		c.GitLab.Timeout = 10 * time.Second
	}

	if c.Bot.MaxDays < 0 {
		return c, fmt.Errorf("bot.max_days must not be negative, got %d", c.Bot.MaxDays)
	}

	return c, nil
}

// Validate checks what every command needs before talking to GitLab.
func (c Config) Validate() error {
	if c.GitLab.Token == "" {
		return errors.New("GITLAB_TOKEN is required")
	}

	if c.Bot.GroupName == "" {
		return errors.New("group name is required (--group-name or GITLAB_GROUP)")
	}

	return nil
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if h, _ := os.UserHomeDir(); h != "" {
			return h + p[1:]
		}
	}
	return p
}
