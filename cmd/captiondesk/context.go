package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"captiondesk/internal/api"
	"captiondesk/internal/config"
	"captiondesk/internal/logging"
	"captiondesk/internal/queue"
	"captiondesk/internal/storage"
)

const envAPIURLName = config.EnvAPIURL

type commandContext struct {
	configFlag *string
	apiURLFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, apiURLFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		apiURLFlag: apiURLFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.apiURLFlag != nil {
			if override := strings.TrimRight(strings.TrimSpace(*c.apiURLFlag), "/"); override != "" {
				cfg.API.BaseURL = override
				if err := cfg.Validate(); err != nil {
					c.configErr = err
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// loggerFor builds the process logger once, writing to the command's stderr.
func (c *commandContext) loggerFor(cmd *cobra.Command) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		var w io.Writer
		if cmd != nil {
			w = cmd.ErrOrStderr()
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, w)
	})
	return c.logger, c.loggerErr
}

// session is everything a backend-facing command needs for one run.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	store  storage.Store
	creds  *storage.Credentials
	client *api.Client
}

// withStore opens the local store for the duration of fn.
func (c *commandContext) withStore(cmd *cobra.Command, fn func(*session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.loggerFor(cmd)
	if err != nil {
		return err
	}
	store, err := storage.OpenSQLite(commandCtx(cmd), cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer store.Close()

	creds := storage.NewCredentials(store)
	if err := creds.Seed(commandCtx(cmd), cfg.API.Token); err != nil {
		return fmt.Errorf("seed credentials: %w", err)
	}
	return fn(&session{cfg: cfg, logger: logger, store: store, creds: creds})
}

// withClient opens the local store and an API client for the duration of fn.
func (c *commandContext) withClient(cmd *cobra.Command, fn func(*session) error) error {
	return c.withStore(cmd, func(s *session) error {
		client, err := api.New(api.Config{
			BaseURL: s.cfg.API.BaseURL,
			Timeout: s.cfg.RequestTimeout(),
			Tokens:  s.creds,
			Logger:  s.logger,
			Unauthorized: func(ctx context.Context, apiErr *api.Error) {
				logging.WarnWithContext(s.logger, "session invalidated", "session_invalidated",
					logging.String("op", apiErr.Op),
					logging.String(logging.FieldErrorHint, loginHint),
					logging.String(logging.FieldImpact, "stored token cleared"),
				)
			},
		})
		if err != nil {
			return err
		}
		s.client = client
		return fn(s)
	})
}

func commandCtx(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// resolveTone picks the tone for a submission: the flag, then the last tone
// used, then the configured default.
func resolveTone(ctx context.Context, s *session, flag string) (queue.Tone, error) {
	if strings.TrimSpace(flag) != "" {
		tone, ok := queue.ParseTone(flag)
		if !ok {
			return "", fmt.Errorf("unknown tone %q (valid: %s)", flag, joinTones())
		}
		return tone, nil
	}
	var last string
	if ok, err := s.store.Get(ctx, storage.KeyLastTone, &last); err == nil && ok {
		if tone, valid := queue.ParseTone(last); valid {
			return tone, nil
		}
	}
	tone, ok := queue.ParseTone(s.cfg.Submission.DefaultTone)
	if !ok {
		return "", errors.New("submission.default_tone is not a known tone")
	}
	return tone, nil
}

func rememberTone(ctx context.Context, s *session, tone queue.Tone) {
	if err := s.store.Set(ctx, storage.KeyLastTone, string(tone)); err != nil {
		s.logger.Debug("remember tone failed", logging.Error(err))
	}
}

func joinTones() string {
	tones := queue.AllTones()
	names := make([]string, 0, len(tones))
	for _, t := range tones {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
