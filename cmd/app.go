package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/egoavara/brat/internal/autoupdate"
	"github.com/egoavara/brat/internal/config"
	"github.com/egoavara/brat/internal/i18n"
	"github.com/egoavara/brat/internal/logging"
	"github.com/egoavara/brat/internal/remote"
	"github.com/egoavara/brat/internal/settings"
	"github.com/egoavara/brat/internal/vault"
)

// app bundles everything a vault command works with
type app struct {
	cfg       *config.Config
	vault     *vault.Vault
	store     *settings.Store
	client    *remote.Client
	installer *autoupdate.Installer
	checker   *autoupdate.Checker
	logger    *zap.Logger
	closeLog  func() error
}

// loadApp resolves the vault and loads its BRAT settings.
// The caller must call close.
func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	root := cfg.Vault
	if vaultFlag != "" {
		root = vaultFlag
	}
	if root == "" {
		return nil, errors.New(i18n.T("vault.notConfigured", nil))
	}

	v, err := vault.Open(root)
	if err != nil {
		return nil, err
	}

	persister := settings.NewFilePersister(v.DataPath())
	data, err := persister.Load(ctx)
	if err != nil {
		return nil, err
	}
	current, err := settings.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", v.DataPath(), err)
	}

	logOpts := logging.Options{
		Verbose:   verbose,
		Debugging: current.DebuggingMode,
	}
	if current.LoggingEnabled {
		logOpts.NotePath = v.LogNotePath(current.LoggingPath)
		logOpts.NoteVerbose = current.LoggingVerboseEnabled
	}
	logger, closeLog, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	token := cfg.GitHub.Token
	if tokenFlag != "" {
		token = tokenFlag
	}
	client, err := remote.NewClient(
		remote.WithToken(token),
		remote.WithTimeout(cfg.GitHub.Timeout),
		remote.WithMaxTries(cfg.GitHub.Retries),
		remote.WithLogger(logger),
	)
	if err != nil {
		closeLog()
		return nil, err
	}

	store := settings.NewStore(current, persister, settings.WithLogger(logger))

	logger.Debug("vault loaded",
		zap.String("vault", v.Root),
		zap.Int("plugins", len(current.PluginList)),
		zap.Int("themes", len(current.ThemesList)),
	)

	return &app{
		cfg:       cfg,
		vault:     v,
		store:     store,
		client:    client,
		installer: autoupdate.NewInstaller(client, v, store, logger),
		checker:   autoupdate.NewChecker(client, v, store, logger),
		logger:    logger,
		closeLog:  closeLog,
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
	_ = a.closeLog()
}

// notify prints a completion notice unless notifications are disabled
func (a *app) notify(messageID string, data map[string]any) {
	msg := i18n.T(messageID, data)
	a.logger.Info(msg)
	if a.store.Snapshot().NotificationsEnabled {
		fmt.Println(msg)
	}
}

// warn reports a non-fatal failure
func (a *app) warn(err error) {
	a.logger.Debug("non-fatal error", zap.Error(err))
	fmt.Fprintf(os.Stderr, "%s: %v\n", i18n.T("warning", nil), err)
}
