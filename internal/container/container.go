package container

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-directory/config"
	"github.com/oksasatya/user-directory/internal/domain/repository"
)

// app-level container to share constructed components across packages.
// Router modules auto-wire themselves from these singletons; everything here
// is set once in main before the router is built.

var (
	cfg    *config.Config
	logger *logrus.Logger
	store  repository.UserRepository
)

func SetConfig(c *config.Config)           { cfg = c }
func GetConfig() *config.Config            { return cfg }
func SetLogger(l *logrus.Logger)           { logger = l }
func GetLogger() *logrus.Logger            { return logger }
func SetStore(s repository.UserRepository) { store = s }
func GetStore() repository.UserRepository  { return store }
