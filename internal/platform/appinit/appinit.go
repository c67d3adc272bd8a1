// Package appinit holds the client configuration of the external auth
// provider. It is set once at startup, never changes afterwards, and is
// handed to whoever needs it instead of being read from globals.
package appinit

import (
	"errors"
	"sync"
)

var (
	ErrAlreadyInitialized = errors.New("app config already initialized with different values")
	ErrNotInitialized     = errors.New("app config not initialized")
)

// Config is the provider's public client configuration. The JSON names are
// the ones the provider's web SDK expects.
type Config struct {
	APIKey            string `json:"apiKey"`
	AuthDomain        string `json:"authDomain"`
	ProjectID         string `json:"projectId"`
	StorageBucket     string `json:"storageBucket"`
	MessagingSenderID string `json:"messagingSenderId"`
	AppID             string `json:"appId"`
}

// Complete reports whether the fields needed to sign in are present.
func (c Config) Complete() bool {
	return c.APIKey != "" && c.AuthDomain != "" && c.ProjectID != "" && c.AppID != ""
}

// App is an initialized, read-only configuration.
type App struct {
	cfg Config
}

// Config returns a copy of the configuration.
func (a *App) Config() Config { return a.cfg }

// Initializer creates at most one App.
type Initializer struct {
	mu  sync.Mutex
	app *App
}

// Init creates the App on first call. Later calls return the same App; they
// fail with ErrAlreadyInitialized if they pass a different configuration.
func (i *Initializer) Init(cfg Config) (*App, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.app == nil {
		i.app = &App{cfg: cfg}
		return i.app, nil
	}
	if i.app.cfg != cfg {
		return i.app, ErrAlreadyInitialized
	}
	return i.app, nil
}

// App returns the initialized App.
func (i *Initializer) App() (*App, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.app == nil {
		return nil, ErrNotInitialized
	}
	return i.app, nil
}

var process Initializer

// Init initializes the process-wide App.
func Init(cfg Config) (*App, error) {
	return process.Init(cfg)
}
