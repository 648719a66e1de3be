package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/jigsaw/pkg/cache"
	"github.com/matzehuels/jigsaw/pkg/store"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys.
	cfgCacheBackend  = "cache.backend"
	cfgCacheDir      = "cache.dir"
	cfgRedisAddr     = "redis.addr"
	cfgRedisPassword = "redis.password"
	cfgRedisDB       = "redis.db"
	cfgRedisPrefix   = "redis.prefix"
	cfgStoreBackend  = "store.backend"
	cfgStorePath     = "store.path"
	cfgMongoURI      = "mongo.uri"
	cfgMongoDatabase = "mongo.database"
	cfgServerAddr    = "server.addr"
	cfgServerMax     = "server.max_pieces"
	cfgServerTimeout = "server.timeout"

	envPrefix = "JIGSAW"
)

// Backend names accepted by cache.backend and store.backend.
const (
	backendNone   = "none"
	backendFile   = "file"
	backendRedis  = "redis"
	backendSQLite = "sqlite"
	backendMongo  = "mongo"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# jigsaw configuration
# Every key can be overridden with an environment variable, e.g.
# JIGSAW_CACHE_BACKEND=none or JIGSAW_STORE_BACKEND=mongo.

cache:
  backend: file        # file | redis | none
  # dir: ~/.cache/jigsaw

redis:
  addr: ""
  prefix: "jigsaw:"

store:
  backend: sqlite      # sqlite | mongo | none
  # path: ~/.local/share/jigsaw/runs.db

mongo:
  uri: ""
  database: jigsaw

server:
  addr: ":8080"
  max_pieces: 2500
  timeout: 30s
`

// settings is the loaded application configuration.
type settings struct {
	v *viper.Viper
}

// loadConfig reads config.yaml from configDir, creating the directory and
// a default file on first run. A missing file is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgCacheBackend, backendFile)
	v.SetDefault(cfgRedisPrefix, "jigsaw:")
	v.SetDefault(cfgStoreBackend, backendSQLite)
	v.SetDefault(cfgMongoDatabase, appName)
	v.SetDefault(cfgServerAddr, ":8080")
	v.SetDefault(cfgServerMax, 2500)
	v.SetDefault(cfgServerTimeout, 30*time.Second)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// loadSettings loads the application config once per CLI.
func (c *CLI) loadSettings() (*settings, error) {
	if c.settings != nil {
		return c.settings, nil
	}
	dir := c.configDir
	if dir == "" {
		var err error
		if dir, err = configDir(); err != nil {
			return nil, err
		}
	}
	v, err := loadConfig(dir)
	if err != nil {
		return nil, err
	}
	c.settings = &settings{v: v}
	return c.settings, nil
}

// openCache opens the configured cache backend.
func (s *settings) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch backend := strings.ToLower(s.v.GetString(cfgCacheBackend)); backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendFile, "":
		dir := s.v.GetString(cfgCacheDir)
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	case backendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     s.v.GetString(cfgRedisAddr),
			Password: s.v.GetString(cfgRedisPassword),
			DB:       s.v.GetInt(cfgRedisDB),
			Prefix:   s.v.GetString(cfgRedisPrefix),
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be file, redis or none)", backend)
	}
}

// openStore opens the configured run store. It returns nil, nil when
// storage is disabled.
func (s *settings) openStore(ctx context.Context) (store.Store, error) {
	switch backend := strings.ToLower(s.v.GetString(cfgStoreBackend)); backend {
	case backendNone:
		return nil, nil
	case backendSQLite, "":
		path := s.v.GetString(cfgStorePath)
		if path == "" {
			dir, err := dataDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dir, "runs.db")
		}
		return store.OpenSQLite(path)
	case backendMongo:
		return store.OpenMongo(ctx, store.MongoConfig{
			URI:      s.v.GetString(cfgMongoURI),
			Database: s.v.GetString(cfgMongoDatabase),
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q (must be sqlite, mongo or none)", backend)
	}
}

// requireStore opens the run store, failing when storage is disabled.
func (c *CLI) requireStore(ctx context.Context) (store.Store, error) {
	s, err := c.loadSettings()
	if err != nil {
		return nil, err
	}
	st, err := s.openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	if st == nil {
		return nil, fmt.Errorf("run storage is disabled (store.backend is %q)", backendNone)
	}
	return st, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/jigsaw/).
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// configDir returns the config directory (~/.config/jigsaw/).
func configDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// dataDir returns the data directory (~/.local/share/jigsaw/).
func dataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}
