package main

import (
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v2"

	"firewatch/db"
	"firewatch/geo"
	qhttp "firewatch/http"
	"firewatch/logger"
	"firewatch/ml"
)

// Config is the serving configuration, read from config.yaml.
type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"http"`
	Log logger.Config `yaml:"log"`
	ML  struct {
		ModelPath string `yaml:"model_path"`
	} `yaml:"ml"`
	Geocoder struct {
		Timeout   time.Duration `yaml:"timeout"`
		CacheSize int           `yaml:"cache_size"`
	} `yaml:"geocoder"`
}

func main() {
	config, err := loadConfig("config.yaml")
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(config.Log); err != nil {
		os.Stderr.WriteString("failed to init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if err := db.InitDB(config.Database.Path); err != nil {
		logger.S().Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()
	logger.S().Infof("database initialized at %s", config.Database.Path)

	initializeServices(config)

	watcher := watchModel(config.ML.ModelPath)
	if watcher != nil {
		defer watcher.Close()
	}

	serverConfig := qhttp.DefaultServerConfig()
	if config.Http.Port != 0 {
		serverConfig.Port = config.Http.Port
	}
	if config.Http.Timeout != 0 {
		serverConfig.Timeout = config.Http.Timeout
	}
	if len(config.Http.AllowedOrigins) != 0 {
		serverConfig.AllowedOrigins = config.Http.AllowedOrigins
	}

	server := qhttp.NewServer(serverConfig)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.S().Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.S().Infof("shutting down")

	if err := server.Stop(); err != nil {
		logger.S().Warnf("server forced to shutdown: %v", err)
	}
	logger.S().Infof("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func initializeServices(config *Config) {
	qhttp.SetModelPath(config.ML.ModelPath)
	if artifact, err := ml.LoadArtifact(config.ML.ModelPath); err != nil {
		// Degraded start: the rest of the interface stays usable,
		// prediction returns a visible error until a reload succeeds.
		logger.S().Warnf("model not loaded, serving degraded: %v", err)
	} else {
		qhttp.SetModel(artifact)
		logger.S().Infof("model loaded from %s (%d feature columns)",
			config.ML.ModelPath, len(artifact.FeatureColumns))
	}

	geocoder := geo.NewGeocoder(config.Geocoder.Timeout)
	cached, err := geo.NewCachedGeocoder(geocoder, config.Geocoder.CacheSize)
	if err != nil {
		logger.S().Warnf("geocode cache unavailable, using direct lookups: %v", err)
		qhttp.SetGeocoder(geocoder)
		return
	}
	qhttp.SetGeocoder(cached)
}

// watchModel reloads the artifact whenever the file is rewritten, so a
// finished training run takes effect without a restart.
func watchModel(modelPath string) *fsnotify.Watcher {
	if modelPath == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.S().Warnf("model watcher unavailable: %v", err)
		return nil
	}
	// Watch the directory: editors and trainers replace the file, and
	// watching the path directly would break on rename.
	if err := watcher.Add(filepath.Dir(modelPath)); err != nil {
		logger.S().Warnf("model watcher unavailable: %v", err)
		watcher.Close()
		return nil
	}

	go func() {
		target := filepath.Clean(modelPath)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := qhttp.ReloadModel(); err != nil {
					logger.S().Warnf("model reload after %s failed: %v", event.Op, err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.S().Warnf("model watcher error: %v", err)
			}
		}
	}()
	return watcher
}
