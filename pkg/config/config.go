// Package config loads server options from defaults, an optional YAML file
// and PHOTOGEO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/NERVsystems/photogeo/pkg/cluster"
	"github.com/NERVsystems/photogeo/pkg/geo"
	"github.com/NERVsystems/photogeo/pkg/schedule"
	"github.com/NERVsystems/photogeo/pkg/viewport"
)

// EnvPrefix is the environment prefix: PHOTOGEO_CLUSTER_MAX_DISTANCE_KM
// overrides cluster.max_distance_km.
const EnvPrefix = "PHOTOGEO"

// Config holds all application configuration.
type Config struct {
	Cluster  ClusterConfig  `mapstructure:"cluster"`
	Viewport ViewportConfig `mapstructure:"viewport"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Server   ServerConfig   `mapstructure:"server"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

type ClusterConfig struct {
	MaxDistanceKm float64 `mapstructure:"max_distance_km"`
	Unit          string  `mapstructure:"unit"`
}

type ViewportConfig struct {
	PaddingDegrees float64             `mapstructure:"padding_degrees"`
	Strategy       string              `mapstructure:"strategy"`
	Thresholds     viewport.Thresholds `mapstructure:"thresholds"`
	BaseMarkerSize float64             `mapstructure:"base_marker_size"`
	ChunkSize      int                 `mapstructure:"chunk_size"`
	// IndexThreshold is the photo count from which reduce_viewport builds
	// an R-tree index. 0 disables indexing.
	IndexThreshold int `mapstructure:"index_threshold"`
}

type ScheduleConfig struct {
	DebounceMs   int `mapstructure:"debounce_ms"`
	ThrottleMs   int `mapstructure:"throttle_ms"`
	BatchDelayMs int `mapstructure:"batch_delay_ms"`
	PoolCapacity int `mapstructure:"pool_capacity"`
}

type CacheConfig struct {
	Size       int `mapstructure:"size"`
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

type ServerConfig struct {
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables it.
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cluster.max_distance_km", cluster.DefaultMaxDistanceKm)
	v.SetDefault("cluster.unit", string(geo.Kilometers))
	v.SetDefault("viewport.padding_degrees", viewport.DefaultPadding)
	v.SetDefault("viewport.strategy", string(viewport.Stride))
	v.SetDefault("viewport.thresholds.high", viewport.DefaultThresholds.High)
	v.SetDefault("viewport.thresholds.medium", viewport.DefaultThresholds.Medium)
	v.SetDefault("viewport.thresholds.low", viewport.DefaultThresholds.Low)
	v.SetDefault("viewport.base_marker_size", viewport.DefaultBaseMarkerSize)
	v.SetDefault("viewport.chunk_size", viewport.DefaultChunkSize)
	v.SetDefault("viewport.index_threshold", viewport.DefaultIndexThreshold)
	v.SetDefault("schedule.debounce_ms", 100)
	v.SetDefault("schedule.throttle_ms", 100)
	v.SetDefault("schedule.batch_delay_ms", 100)
	v.SetDefault("schedule.pool_capacity", 256)
	v.SetDefault("cache.size", 128)
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("server.rate_per_second", 20)
	v.SetDefault("server.burst", 40)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Default returns the built-in defaults, ignoring files and environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// ErrNoConfigFile is returned by Watch when there is no file to watch.
var ErrNoConfigFile = errors.New("config: no config file found")

// Load reads configuration. When path is empty, photogeo.yaml is looked up
// in . and ./configs and is optional; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := readFile(v, path); err != nil {
		return nil, err
	}
	if used := v.ConfigFileUsed(); used != "" {
		slog.Debug("loaded config file", "path", used)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("photogeo")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Watch reloads the file Load(path) would read whenever it changes and
// passes each valid result to onChange. Editors often save in several
// writes, so onChange runs only once wait has passed without another
// event. An invalid file is logged and skipped. stop ends the reloads.
func Watch(path string, wait time.Duration, onChange func(*Config)) (stop func(), err error) {
	v := viper.New()
	if err := readFile(v, path); err != nil {
		return nil, err
	}
	file := v.ConfigFileUsed()
	if file == "" {
		return nil, ErrNoConfigFile
	}

	reload, err := schedule.NewDebouncer(wait, func(e fsnotify.Event) {
		cfg, err := Load(file)
		if err != nil {
			slog.Warn("ignoring invalid config change", "path", file, "error", err)
			return
		}
		slog.Info("config reloaded", "path", file, "op", e.Op.String())
		onChange(cfg)
	})
	if err != nil {
		return nil, err
	}

	v.OnConfigChange(reload.Call)
	v.WatchConfig()
	return reload.Stop, nil
}

// Validate checks every field and reports all violations at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Cluster.MaxDistanceKm < 0 || math.IsNaN(c.Cluster.MaxDistanceKm) || math.IsInf(c.Cluster.MaxDistanceKm, 0) {
		errs = append(errs, fmt.Sprintf("cluster.max_distance_km must be a non-negative number, got %v", c.Cluster.MaxDistanceKm))
	}
	if _, err := geo.ParseUnit(c.Cluster.Unit); err != nil {
		errs = append(errs, fmt.Sprintf("cluster.unit: %v", err))
	}
	if c.Viewport.PaddingDegrees < 0 || c.Viewport.PaddingDegrees > 180 {
		errs = append(errs, fmt.Sprintf("viewport.padding_degrees must be 0-180, got %v", c.Viewport.PaddingDegrees))
	}
	if _, err := viewport.ParseStrategy(c.Viewport.Strategy); err != nil {
		errs = append(errs, fmt.Sprintf("viewport.strategy: %v", err))
	}
	if err := c.Viewport.Thresholds.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("viewport.thresholds: %v", err))
	}
	if c.Viewport.BaseMarkerSize <= 0 {
		errs = append(errs, "viewport.base_marker_size must be positive")
	}
	if c.Viewport.ChunkSize <= 0 {
		errs = append(errs, "viewport.chunk_size must be positive")
	}
	if c.Viewport.IndexThreshold < 0 {
		errs = append(errs, "viewport.index_threshold must not be negative")
	}
	if c.Schedule.DebounceMs <= 0 {
		errs = append(errs, "schedule.debounce_ms must be positive")
	}
	if c.Schedule.ThrottleMs <= 0 {
		errs = append(errs, "schedule.throttle_ms must be positive")
	}
	if c.Schedule.BatchDelayMs <= 0 {
		errs = append(errs, "schedule.batch_delay_ms must be positive")
	}
	if c.Schedule.PoolCapacity < 0 {
		errs = append(errs, "schedule.pool_capacity must not be negative")
	}
	if c.Cache.Size <= 0 {
		errs = append(errs, "cache.size must be positive")
	}
	if c.Cache.TTLSeconds <= 0 {
		errs = append(errs, "cache.ttl_seconds must be positive")
	}
	if c.Server.RatePerSecond <= 0 {
		errs = append(errs, "server.rate_per_second must be positive")
	}
	if c.Server.Burst <= 0 {
		errs = append(errs, "server.burst must be positive")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("log.level: %v", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ClusterOptions converts the cluster section.
func (c *Config) ClusterOptions() (cluster.Options, error) {
	unit, err := geo.ParseUnit(c.Cluster.Unit)
	if err != nil {
		return cluster.Options{}, err
	}
	return cluster.New(c.Cluster.MaxDistanceKm, unit)
}

// ReducerConfig converts the viewport section.
func (c *Config) ReducerConfig() viewport.Config {
	return viewport.Config{
		Thresholds:     c.Viewport.Thresholds,
		Padding:        c.Viewport.PaddingDegrees,
		Strategy:       viewport.Strategy(c.Viewport.Strategy),
		BaseMarkerSize: c.Viewport.BaseMarkerSize,
	}
}

// CacheTTL returns the cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// DebounceWait, ThrottleLimit and BatchDelay return the schedule section
// as durations.
func (c *Config) DebounceWait() time.Duration {
	return time.Duration(c.Schedule.DebounceMs) * time.Millisecond
}

func (c *Config) ThrottleLimit() time.Duration {
	return time.Duration(c.Schedule.ThrottleMs) * time.Millisecond
}

func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.Schedule.BatchDelayMs) * time.Millisecond
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}
