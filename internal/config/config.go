package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/forPelevin/pausecut/internal/domain/segmenter"
)

const envPrefix = "PAUSECUT"

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"out":           "out",
	"cache-dir":     "cache_dir",
	"log-level":     "log.level",
	"log-dev":       "log.development",
	"pause":         "segmenter.pause_threshold",
	"min":           "segmenter.min_duration",
	"max":           "segmenter.max_duration",
	"preview-chars": "segmenter.preview_chars",
	"asr":           "asr.backend",
	"language":      "asr.language",
}

// Configuration provides typed access to settings merged from defaults, an
// optional config file, PAUSECUT_* environment variables and command flags.
type Configuration struct {
	viper *viper.Viper
}

// Load reads configFile (if set) and binds the given flags. Flags only
// override other sources when explicitly set on the command line.
func Load(configFile string, flags *pflag.FlagSet) (*Configuration, error) {
	v := newViper()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}
	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	return &Configuration{viper: v}, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	def := segmenter.DefaultConfig()
	v.SetDefault("segmenter.pause_threshold", def.PauseThreshold)
	v.SetDefault("segmenter.min_duration", def.MinDuration)
	v.SetDefault("segmenter.max_duration", def.MaxDuration)
	v.SetDefault("segmenter.preview_chars", def.PreviewChars)

	v.SetDefault("out", "out")
	v.SetDefault("cache_dir", ".cache")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("ffmpeg.path", "ffmpeg")
	v.SetDefault("ffprobe.path", "ffprobe")
	v.SetDefault("whisper.bin", ".cache/bin/whisper.cpp")
	v.SetDefault("whisper.model", ".cache/models/ggml-base.bin")

	v.SetDefault("asr.backend", "whispercpp")
	v.SetDefault("asr.base_url", "https://api.openai.com")
	v.SetDefault("asr.model", "whisper-1")
	v.SetDefault("asr.language", "")
	v.SetDefault("asr.allowed_hosts", []string{})

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("asr.api_key", envPrefix+"_ASR_API_KEY", "OPENAI_API_KEY")
	return v
}

func (c *Configuration) Segmenter() segmenter.Config {
	return segmenter.Config{
		PauseThreshold: c.viper.GetFloat64("segmenter.pause_threshold"),
		MinDuration:    c.viper.GetFloat64("segmenter.min_duration"),
		MaxDuration:    c.viper.GetFloat64("segmenter.max_duration"),
		PreviewChars:   c.viper.GetInt("segmenter.preview_chars"),
	}
}

func (c *Configuration) OutDir() string { return c.viper.GetString("out") }
func (c *Configuration) CacheDir() string { return c.viper.GetString("cache_dir") }
func (c *Configuration) LogLevel() string { return c.viper.GetString("log.level") }
func (c *Configuration) LogDevelopment() bool { return c.viper.GetBool("log.development") }
func (c *Configuration) FFmpegPath() string { return c.viper.GetString("ffmpeg.path") }
func (c *Configuration) FFprobePath() string { return c.viper.GetString("ffprobe.path") }
func (c *Configuration) WhisperBin() string { return c.viper.GetString("whisper.bin") }
func (c *Configuration) WhisperModel() string { return c.viper.GetString("whisper.model") }
func (c *Configuration) ASRBackend() string { return c.viper.GetString("asr.backend") }
func (c *Configuration) ASRBaseURL() string { return c.viper.GetString("asr.base_url") }
func (c *Configuration) ASRModel() string { return c.viper.GetString("asr.model") }
func (c *Configuration) ASRLanguage() string { return c.viper.GetString("asr.language") }
func (c *Configuration) ASRAPIKey() string { return c.viper.GetString("asr.api_key") }

// ASRAllowedHosts accepts a list in a config file or a comma separated env
// value.
func (c *Configuration) ASRAllowedHosts() []string {
	var out []string
	for _, item := range c.viper.GetStringSlice("asr.allowed_hosts") {
		for _, h := range strings.Split(item, ",") {
			if h = strings.TrimSpace(h); h != "" {
				out = append(out, h)
			}
		}
	}
	return out
}
