// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Thermoquad/hexlink/pkg/hexframe"
	"github.com/Thermoquad/hexlink/pkg/hexlink"
	"github.com/Thermoquad/hexlink/pkg/uartlink"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Settings holds everything a command needs to build and send a batch
type Settings struct {
	Port        string
	Baud        int
	URL         string
	Username    string
	NoSSLVerify bool

	Digits  int
	Input   string
	Payload string
	Journal string

	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	InterByteTimeout time.Duration

	LogLevel string
}

// DefaultSettings returns Settings with default values
func DefaultSettings() Settings {
	return Settings{
		Baud:             uartlink.DefaultBaudRate,
		Input:            "input.txt",
		Payload:          "payload.bin",
		ReadTimeout:      uartlink.DefaultReadTimeout,
		WriteTimeout:     uartlink.DefaultWriteTimeout,
		InterByteTimeout: uartlink.DefaultInterByteTimeout,
		LogLevel:         "info",
	}
}

// Validate checks both the batch and the link settings
func (s Settings) Validate() error {
	if err := s.ValidateBatch(); err != nil {
		return err
	}
	return s.ValidateLink()
}

// ValidateBatch checks the settings used to encode a frame
func (s Settings) ValidateBatch() error {
	if s.Digits < hexframe.MinDigitsPerLine || s.Digits > hexframe.MaxDigitsPerLine {
		return fmt.Errorf("--digits must be %d-%d (got %d)", hexframe.MinDigitsPerLine, hexframe.MaxDigitsPerLine, s.Digits)
	}
	return nil
}

// ValidateLink checks the settings used to open a link
func (s Settings) ValidateLink() error {
	switch {
	case s.Port == "" && s.URL == "":
		return errors.New("either --port or --url must be specified")
	case s.Port != "" && s.URL != "":
		return errors.New("--port and --url are mutually exclusive")
	case s.Baud <= 0:
		return fmt.Errorf("baud rate must be positive (got %d)", s.Baud)
	case s.ReadTimeout <= 0:
		return fmt.Errorf("read timeout must be positive (got %s)", s.ReadTimeout)
	case s.WriteTimeout <= 0:
		return fmt.Errorf("write timeout must be positive (got %s)", s.WriteTimeout)
	case s.InterByteTimeout <= 0:
		return fmt.Errorf("inter-byte timeout must be positive (got %s)", s.InterByteTimeout)
	}
	return nil
}

// Target names the device or bridge the settings point at
func (s Settings) Target() string {
	if s.URL != "" {
		return s.URL
	}
	return s.Port
}

// LinkConfig converts the settings to a link configuration
func (s Settings) LinkConfig() uartlink.Config {
	cfg := uartlink.DefaultConfig(s.Target())
	cfg.BaudRate = s.Baud
	cfg.ReadTimeout = s.ReadTimeout
	cfg.WriteTimeout = s.WriteTimeout
	cfg.InterByteTimeout = s.InterByteTimeout
	return cfg
}

// RunConfig converts the settings to a batch run configuration
func (s Settings) RunConfig() hexlink.Config {
	return hexlink.Config{
		Link:          s.LinkConfig(),
		DigitsPerLine: s.Digits,
		FramePath:     s.Payload,
	}
}

// FileConfig mirrors Settings but uses strings for durations to make TOML friendly
type FileConfig struct {
	Port             string `toml:"port"`
	Baud             int    `toml:"baud"`
	URL              string `toml:"url"`
	Username         string `toml:"username"`
	NoSSLVerify      *bool  `toml:"no_ssl_verify"`
	Digits           int    `toml:"digits"`
	Input            string `toml:"input"`
	Payload          string `toml:"payload"`
	Journal          string `toml:"journal"`
	ReadTimeout      string `toml:"read_timeout"`
	WriteTimeout     string `toml:"write_timeout"`
	InterByteTimeout string `toml:"inter_byte_timeout"`
	LogLevel         string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.hexlink/config.toml, or "" without a home directory
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".hexlink", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies file values to s, skipping flags set on the command line
func ApplyFileConfig(s *Settings, fc FileConfig, changed map[string]bool) error {
	set := newConfigSetter(changed)

	set.setString("port", fc.Port, &s.Port)
	set.setInt("baud", fc.Baud, &s.Baud)
	set.setString("url", fc.URL, &s.URL)
	set.setString("username", fc.Username, &s.Username)
	set.setBool("no-ssl-verify", fc.NoSSLVerify, &s.NoSSLVerify)
	set.setInt("digits", fc.Digits, &s.Digits)
	set.setString("input", fc.Input, &s.Input)
	set.setString("payload", fc.Payload, &s.Payload)
	set.setString("journal", fc.Journal, &s.Journal)
	set.setString("log-level", fc.LogLevel, &s.LogLevel)

	if err := set.setDuration("read-timeout", fc.ReadTimeout, &s.ReadTimeout); err != nil {
		return err
	}
	if err := set.setDuration("write-timeout", fc.WriteTimeout, &s.WriteTimeout); err != nil {
		return err
	}
	return set.setDuration("inter-byte-timeout", fc.InterByteTimeout, &s.InterByteTimeout)
}

// ApplyEnvConfig applies HEXLINK_* environment variables to s, skipping
// flags set on the command line.
func ApplyEnvConfig(s *Settings, changed map[string]bool) error {
	set := newConfigSetter(changed)

	set.setString("port", os.Getenv("HEXLINK_PORT"), &s.Port)
	set.setString("url", os.Getenv("HEXLINK_URL"), &s.URL)
	set.setString("username", os.Getenv("HEXLINK_USERNAME"), &s.Username)
	set.setBoolFromString("no-ssl-verify", os.Getenv("HEXLINK_NO_SSL_VERIFY"), &s.NoSSLVerify)
	set.setString("input", os.Getenv("HEXLINK_INPUT"), &s.Input)
	set.setString("payload", os.Getenv("HEXLINK_PAYLOAD"), &s.Payload)
	set.setString("journal", os.Getenv("HEXLINK_JOURNAL"), &s.Journal)
	set.setString("log-level", os.Getenv("HEXLINK_LOG_LEVEL"), &s.LogLevel)

	if err := set.setIntFromString("baud", os.Getenv("HEXLINK_BAUD"), &s.Baud); err != nil {
		return err
	}
	if err := set.setIntFromString("digits", os.Getenv("HEXLINK_DIGITS"), &s.Digits); err != nil {
		return err
	}
	if err := set.setDuration("read-timeout", os.Getenv("HEXLINK_READ_TIMEOUT"), &s.ReadTimeout); err != nil {
		return err
	}
	if err := set.setDuration("write-timeout", os.Getenv("HEXLINK_WRITE_TIMEOUT"), &s.WriteTimeout); err != nil {
		return err
	}
	return set.setDuration("inter-byte-timeout", os.Getenv("HEXLINK_INTER_BYTE_TIMEOUT"), &s.InterByteTimeout)
}

// loadSettings merges the config file and environment into s.
// Precedence is flags, then environment, then file.
func loadSettings(cmd *cobra.Command, s *Settings) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	path := configPath
	if path == "" {
		path = DefaultConfigPath()
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	if path != "" {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := ApplyFileConfig(s, fc, changed); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := ApplyEnvConfig(s, changed); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

// configSetter applies configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if positive
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
