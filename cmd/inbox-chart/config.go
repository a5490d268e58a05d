package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/theimaginaryfoundation/inbox-stats/inbox"
)

type Config struct {
	InputRoot     string  `yaml:"in"`
	OutputPath    string  `yaml:"out"`
	ReportPath    string  `yaml:"report"`
	MeIdentity    string  `yaml:"me"`
	MinMessages   uint64  `yaml:"min_messages"`
	WidthInches   float64 `yaml:"width"`
	HeightInches  float64 `yaml:"height"`
	MaxLabelRunes int     `yaml:"max_label_chars"`
	Pretty        bool    `yaml:"pretty"`
	LogLevel      string  `yaml:"log_level"`
	LogJSON       bool    `yaml:"log_json"`

	ConfigPath  string `yaml:"-"`
	PrintSchema bool   `yaml:"-"`
}

func (c Config) Validate() error {
	if c.InputRoot == "" {
		return errors.New("missing -in")
	}
	if c.OutputPath == "" {
		return errors.New("missing -out")
	}
	if c.MeIdentity == "" {
		return errors.New("missing -me")
	}
	if c.WidthInches < 0 || c.HeightInches < 0 {
		return errors.New("width/height must be >= 0")
	}
	if c.MaxLabelRunes < 0 {
		return errors.New("max-label-chars must be >= 0")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InputRoot:   filepath.FromSlash("bin/inbox"),
		OutputPath:  "chart.svg",
		MeIdentity:  inbox.DefaultMeIdentity,
		MinMessages: inbox.DefaultMinMessages,
		LogLevel:    "info",
	}
}

// loadConfigFile decodes a YAML config over cfg. Keys the file omits keep their current values.
func loadConfigFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
