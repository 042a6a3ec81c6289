package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Default values.
const (
	DefaultLogLevel       = "info"
	DefaultClientID       = "mqttdash"
	DefaultPort           = 1883
	DefaultHeader         = "MQTT"
	DefaultAnimationSpeed = 2000 // ms
	DefaultLoading        = "Loading …"
	DefaultEmpty          = "No subscriptions configured"
	DefaultListen         = ":8080"
	DefaultNetwork        = "192.168.6.0/24"
	DefaultPosition       = 1
	DefaultDecimals       = 1
	maxDecimals           = 100
)

var (
	ErrNoBrokerURL    = errors.New("broker url is empty")
	ErrNoTopic        = errors.New("subscription topic is empty")
	ErrDecimals       = fmt.Errorf("decimals out of range 0..%d", maxDecimals)
	ErrPort           = errors.New("port out of range 1..65535")
	ErrAnimationSpeed = errors.New("animation speed is negative")
)

// Config структура конфигурации.
type Config struct {
	Logger    LogConf       `toml:"logger" yaml:"logger"`       // Logger - конфигурация регистратора.
	MQTT      MQTTConf      `toml:"mqtt" yaml:"mqtt"`           // MQTT - конфигурация MQTT клиентов.
	Dashboard DashboardConf `toml:"dashboard" yaml:"dashboard"` // Dashboard - параметры отображения.
	HTTP      HTTPConf      `toml:"http" yaml:"http"`
	ArtNet    ArtNetConf    `toml:"artnet" yaml:"artnet"`
	Brokers   []BrokerConf  `toml:"brokers" yaml:"brokers"`
}

// LogConf структура конфигурации.
type LogConf struct {
	Level string `toml:"log-level" yaml:"log-level"` // Level - уровень логирования.
}

// MQTTConf holds settings shared by every broker connection.
type MQTTConf struct {
	ClientID string `toml:"clientID" yaml:"clientID"` // ClientID - префикс имени клиента.
	Port     int    `toml:"port" yaml:"port"`         // Port - порт по умолчанию.
	Qos      byte   `toml:"qos" yaml:"qos"`           // Qos - качество обслуживания.
}

type DashboardConf struct {
	Header         string `toml:"header" yaml:"header"`
	AnimationSpeed int    `toml:"animationSpeed" yaml:"animationSpeed"` // ms
	Loading        string `toml:"loading" yaml:"loading"`
	Empty          string `toml:"empty" yaml:"empty"`
}

type HTTPConf struct {
	Listen string `toml:"listen" yaml:"listen"`
}

type ArtNetConf struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Network string `toml:"network" yaml:"network"` // CIDR of the Art-Net interface.
}

type BrokerConf struct {
	URL           string             `toml:"url" yaml:"url"`
	Port          *int               `toml:"port" yaml:"port"`
	Auth          *AuthConf          `toml:"auth" yaml:"auth"`
	Subscriptions []SubscriptionConf `toml:"subscriptions" yaml:"subscriptions"`
}

type AuthConf struct {
	User string `toml:"user" yaml:"user"`
	Pass string `toml:"pass" yaml:"pass"`
}

type SubscriptionConf struct {
	Topic           string           `toml:"topic" yaml:"topic"`
	Label           string           `toml:"label" yaml:"label"`
	Suffix          string           `toml:"suffix" yaml:"suffix"`
	Icon            string           `toml:"icon" yaml:"icon"`
	ShowLabelAsIcon bool             `toml:"showLabelAsIcon" yaml:"showLabelAsIcon"`
	Position        *int             `toml:"position" yaml:"position"`
	Colors          []ColorConf      `toml:"colors" yaml:"colors"`
	Conversion      []ConversionConf `toml:"conversion" yaml:"conversion"`
	Factor          *Number          `toml:"factor" yaml:"factor"`
	Offset          *Number          `toml:"offset" yaml:"offset"`
	Decimals        *int             `toml:"decimals" yaml:"decimals"`
	DMX             *DMXConf         `toml:"dmx" yaml:"dmx"`
}

type ColorConf struct {
	UpTo   Number `toml:"upTo" yaml:"upTo"`
	Label  string `toml:"label" yaml:"label"`
	Value  string `toml:"value" yaml:"value"`
	Suffix string `toml:"suffix" yaml:"suffix"`
}

type ConversionConf struct {
	From Literal `toml:"from" yaml:"from"`
	To   Literal `toml:"to" yaml:"to"`
}

type DMXConf struct {
	Universe uint16 `toml:"universe" yaml:"universe"`
	Channel  uint16 `toml:"channel" yaml:"channel"`
}

// Default returns a configuration with every top level default filled in.
func Default() Config {
	return Config{
		Logger: LogConf{Level: DefaultLogLevel},
		MQTT:   MQTTConf{ClientID: DefaultClientID, Port: DefaultPort},
		Dashboard: DashboardConf{
			Header:         DefaultHeader,
			AnimationSpeed: DefaultAnimationSpeed,
			Loading:        DefaultLoading,
			Empty:          DefaultEmpty,
		},
		HTTP:   HTTPConf{Listen: DefaultListen},
		ArtNet: ArtNetConf{Network: DefaultNetwork},
	}
}

// NewConfig конструктор.
func NewConfig(path string) (*Config, error) {
	cfg := Default()
	if err := decodeFile(path, &cfg); err != nil {
		return &cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return &cfg, err
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return nil
}

// Validate fills per-broker and per-subscription defaults and reports every
// invalid field it finds.
func (c *Config) Validate() error {
	var errs []error

	if c.MQTT.Port == 0 {
		c.MQTT.Port = DefaultPort
	}
	if !validPort(c.MQTT.Port) {
		errs = append(errs, fmt.Errorf("mqtt.port %d: %w", c.MQTT.Port, ErrPort))
	}
	if c.Dashboard.AnimationSpeed < 0 {
		errs = append(errs, fmt.Errorf("dashboard.animationSpeed %d: %w", c.Dashboard.AnimationSpeed, ErrAnimationSpeed))
	}
	if c.ArtNet.Network == "" {
		c.ArtNet.Network = DefaultNetwork
	}

	for i := range c.Brokers {
		b := &c.Brokers[i]
		b.URL = strings.TrimSpace(b.URL)
		if b.URL == "" {
			errs = append(errs, fmt.Errorf("brokers[%d]: %w", i, ErrNoBrokerURL))
		}
		if b.Port == nil {
			port := c.MQTT.Port
			b.Port = &port
		} else if !validPort(*b.Port) {
			errs = append(errs, fmt.Errorf("brokers[%d].port %d: %w", i, *b.Port, ErrPort))
		}

		for j := range b.Subscriptions {
			s := &b.Subscriptions[j]
			if s.Topic == "" {
				errs = append(errs, fmt.Errorf("brokers[%d].subscriptions[%d]: %w", i, j, ErrNoTopic))
			}
			if s.Position == nil || *s.Position == 0 {
				pos := DefaultPosition
				s.Position = &pos
			}
			if s.Decimals == nil {
				dec := DefaultDecimals
				s.Decimals = &dec
			} else if *s.Decimals < 0 || *s.Decimals > maxDecimals {
				errs = append(errs, fmt.Errorf("brokers[%d].subscriptions[%d].decimals %d: %w", i, j, *s.Decimals, ErrDecimals))
			}
		}
	}

	return errors.Join(errs...)
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}
