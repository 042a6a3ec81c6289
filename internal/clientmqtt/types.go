package clientmqtt

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"mqttdash/internal/dashboard"
)

type MQTTConf struct {
	ClientID string   // ClientID - уникальное имя клиента для брокера.
	Schema   string   // Schema - тип подключения (tcp, ssl).
	Host     string   // Host - адрес MQTT сервера.
	Port     string   // Port - порт MQTT сервера.
	User     string   // User - логин для подключения к MQTT серверу.
	Password string   // Password - пароль для подключения к MQTT серверу.
	Qos      byte     // Qos - качество обслуживания подписок.
	URL      string   // URL - адрес брокера, с которым сообщения уходят в dashboard.
	Topics   []string // Topics - темы подписок, могут содержать "*".
}

// Broker returns the paho server address.
func (c MQTTConf) Broker() string {
	return fmt.Sprintf("%s://%s:%s", c.Schema, c.Host, c.Port)
}

// NewConf converts a registration into connection settings.
func NewConf(clientID string, qos byte, reg dashboard.Registration) (MQTTConf, error) {
	u, err := url.Parse(reg.URL)
	if err != nil {
		return MQTTConf{}, fmt.Errorf("parse broker url %q: %w", reg.URL, err)
	}

	var schema string
	switch u.Scheme {
	case "mqtt":
		schema = "tcp"
	case "mqtts":
		schema = "ssl"
	default:
		return MQTTConf{}, fmt.Errorf("broker url %q: unsupported scheme %q", reg.URL, u.Scheme)
	}
	if u.Hostname() == "" {
		return MQTTConf{}, fmt.Errorf("broker url %q: no host", reg.URL)
	}

	port := u.Port()
	if port == "" {
		port = strconv.Itoa(reg.Port)
	}

	cfg := MQTTConf{
		ClientID: clientID,
		Schema:   schema,
		Host:     u.Hostname(),
		Port:     port,
		Qos:      qos,
		URL:      reg.URL,
		Topics:   append([]string(nil), reg.Topics...),
	}
	if reg.Auth != nil {
		cfg.User = reg.Auth.User
		cfg.Password = reg.Auth.Pass
	}
	return cfg, nil
}

// subscriptionFilter turns a dashboard topic into a broker topic filter.
// Everything from the first level holding a "*" on is covered by "#"; the
// dashboard narrows the messages down again.
func subscriptionFilter(topic string) string {
	if !strings.Contains(topic, "*") {
		return topic
	}
	levels := strings.Split(topic, "/")
	for i, l := range levels {
		if strings.Contains(l, "*") {
			return strings.Join(append(levels[:i:i], "#"), "/")
		}
	}
	return topic
}
