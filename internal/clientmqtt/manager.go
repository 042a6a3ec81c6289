package clientmqtt

import (
	"context"
	"fmt"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"mqttdash/internal/dashboard"
	"mqttdash/internal/logger"
)

// Manager keeps one client per broker endpoint.
type Manager struct {
	log      logger.Logger
	clientID string
	qos      byte
	msgCh    chan<- dashboard.Message
	start    func(ctx context.Context, c MQTTClient, msgCh chan<- dashboard.Message) error
	newFn    func(log logger.Logger, cfg MQTTConf) MQTTClient

	mu      sync.Mutex
	clients map[string]MQTTClient
}

// NewManager конструктор. Every client forwards its messages to msgCh.
func NewManager(log logger.Logger, clientID string, qos byte, msgCh chan<- dashboard.Message) *Manager {
	if log.GetLevel() == "debug" {
		pahoLog := log.With(logger.Fields{"module": "paho"})
		mqtt.ERROR = pahoLog
		mqtt.CRITICAL = pahoLog
		mqtt.WARN = pahoLog
	}

	return &Manager{
		log:      log,
		clientID: clientID,
		qos:      qos,
		msgCh:    msgCh,
		start: func(ctx context.Context, c MQTTClient, msgCh chan<- dashboard.Message) error {
			return c.Start(ctx, msgCh)
		},
		newFn: func(log logger.Logger, cfg MQTTConf) MQTTClient {
			return NewClient(log, cfg)
		},
		clients: map[string]MQTTClient{},
	}
}

// AddBroker connects to the broker of reg. A second registration with the
// same url and endpoint only adds its topics.
func (m *Manager) AddBroker(ctx context.Context, reg dashboard.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := fmt.Sprintf("%s-%s-%d", m.clientID, shortID(reg.ID), len(m.clients))
	cfg, err := NewConf(id, m.qos, reg)
	if err != nil {
		return err
	}

	// Messages are tagged with the registration url, so two spellings of one
	// endpoint need their own clients.
	key := cfg.Broker() + " " + cfg.URL
	if c, ok := m.clients[key]; ok {
		m.log.With(logger.Fields{"module": "mqtt"}).Debugf("broker %s already registered, adding topics", key)
		c.AddTopics(cfg.Topics)
		return nil
	}

	c := m.newFn(m.log, cfg)
	if err := m.start(ctx, c, m.msgCh); err != nil {
		return fmt.Errorf("start client for %s: %w", key, err)
	}
	m.clients[key] = c
	m.log.With(logger.Fields{"module": "mqtt"}).Infof("broker %s registered with %d topics", key, len(cfg.Topics))
	return nil
}

// Stop disconnects every client.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, c := range m.clients {
		if err := c.Stop(); err != nil {
			m.log.With(logger.Fields{"module": "mqtt"}).Errorf("stop %s: %v", key, err)
		}
	}
	m.clients = map[string]MQTTClient{}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
