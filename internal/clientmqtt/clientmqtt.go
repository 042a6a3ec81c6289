package clientmqtt

import (
	"context"
	"errors"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"mqttdash/internal/dashboard"
	"mqttdash/internal/logger"
)

const (
	retryInterval = 5 * time.Second
	keepAlive     = 30 * time.Second
	disconnectMs  = 500
)

// ClientMQTT структура клиента MQTT.
type ClientMQTT struct {
	ctx       context.Context
	log       logger.Logger
	cfgClient MQTTConf
	client    mqtt.Client
	opts      *mqtt.ClientOptions
	msgCh     chan<- dashboard.Message

	mu      sync.Mutex
	filters []string
}

// MQTTClient is a convenience interface to use within this application.
type MQTTClient interface {
	Start(ctx context.Context, msgCh chan<- dashboard.Message) error
	AddTopics(topics []string)
	Stop() error
}

// NewClient конструктор.
func NewClient(log logger.Logger, cfgClient MQTTConf) *ClientMQTT {
	c := &ClientMQTT{
		log:       log,
		cfgClient: cfgClient,
	}
	c.addFilters(cfgClient.Topics)
	return c
}

// Start connects in the background. Connection problems are logged and
// retried; only invalid settings are returned.
func (c *ClientMQTT) Start(ctx context.Context, msgCh chan<- dashboard.Message) error {
	if c.cfgClient.Host == "" {
		return errors.New("mqtt host is empty")
	}

	c.ctx = ctx
	c.msgCh = msgCh

	c.opts = mqtt.NewClientOptions().
		AddBroker(c.cfgClient.Broker()).
		SetUsername(c.cfgClient.User).
		SetPassword(c.cfgClient.Password).
		SetDefaultPublishHandler(c.messageHandler).
		SetOnConnectHandler(c.connectHandler).
		SetConnectionLostHandler(c.connectLostHandler).
		SetClientID(c.cfgClient.ClientID).
		SetOrderMatters(true).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(retryInterval).
		SetMaxReconnectInterval(retryInterval).
		SetKeepAlive(keepAlive)

	c.client = mqtt.NewClient(c.opts)

	token := c.client.Connect()
	go func() {
		select {
		case <-c.ctx.Done():
			return
		case <-token.Done():
			if token.Error() != nil {
				c.log.With(logger.Fields{"module": "mqtt", "broker": c.cfgClient.URL}).Errorf("connect: %v", token.Error())
			}
		}
	}()
	return nil
}

func (c *ClientMQTT) Stop() error {
	// Disconnect also ends a connect retry loop that never succeeded.
	if c.client != nil {
		c.client.Disconnect(disconnectMs)
	}
	return nil
}

// AddTopics subscribes to topics not covered yet.
func (c *ClientMQTT) AddTopics(topics []string) {
	added := c.addFilters(topics)
	if c.client == nil || !c.client.IsConnected() {
		return
	}
	for _, f := range added {
		c.sub(f)
	}
}

func (c *ClientMQTT) addFilters(topics []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var added []string
	for _, t := range topics {
		f := subscriptionFilter(t)
		if contains(c.filters, f) {
			continue
		}
		c.filters = append(c.filters, f)
		added = append(added, f)
	}
	return added
}

func (c *ClientMQTT) Filters() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.filters...)
}

func (c *ClientMQTT) connectHandler(_ mqtt.Client) {
	c.log.With(logger.Fields{"module": "mqtt", "broker": c.cfgClient.URL}).Info("client connected to server")
	for _, f := range c.Filters() {
		c.sub(f)
	}
}

func (c *ClientMQTT) connectLostHandler(_ mqtt.Client, err error) {
	c.log.With(logger.Fields{"module": "mqtt", "broker": c.cfgClient.URL}).Errorf("server connect lost: %v", err)
}

func (c *ClientMQTT) messageHandler(_ mqtt.Client, msg mqtt.Message) {
	c.log.With(logger.Fields{"module": "mqtt"}).Debugf("received message: %s from topic: %s", msg.Payload(), msg.Topic())

	m := dashboard.Message{
		URL:     c.cfgClient.URL,
		Topic:   msg.Topic(),
		Payload: dashboard.Text(string(msg.Payload())),
	}
	select {
	case <-c.ctx.Done():
	case c.msgCh <- m:
	}
}

func (c *ClientMQTT) sub(topic string) {
	token := c.client.Subscribe(topic, c.cfgClient.Qos, nil)
	go func() {
		select {
		case <-c.ctx.Done():
			return
		case <-token.Done():
			if token.Error() != nil {
				c.log.With(logger.Fields{"module": "mqtt"}).Errorf("topic %s subscription error. %v", topic, token.Error())
				return
			}
		}
		c.log.With(logger.Fields{"module": "mqtt"}).Debugf("topic %s subscribed", topic)
	}()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
