package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "mqtt://localhost", NormalizeURL("localhost"))
	assert.Equal(t, "mqtt://10.0.0.2", NormalizeURL("mqtt://10.0.0.2"))
	assert.Equal(t, "mqtts://secure", NormalizeURL("mqtts://secure"))
	assert.Equal(t, "mqtt://MQTT://upper", NormalizeURL("MQTT://upper"))
}

func TestNewBrokerConfig(t *testing.T) {
	auth := &Auth{User: "u", Pass: "p"}
	cfg := NewBrokerConfig(BrokerDefinition{
		URL:  "broker.local",
		Port: 1884,
		Auth: auth,
		Subscriptions: []SubscriptionConfig{
			{Topic: "a"},
			{Topic: "b/*"},
			{Topic: "a", Label: "again"},
			{Topic: "c"},
		},
	})

	assert.Equal(t, "mqtt://broker.local", cfg.URL)
	assert.Equal(t, 1884, cfg.Port)
	assert.Same(t, auth, cfg.Auth)
	assert.Equal(t, []string{"a", "b/*", "c"}, cfg.Topics)
}

func TestRegistrations(t *testing.T) {
	regs := Registrations("id-1", []BrokerDefinition{
		{URL: "one", Port: 1883},
		{URL: "mqtts://two", Port: 8883, Subscriptions: []SubscriptionConfig{{Topic: "x"}}},
	})

	require.Len(t, regs, 2)
	assert.Equal(t, "id-1", regs[0].ID)
	assert.Equal(t, "mqtt://one", regs[0].URL)
	assert.Empty(t, regs[0].Topics)
	assert.Equal(t, "mqtts://two", regs[1].URL)
	assert.Equal(t, []string{"x"}, regs[1].Topics)
}
