package dashboard

import "strings"

const (
	schemeMQTT  = "mqtt://"
	schemeMQTTS = "mqtts://"
)

type Auth struct {
	User string `json:"user"`
	Pass string `json:"-"`
}

// BrokerDefinition is one configured broker with its subscriptions.
type BrokerDefinition struct {
	URL           string
	Port          int
	Auth          *Auth
	Subscriptions []SubscriptionConfig
}

// BrokerConfig describes a broker connection for the connection layer.
type BrokerConfig struct {
	URL    string   `json:"url"`
	Port   int      `json:"port"`
	Auth   *Auth    `json:"auth,omitempty"`
	Topics []string `json:"topics"`
}

// Registration asks the connection layer to connect to a broker and deliver
// messages for its topics.
type Registration struct {
	ID string `json:"id"`
	BrokerConfig
}

// NormalizeURL prefixes mqtt:// unless the url already names mqtt:// or mqtts://.
func NormalizeURL(raw string) string {
	if strings.HasPrefix(raw, schemeMQTT) || strings.HasPrefix(raw, schemeMQTTS) {
		return raw
	}
	return schemeMQTT + raw
}

// NewBrokerConfig builds the connection description of a broker. Topics keep
// their configured order without duplicates.
func NewBrokerConfig(def BrokerDefinition) BrokerConfig {
	cfg := BrokerConfig{
		URL:    NormalizeURL(def.URL),
		Port:   def.Port,
		Auth:   def.Auth,
		Topics: make([]string, 0, len(def.Subscriptions)),
	}
	seen := make(map[string]struct{}, len(def.Subscriptions))
	for _, s := range def.Subscriptions {
		if _, ok := seen[s.Topic]; ok {
			continue
		}
		seen[s.Topic] = struct{}{}
		cfg.Topics = append(cfg.Topics, s.Topic)
	}
	return cfg
}

// Registrations returns one registration per broker, all carrying id.
func Registrations(id string, defs []BrokerDefinition) []Registration {
	regs := make([]Registration, 0, len(defs))
	for _, def := range defs {
		regs = append(regs, Registration{ID: id, BrokerConfig: NewBrokerConfig(def)})
	}
	return regs
}
