package dashboard

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Message is a payload received from a broker.
type Message struct {
	URL     string
	Topic   string
	Payload Value
}

// Update describes the effect of an ingested message.
type Update struct {
	Broker         string
	Topic          string // subscription topic, not the message topic
	AnimationSpeed time.Duration
}

// Options tune a Store.
type Options struct {
	AnimationSpeed time.Duration // how fast a first value fades in
	Loading        string        // value text before the first message
	Empty          string        // placeholder text without subscriptions
}

// Store owns every subscription in configuration order. Ingest and Render
// are serialized by a single lock.
type Store struct {
	mu   sync.Mutex
	subs []*Subscription
	opts Options
	now  func() time.Time
}

func NewStore(defs []BrokerDefinition, opts Options) *Store {
	s := &Store{opts: opts, now: time.Now}
	for _, def := range defs {
		url := NormalizeURL(def.URL)
		for _, cfg := range def.Subscriptions {
			s.subs = append(s.subs, newSubscription(url, cfg, opts.AnimationSpeed))
		}
	}
	return s
}

func (s *Store) Len() int {
	return len(s.subs)
}

func (s *Store) AnimationSpeed() time.Duration {
	return s.opts.AnimationSpeed
}

// Ingest hands msg to the first subscription that accepts it. Messages no
// subscription accepts are dropped and reported with false.
func (s *Store) Ingest(msg Message) (Update, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subs {
		if !sub.Accepts(msg.URL, msg.Topic) {
			continue
		}
		speed := sub.apply(msg.Payload, s.now())
		return Update{Broker: sub.Broker, Topic: sub.Topic, AnimationSpeed: speed}, true
	}
	return Update{}, false
}

// Subscriptions returns the records in configuration order.
func (s *Store) Subscriptions() []*Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Subscription, len(s.subs))
	copy(out, s.subs)
	return out
}

// Row is one rendered line of the dashboard.
type Row struct {
	Placeholder bool       `json:"placeholder,omitempty"`
	Broker      string     `json:"broker,omitempty"`
	Topic       string     `json:"topic,omitempty"`
	Label       string     `json:"label"`
	Icon        string     `json:"icon,omitempty"` // set when the icon replaces the label
	Value       string     `json:"value"`
	Loaded      bool       `json:"loaded"`
	Suffix      string     `json:"suffix,omitempty"` // empty until a value is shown
	Colors      Colors     `json:"colors"`
	Average     *float64   `json:"average,omitempty"`
	Position    int        `json:"position"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	DMX         *DMXAddr   `json:"dmx,omitempty"`
}

// Render returns the rows sorted by position. Equal positions keep their
// configuration order. An empty store renders a single placeholder row.
func (s *Store) Render() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.subs) == 0 {
		return []Row{{Placeholder: true, Label: s.opts.Empty}}
	}

	rows := make([]Row, 0, len(s.subs))
	for _, sub := range s.subs {
		rows = append(rows, s.row(sub))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position < rows[j].Position
	})
	return rows
}

func (s *Store) row(sub *Subscription) Row {
	r := Row{
		Broker:   sub.Broker,
		Topic:    sub.Topic,
		Label:    sub.Label,
		Position: sub.Position,
		DMX:      sub.DMX,
	}
	if sub.ShowLabelAsIcon && sub.Icon != "" {
		r.Icon = sub.Icon
		r.Label = ""
	}

	v := Missing()
	if sub.hasValue {
		v = Text(sub.value)
	}
	r.Colors = ResolveColors(v, sub.Colors)

	if sub.hasValue && strings.TrimSpace(sub.value) != "" {
		r.Value = sub.value
		r.Loaded = true
		r.Suffix = sub.Suffix
	} else {
		r.Value = s.opts.Loading
	}

	if avg, ok := sub.average.Mean(); ok {
		r.Average = &avg
	}
	if !sub.updatedAt.IsZero() {
		t := sub.updatedAt
		r.UpdatedAt = &t
	}
	return r
}
