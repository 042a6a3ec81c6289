package dashboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const speed = 2 * time.Second

func newTestStore(defs ...BrokerDefinition) *Store {
	s := NewStore(defs, Options{AnimationSpeed: speed, Loading: "loading", Empty: "empty"})
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func TestStoreEmptyRender(t *testing.T) {
	rows := newTestStore().Render()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Placeholder)
	assert.Equal(t, "empty", rows[0].Label)

	rows = newTestStore(BrokerDefinition{URL: "b"}).Render()
	require.Len(t, rows, 1, "a broker without subscriptions renders the placeholder")
	assert.True(t, rows[0].Placeholder)
}

func TestStoreIngestRequiresBroker(t *testing.T) {
	s := newTestStore(BrokerDefinition{URL: "one", Subscriptions: []SubscriptionConfig{{Topic: "t", Decimals: 1}}})

	_, ok := s.Ingest(Message{URL: "mqtt://two", Topic: "t", Payload: Text("1")})
	assert.False(t, ok)
	_, ok = s.Ingest(Message{URL: "one", Topic: "t", Payload: Text("1")})
	assert.False(t, ok, "message url is compared against the normalized broker url")
	_, ok = s.Ingest(Message{URL: "mqtt://one", Topic: "other", Payload: Text("1")})
	assert.False(t, ok)

	upd, ok := s.Ingest(Message{URL: "mqtt://one", Topic: "t", Payload: Text("1")})
	require.True(t, ok)
	assert.Equal(t, "mqtt://one", upd.Broker)
	assert.Equal(t, "t", upd.Topic)
}

func TestStoreFirstMatchWins(t *testing.T) {
	s := newTestStore(BrokerDefinition{URL: "b", Subscriptions: []SubscriptionConfig{
		{Topic: "sensors/*", Label: "any", Decimals: 1},
		{Topic: "sensors/1/temp", Label: "exact", Decimals: 1},
	}})

	upd, ok := s.Ingest(Message{URL: "mqtt://b", Topic: "sensors/1/temp", Payload: Text("5")})
	require.True(t, ok)
	assert.Equal(t, "sensors/*", upd.Topic)

	subs := s.Subscriptions()
	v, ok := subs[0].Value()
	assert.True(t, ok)
	assert.Equal(t, "5.0", v)
	_, ok = subs[1].Value()
	assert.False(t, ok, "only one subscription is updated per message")
}

func TestStoreRollingAverage(t *testing.T) {
	s := newTestStore(BrokerDefinition{URL: "b", Subscriptions: []SubscriptionConfig{{Topic: "t", Decimals: 1}}})
	sub := s.Subscriptions()[0]

	_, ok := sub.Average()
	assert.False(t, ok)

	for i := 1; i <= 6; i++ {
		_, ok := s.Ingest(Message{URL: "mqtt://b", Topic: "t", Payload: Text(fmt.Sprint(i))})
		require.True(t, ok)
	}

	assert.Equal(t, []float64{2, 3, 4, 5, 6}, sub.PastValues())
	avg, ok := sub.Average()
	assert.True(t, ok)
	assert.Equal(t, 4.0, avg)

	_, ok = s.Ingest(Message{URL: "mqtt://b", Topic: "t", Payload: Text("offline")})
	require.True(t, ok)
	assert.Equal(t, []float64{2, 3, 4, 5, 6}, sub.PastValues(), "non-numeric payloads stay out of the window")
	v, _ := sub.Value()
	assert.Equal(t, "offline", v)
}

func TestStoreAnimationSpeed(t *testing.T) {
	s := newTestStore(BrokerDefinition{URL: "b", Subscriptions: []SubscriptionConfig{
		{Topic: "a", Decimals: 1},
		{Topic: "b", Decimals: 1},
	}})
	msg := func(topic string) Message { return Message{URL: "mqtt://b", Topic: topic, Payload: Text("1")} }

	upd, _ := s.Ingest(msg("a"))
	assert.Equal(t, speed, upd.AnimationSpeed, "first value animates in")
	assert.Equal(t, time.Duration(0), s.Subscriptions()[0].AnimationSpeed())

	upd, _ = s.Ingest(msg("a"))
	assert.Equal(t, time.Duration(0), upd.AnimationSpeed)

	upd, _ = s.Ingest(msg("b"))
	assert.Equal(t, speed, upd.AnimationSpeed, "speed is tracked per subscription")
}

func TestStoreUnseenAfterNullValue(t *testing.T) {
	s := newTestStore(BrokerDefinition{URL: "b", Subscriptions: []SubscriptionConfig{{Topic: "a", Decimals: 1}}})

	upd, _ := s.Ingest(Message{URL: "mqtt://b", Topic: "a", Payload: Text("UNDEFINED")})
	assert.Equal(t, speed, upd.AnimationSpeed)
	_, ok := s.Subscriptions()[0].Value()
	assert.False(t, ok)

	upd, _ = s.Ingest(Message{URL: "mqtt://b", Topic: "a", Payload: Text("3")})
	assert.Equal(t, time.Duration(0), upd.AnimationSpeed, "the record speed was already spent")
}

func TestStoreRenderOrder(t *testing.T) {
	s := newTestStore(
		BrokerDefinition{URL: "one", Subscriptions: []SubscriptionConfig{
			{Topic: "c", Label: "third", Position: 2},
			{Topic: "a", Label: "first", Position: 1},
		}},
		BrokerDefinition{URL: "two", Subscriptions: []SubscriptionConfig{
			{Topic: "d", Label: "fourth", Position: 2},
			{Topic: "b", Label: "second", Position: 1},
			{Topic: "z", Label: "zero", Position: 0},
		}},
	)

	var labels []string
	for _, r := range s.Render() {
		labels = append(labels, r.Label)
	}
	assert.Equal(t, []string{"zero", "first", "second", "third", "fourth"}, labels)

	// Rendering does not change the ingestion order.
	assert.Equal(t, "c", s.Subscriptions()[0].Topic)
}

func TestStoreRenderRow(t *testing.T) {
	s := newTestStore(BrokerDefinition{URL: "b", Subscriptions: []SubscriptionConfig{
		{
			Topic:    "temp",
			Label:    "Temperature",
			Suffix:   "°C",
			Position: 1,
			Decimals: 1,
			Colors:   []ColorRule{{UpTo: 20, Value: "blue"}, {UpTo: 30, Value: "red"}},
			DMX:      &DMXAddr{Universe: 1, Channel: 4},
		},
		{Topic: "door", Label: "Door", Icon: "door-open", ShowLabelAsIcon: true, Position: 2},
		{Topic: "blank", Label: "Blank", Icon: "", ShowLabelAsIcon: true, Position: 3},
	}})

	rows := s.Render()
	require.Len(t, rows, 3)
	assert.Equal(t, "loading", rows[0].Value)
	assert.False(t, rows[0].Loaded)
	assert.Empty(t, rows[0].Suffix, "suffix is hidden while loading")
	assert.Equal(t, "blue", rows[0].Colors.Value, "a missing value compares as zero")
	assert.Nil(t, rows[0].Average)
	assert.Nil(t, rows[0].UpdatedAt)
	assert.Equal(t, &DMXAddr{Universe: 1, Channel: 4}, rows[0].DMX)

	assert.Equal(t, "door-open", rows[1].Icon)
	assert.Empty(t, rows[1].Label)
	assert.Equal(t, "Blank", rows[2].Label, "no icon falls back to the label")
	assert.Empty(t, rows[2].Icon)

	_, ok := s.Ingest(Message{URL: "mqtt://b", Topic: "temp", Payload: Text("24.44")})
	require.True(t, ok)
	_, ok = s.Ingest(Message{URL: "mqtt://b", Topic: "door", Payload: Text("  ")})
	require.True(t, ok)

	rows = s.Render()
	assert.Equal(t, "24.4", rows[0].Value)
	assert.True(t, rows[0].Loaded)
	assert.Equal(t, "°C", rows[0].Suffix)
	assert.Equal(t, "red", rows[0].Colors.Value)
	require.NotNil(t, rows[0].Average)
	assert.Equal(t, 24.44, *rows[0].Average)
	require.NotNil(t, rows[0].UpdatedAt)
	assert.Equal(t, s.now(), *rows[0].UpdatedAt)

	assert.Equal(t, "loading", rows[1].Value, "blank values still show the loading text")
	assert.False(t, rows[1].Loaded)
}

func TestStoreInitialValueFromConversion(t *testing.T) {
	s := newTestStore(BrokerDefinition{URL: "b", Subscriptions: []SubscriptionConfig{
		{Topic: "a", Conversion: []ConversionRule{{From: "UNDEFINED", To: "waiting"}}},
	}})

	v, ok := s.Subscriptions()[0].Value()
	assert.True(t, ok)
	assert.Equal(t, "waiting", v)

	upd, _ := s.Ingest(Message{URL: "mqtt://b", Topic: "a", Payload: Text("x")})
	assert.Equal(t, time.Duration(0), upd.AnimationSpeed)
}
