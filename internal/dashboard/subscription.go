package dashboard

import "time"

// DMXAddr points a subscription at three consecutive DMX channels (R, G, B).
type DMXAddr struct {
	Universe uint16 `json:"universe"`
	Channel  uint16 `json:"channel"`
}

// SubscriptionConfig is the static part of a subscription.
type SubscriptionConfig struct {
	Topic           string
	Label           string
	Suffix          string
	Icon            string
	ShowLabelAsIcon bool
	Position        int
	Colors          []ColorRule
	Conversion      []ConversionRule
	Factor          *float64
	Offset          *float64
	Decimals        int
	DMX             *DMXAddr
}

// Subscription is a configured topic together with the latest state received
// for it.
type Subscription struct {
	SubscriptionConfig
	Broker string

	matcher        TopicMatcher
	value          string
	hasValue       bool
	average        RollingAverage
	animationSpeed time.Duration
	updatedAt      time.Time
}

func newSubscription(broker string, cfg SubscriptionConfig, speed time.Duration) *Subscription {
	s := &Subscription{
		SubscriptionConfig: cfg,
		Broker:             broker,
		matcher:            NewTopicMatcher(cfg.Topic),
		animationSpeed:     speed,
	}
	s.value, s.hasValue = s.convert(Missing())
	return s
}

func (s *Subscription) convert(v Value) (string, bool) {
	return Convert(v, s.Conversion, s.Factor, s.Offset, s.Decimals)
}

// Accepts reports whether a message from url on topic belongs to s.
func (s *Subscription) Accepts(url, topic string) bool {
	return url == s.Broker && s.matcher.Match(topic)
}

// apply records payload p and returns the animation speed for the render
// that follows. Only the first value animates in.
func (s *Subscription) apply(p Value, now time.Time) time.Duration {
	var speed time.Duration
	if !s.hasValue {
		speed = s.animationSpeed
		s.animationSpeed = 0
	}

	if f, ok := p.Float(); ok {
		s.average.Add(f)
	}
	s.value, s.hasValue = s.convert(p)
	s.updatedAt = now
	return speed
}

// Value is the converted display value.
func (s *Subscription) Value() (string, bool) { return s.value, s.hasValue }

// Average is the mean of the retained numeric samples.
func (s *Subscription) Average() (float64, bool) { return s.average.Mean() }

func (s *Subscription) PastValues() []float64 { return s.average.Samples() }

func (s *Subscription) AnimationSpeed() time.Duration { return s.animationSpeed }

func (s *Subscription) UpdatedAt() time.Time { return s.updatedAt }
