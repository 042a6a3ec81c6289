package dashboard

import (
	"regexp"
	"strings"
)

const wildcard = "*"

// TopicMatcher matches incoming topics against a subscription topic.
//
// A "*" matches any sequence of characters, path separators included, so
// "a/*/c" also accepts "a/b/x/c". MQTT's single-level "+" and multi-level "#"
// are not distinguished.
type TopicMatcher struct {
	pattern string
	re      *regexp.Regexp // nil for literal topics
}

func NewTopicMatcher(pattern string) TopicMatcher {
	m := TopicMatcher{pattern: pattern}
	if !strings.Contains(pattern, wildcard) {
		return m
	}
	parts := strings.Split(pattern, wildcard)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	m.re = regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
	return m
}

func (m TopicMatcher) Pattern() string { return m.pattern }

func (m TopicMatcher) Wildcard() bool { return m.re != nil }

func (m TopicMatcher) Match(topic string) bool {
	if m.re == nil {
		return m.pattern == topic
	}
	return m.re.MatchString(topic)
}

// MatchTopic is a one-off form of TopicMatcher.Match.
func MatchTopic(pattern, topic string) bool {
	return NewTopicMatcher(pattern).Match(topic)
}
