package artnet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Haba1234/go-artnet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mqttdash/internal/dashboard"
	"mqttdash/internal/logger"
)

type sent struct {
	dmx  [512]byte
	addr artnet.Address
}

type fakeSender struct {
	mu       sync.Mutex
	startErr error
	stopped  bool
	sent     []sent
}

func (f *fakeSender) Start() error { return f.startErr }

func (f *fakeSender) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeSender) SendDMXToAddress(dmx [512]byte, address artnet.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{dmx: dmx, addr: address})
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestPresentWritesRGB(t *testing.T) {
	c := newArtNet(logger.Discard(), &fakeSender{})

	c.Present([]dashboard.Row{
		{Topic: "temp", DMX: &dashboard.DMXAddr{Universe: 2, Channel: 10}, Colors: dashboard.Colors{Value: "#ff8000"}},
		{Topic: "short", DMX: &dashboard.DMXAddr{Universe: 2, Channel: 0}, Colors: dashboard.Colors{Value: "#0f0"}},
		{Topic: "named", DMX: &dashboard.DMXAddr{Universe: 2, Channel: 20}, Colors: dashboard.Colors{Value: "red"}},
		{Topic: "nodmx", Colors: dashboard.Colors{Value: "#ffffff"}},
		{Topic: "nocolor", DMX: &dashboard.DMXAddr{Universe: 3, Channel: 0}},
	}, 0)

	require.Len(t, c.sendTrigger, 1)
	state := <-c.sendTrigger
	require.Contains(t, state, uint16(2))
	assert.NotContains(t, state, uint16(3))

	u := state[2]
	assert.Equal(t, []byte{0xff, 0x80, 0x00}, u[10:13])
	assert.Equal(t, []byte{0x00, 0xff, 0x00}, u[0:3])
	assert.Equal(t, []byte{0, 0, 0}, u[20:23], "named colors are skipped")
}

func TestPresentWithoutTargetsDoesNotSend(t *testing.T) {
	c := newArtNet(logger.Discard(), &fakeSender{})
	c.Present([]dashboard.Row{{Placeholder: true, Label: "empty"}}, time.Second)
	assert.Empty(t, c.sendTrigger)
}

func TestTriggerSendNeverBlocks(t *testing.T) {
	c := newArtNet(logger.Discard(), &fakeSender{})
	for i := 0; i < triggerBuffer+5; i++ {
		c.SetDMXChannelValue(ChannelValue{Universe: 0, Channel: 1, Value: uint8(i)})
	}
	assert.Len(t, c.sendTrigger, triggerBuffer)
}

func TestStartSendsInBackground(t *testing.T) {
	s := &fakeSender{}
	c := newArtNet(logger.Discard(), s)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, c.Start(ctx))
	c.SetDMXChannelValues([]ChannelValue{{Universe: 0x0102, Channel: 0, Value: 9}})

	assert.Eventually(t, func() bool { return s.count() == 1 }, time.Second, 5*time.Millisecond)
	s.mu.Lock()
	assert.Equal(t, artnet.Address{Net: 0x01, SubUni: 0x02}, s.sent[0].addr)
	assert.Equal(t, byte(9), s.sent[0].dmx[0])
	s.mu.Unlock()

	c.Stop()
	assert.True(t, s.stopped)
}

func TestStartError(t *testing.T) {
	c := newArtNet(logger.Discard(), &fakeSender{startErr: errors.New("no socket")})
	assert.Error(t, c.Start(context.Background()))
}

func TestState(t *testing.T) {
	s := NewState()
	s.SetChannel(1, 511, 7)
	s.SetChannel(1, 512, 8)

	got := s.Get()
	assert.Equal(t, byte(7), got[1][511])

	// Get hands out copies.
	u := got[1]
	u[0] = 99
	got[1] = u
	assert.Equal(t, byte(0), s.Get()[1][0])
}

func TestFindArtNetIP(t *testing.T) {
	_, err := FindArtNetIP("not-a-cidr")
	assert.Error(t, err)

	ip, err := FindArtNetIP("127.0.0.0/8")
	require.NoError(t, err)
	if ip != nil {
		assert.True(t, ip.IsLoopback())
	}
}
