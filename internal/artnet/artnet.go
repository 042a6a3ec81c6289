package artnet

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Haba1234/go-artnet"
	"github.com/lucasb-eyer/go-colorful"

	"mqttdash/internal/config"
	"mqttdash/internal/dashboard"
	"mqttdash/internal/logger"
)

const (
	maxFPS        = 1
	triggerBuffer = 100
	nodesInterval = 30 * time.Second
)

// sender is the part of the go-artnet controller used here.
type sender interface {
	Start() error
	Stop()
	SendDMXToAddress(dmx [512]byte, address artnet.Address)
}

// ArtNet shows subscription colors on DMX fixtures (DMX over UDP/IP).
type ArtNet struct {
	logger      logger.Logger
	sender      sender
	nodes       func() []*artnet.ControlledNode
	state       *State
	sendTrigger chan UniverseStateMap
}

// NewController returns an art-net presenter bound to the interface inside cfg.Network.
func NewController(log logger.Logger, cfg config.ArtNetConf) (*ArtNet, error) {
	ip, err := FindArtNetIP(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("failed to find the art-net IP: %w", err)
	}

	if len(ip) == 0 {
		return nil, errors.New("failed to find the art-net IP: No interface found")
	}

	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve hostname: %w", err)
	}

	host = strings.ToLower(strings.Split(host, ".")[0])
	log.With(logger.Fields{"module": "art-net"}).Infof("Using ArtNet IP %s and hostname %s", ip.String(), host)

	ctrl := artnet.NewController(host, ip, artnet.NewDefaultLogger("info"), artnet.MaxFPS(maxFPS))
	c := newArtNet(log, ctrl)
	c.nodes = func() []*artnet.ControlledNode { return ctrl.Nodes }
	return c, nil
}

func newArtNet(log logger.Logger, s sender) *ArtNet {
	return &ArtNet{
		logger:      log,
		sender:      s,
		state:       NewState(),
		sendTrigger: make(chan UniverseStateMap, triggerBuffer),
	}
}

// Start the ArtNet.
func (c *ArtNet) Start(ctx context.Context) error {
	if err := c.sender.Start(); err != nil {
		return fmt.Errorf("failed to start Controller: %w", err)
	}

	go c.sendBackground(ctx)
	if c.nodes != nil {
		go c.debugDevices(ctx)
	}
	return nil
}

// Stop the ArtNet.
func (c *ArtNet) Stop() {
	c.sender.Stop()
}

// Present writes the value color of every row with a DMX address as R, G, B
// into three consecutive channels.
func (c *ArtNet) Present(rows []dashboard.Row, _ time.Duration) {
	var values []ChannelValue
	for _, r := range rows {
		if r.DMX == nil || r.Colors.Value == "" {
			continue
		}
		col, err := colorful.Hex(r.Colors.Value)
		if err != nil {
			c.logger.With(logger.Fields{"module": "art-net"}).Debugf("color %q of %s is not hex: %v", r.Colors.Value, r.Topic, err)
			continue
		}
		red, green, blue := col.RGB255()
		values = append(values,
			ChannelValue{r.DMX.Universe, r.DMX.Channel, red},
			ChannelValue{r.DMX.Universe, r.DMX.Channel + 1, green},
			ChannelValue{r.DMX.Universe, r.DMX.Channel + 2, blue},
		)
	}
	if len(values) == 0 {
		return
	}
	c.SetDMXChannelValues(values)
}

func (c *ArtNet) SetDMXChannelValue(value ChannelValue) {
	c.state.SetChannel(value.Universe, value.Channel, value.Value)
	c.triggerSend()
}

func (c *ArtNet) SetDMXChannelValues(values []ChannelValue) {
	c.state.SetChannelValues(values)
	c.triggerSend()
}

// triggerSend never blocks; a skipped trigger is covered by the next one
// since every send carries the whole state.
func (c *ArtNet) triggerSend() {
	select {
	case c.sendTrigger <- c.state.Get():
	default:
		c.logger.With(logger.Fields{"module": "art-net"}).Debug("DMX. send queue full, skipping")
	}
}

func (c *ArtNet) sendBackground(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-c.sendTrigger:
			c.send(data)
		}
	}
}

func (c *ArtNet) send(data UniverseStateMap) {
	for u, dmx := range data {
		c.logger.With(logger.Fields{"module": "art-net"}).Debugf("DMX. Отправка в контроллер по адресу %v", u)
		c.sender.SendDMXToAddress(dmx, universeToAddress(u))
	}
}

// universeToAddress converts a dmx universe to art-net address
// universe: старший байт - Net, младший байт - SubUni.
func universeToAddress(universe uint16) artnet.Address {
	v := make([]uint8, 2)
	binary.BigEndian.PutUint16(v, universe)

	return artnet.Address{
		Net:    v[0],
		SubUni: v[1],
	}
}

// NodeToString returns a string representation of the given Node.
func NodeToString(n *artnet.ControlledNode) string {
	var inputs, outputs []string
	for _, p := range n.Node.InputPorts {
		inputs = append(inputs, fmt.Sprintf("%s: %s", p.Address.String(), p.Type.String()))
	}
	for _, p := range n.Node.OutputPorts {
		outputs = append(outputs, fmt.Sprintf("%s: %s", p.Address.String(), p.Type.String()))
	}

	return fmt.Sprintf(
		"IP=%s name=%q type=%q manufacturer=%q desc=%q inputs=%q outputs=%q",
		n.UDPAddress.String(), n.Node.Name, n.Node.Type,
		n.Node.Manufacturer, n.Node.Description,
		strings.Join(inputs, "; "), strings.Join(outputs, "; "),
	)
}

func (c *ArtNet) debugDevices(ctx context.Context) {
	t := time.NewTicker(nodesInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			nodes := c.nodes()
			desc := make([]string, 0, len(nodes))
			for _, n := range nodes {
				desc = append(desc, NodeToString(n))
			}
			c.logger.With(logger.Fields{"module": "art-net"}).Debugf("Currently %d devices are registered: %v", len(nodes), desc)
		}
	}
}
