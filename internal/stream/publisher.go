package stream

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-chenillard/internal/config"
	"github.com/coreman2200/funtimes-chenillard/internal/sequence"
)

const ackTimeout = 5 * time.Second

// Publisher sends every rendered frame as a single byte to an MQTT topic.
// It does not wait for the broker; delivery errors are logged.
type Publisher struct {
	client  mqtt.Client
	topic   string
	log     zerolog.Logger
	sent    atomic.Uint64
	dropped atomic.Uint64
}

func NewPublisher(client mqtt.Client, topic string, l zerolog.Logger) *Publisher {
	return &Publisher{client: client, topic: topic, log: l}
}

// Dial connects to the broker described by c.
func Dial(c config.MQTT) (mqtt.Client, error) {
	if c.URL == "" {
		return nil, errors.New("mqtt url not set")
	}
	options := mqtt.NewClientOptions().
		AddBroker(c.URL).
		SetClientID(c.ClientID).
		SetUsername(c.Username).
		SetPassword(c.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true)
	client := mqtt.NewClient(options)
	token := client.Connect()
	if !token.WaitTimeout(ackTimeout) {
		return nil, fmt.Errorf("mqtt connect %s: timed out", c.URL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", c.URL, err)
	}
	return client, nil
}

func (p *Publisher) Render(f sequence.Frame) error {
	if !p.client.IsConnected() {
		p.dropped.Add(1)
		return nil
	}
	t := p.client.Publish(p.topic, 0, false, []byte{byte(f)})
	p.sent.Add(1)
	go p.watch(t, f)
	return nil
}

func (p *Publisher) watch(t mqtt.Token, f sequence.Frame) {
	if !t.WaitTimeout(ackTimeout) {
		p.log.Warn().Str("topic", p.topic).Str("frame", f.String()).Msg("mqtt publish timed out")
		return
	}
	if err := t.Error(); err != nil {
		p.log.Warn().Err(err).Str("topic", p.topic).Msg("mqtt publish failed")
	}
}

// Sent returns how many frames were handed to the client.
func (p *Publisher) Sent() uint64 { return p.sent.Load() }

// Dropped returns how many frames were skipped while disconnected.
func (p *Publisher) Dropped() uint64 { return p.dropped.Load() }

// Close disconnects from the broker.
func (p *Publisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
