// Package remote pushes packed animation definitions to running viewers over
// MQTT and applies the ones it receives.
//
// Topics are <base>/anim/<key> for animations and <base>/sheet/<key> for
// sprite sheets; payloads are the binary encodings from pkg/animation.
// The MQTT client invokes handlers on its own goroutine, so a Subscriber only
// queues decoded definitions; the game loop applies them with Drain.
package remote

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/decker502/spriteanim/pkg/animation"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	animTopic  = "anim"
	sheetTopic = "sheet"

	// QoS 1: definitions must arrive, duplicates are harmless (replace by key).
	defaultQoS = 1

	defaultTimeout = 5 * time.Second
)

// Config holds the broker connection settings.
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string // base topic, without trailing slash
}

// Client is the part of mqtt.Client the feed uses.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
}

// NewClient builds an MQTT client for cfg. onConnect may be nil; it runs on
// every (re)connect, which is where subscriptions belong.
func NewClient(cfg Config, onConnect mqtt.OnConnectHandler) mqtt.Client {
	options := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true)
	if onConnect != nil {
		options = options.SetOnConnectHandler(onConnect)
	}
	return mqtt.NewClient(options)
}

// Connect connects client, waiting at most timeout.
func Connect(client mqtt.Client, timeout time.Duration) error {
	return wait(client.Connect(), timeout, "connect")
}

func wait(token mqtt.Token, timeout time.Duration, what string) error {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt %s: timed out after %v", what, timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt %s: %w", what, err)
	}
	return nil
}

// Publisher sends definitions to a base topic.
type Publisher struct {
	client  Client
	base    string
	Timeout time.Duration
}

// NewPublisher creates a publisher for the base topic.
func NewPublisher(client Client, base string) *Publisher {
	return &Publisher{client: client, base: strings.TrimSuffix(base, "/"), Timeout: defaultTimeout}
}

// AnimationTopic returns the topic an animation key is published on.
func (p *Publisher) AnimationTopic(key string) string {
	return p.base + "/" + animTopic + "/" + key
}

// SpriteSheetTopic returns the topic a sprite sheet key is published on.
func (p *Publisher) SpriteSheetTopic(key string) string {
	return p.base + "/" + sheetTopic + "/" + key
}

// Publish sends an animation definition and waits for the broker to accept it.
func (p *Publisher) Publish(a *animation.Animation) error {
	data, err := animation.MarshalAnimation(a)
	if err != nil {
		return err
	}
	return wait(p.client.Publish(p.AnimationTopic(a.Key), defaultQoS, false, data), p.Timeout, "publish "+a.Key)
}

// PublishSpriteSheet sends a sprite sheet definition.
func (p *Publisher) PublishSpriteSheet(s *animation.SpriteSheet) error {
	data, err := animation.MarshalSpriteSheet(s)
	if err != nil {
		return err
	}
	return wait(p.client.Publish(p.SpriteSheetTopic(s.Key), defaultQoS, false, data), p.Timeout, "publish "+s.Key)
}

// Update is one received definition. Exactly one field is set.
type Update struct {
	Animation   *animation.Animation
	SpriteSheet *animation.SpriteSheet
}

// Subscriber decodes incoming definitions and queues them for the game loop.
type Subscriber struct {
	base string

	mu      sync.Mutex
	pending []Update
	dropped int
}

// NewSubscriber creates a subscriber for the base topic.
func NewSubscriber(base string) *Subscriber {
	return &Subscriber{base: strings.TrimSuffix(base, "/")}
}

// Subscribe registers the handler for every definition under the base topic.
func (s *Subscriber) Subscribe(client Client) error {
	return wait(client.Subscribe(s.base+"/#", defaultQoS, s.HandleMessage), defaultTimeout, "subscribe "+s.base)
}

// HandleMessage is the mqtt.MessageHandler. It runs on the MQTT client's
// goroutine. Malformed payloads are logged and dropped.
func (s *Subscriber) HandleMessage(_ mqtt.Client, msg mqtt.Message) {
	update, err := s.decode(msg.Topic(), msg.Payload())
	if err != nil {
		log.Printf("[AnimationFeed] Dropping message on %s: %v", msg.Topic(), err)
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.pending = append(s.pending, update)
	s.mu.Unlock()
}

func (s *Subscriber) decode(topic string, payload []byte) (Update, error) {
	rest, ok := strings.CutPrefix(topic, s.base+"/")
	if !ok {
		return Update{}, fmt.Errorf("topic outside %s", s.base)
	}
	kind, key, ok := strings.Cut(rest, "/")
	if !ok || key == "" {
		return Update{}, errors.New("topic has no key")
	}

	switch kind {
	case animTopic:
		a, err := animation.UnmarshalAnimation(payload)
		if err != nil {
			return Update{}, err
		}
		if a.Key != key {
			return Update{}, fmt.Errorf("payload key %q does not match topic key %q", a.Key, key)
		}
		return Update{Animation: a}, nil

	case sheetTopic:
		sheet, err := animation.UnmarshalSpriteSheet(payload)
		if err != nil {
			return Update{}, err
		}
		if sheet.Key != key {
			return Update{}, fmt.Errorf("payload key %q does not match topic key %q", sheet.Key, key)
		}
		return Update{SpriteSheet: sheet}, nil
	}
	return Update{}, fmt.Errorf("unknown definition kind %q", kind)
}

// Drain hands every queued update to fn, in arrival order, and returns how
// many there were. Call it from the game update goroutine.
func (s *Subscriber) Drain(fn func(Update)) int {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, u := range pending {
		fn(u)
	}
	return len(pending)
}

// Dropped returns the number of malformed messages seen so far.
func (s *Subscriber) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
