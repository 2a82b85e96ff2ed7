// Package mqtt publishes messages to a mqtt broker.
package mqtt

import (
	"encoding/json"
	"strings"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/womat/debug"
)

// quiesce is the specified number of milliseconds to wait for existing work to be completed.
const (
	quiesce = 250
)

// Handler contains the handler of the mqtt broker.
type Handler struct {
	handler mqttlib.Client
	// prefix is prepended to the topic of every message.
	prefix string
	// C is the channel to service the mqtt message
	// sending a message to channel C will send the message.
	C chan Message
}

// Message contains the properties of the mqtt message.
type Message struct {
	Topic    string
	Payload  []byte
	Qos      byte
	Retained bool
}

// New generate a new mqtt broker client publishing below the topic prefix.
func New(prefix string) *Handler {
	return &Handler{
		prefix: strings.TrimSuffix(prefix, "/"),
		C:      make(chan Message, 16),
	}
}

// Connect connects to the mqtt broker.
// If no broker is defined, no mqtt message are send.
func (m *Handler) Connect(broker, clientID string) error {
	if broker == "" {
		return nil
	}

	opts := mqttlib.NewClientOptions().AddBroker(broker).SetClientID(clientID).SetAutoReconnect(true)
	m.handler = mqttlib.NewClient(opts)
	return m.ReConnect()
}

// ReConnect reconnects to the defined mqtt broker.
func (m *Handler) ReConnect() error {
	t := m.handler.Connect()
	<-t.Done()
	return t.Error()
}

// Disconnect will end the connection to the broker.
func (m *Handler) Disconnect() error {
	if m.handler == nil {
		return nil
	}

	m.handler.Disconnect(quiesce)
	return nil
}

// Topic returns the full topic of a sub topic.
func (m *Handler) Topic(sub string) string {
	if m.prefix == "" {
		return sub
	}
	return m.prefix + "/" + strings.TrimPrefix(sub, "/")
}

// Publish marshals v to json and queues it for sending to the sub topic.
// It doesn't block if the queue is full, the message is dropped instead.
func (m *Handler) Publish(sub string, v interface{}, retained bool) {
	b, err := json.Marshal(v)
	if err != nil {
		debug.ErrorLog.Printf("mqtt marshal: %v", err)
		return
	}

	msg := Message{Topic: m.Topic(sub), Payload: b, Retained: retained}
	select {
	case m.C <- msg:
	default:
		debug.ErrorLog.Printf("mqtt queue full, dropping message to %v", msg.Topic)
	}
}

// Close stops Service.
func (m *Handler) Close() {
	close(m.C)
}

// Service listen to a message on the channel C and send the message to mqtt.
// If no handler or topic is defined, the message will be ignored.
func (m *Handler) Service() {
	for d := range m.C {
		if m.handler == nil || d.Topic == "" {
			continue
		}

		if !m.handler.IsConnected() {
			debug.DebugLog.Printf("mqtt broker isn't connected, reconnect it")

			if err := m.ReConnect(); err != nil {
				debug.ErrorLog.Printf("can't reconnect to mqtt broker %v", err)
				continue
			}
		}

		debug.DebugLog.Printf("publishing %v bytes to topic %v", len(d.Payload), d.Topic)
		t := m.handler.Publish(d.Topic, d.Qos, d.Retained, d.Payload)

		// the asynchronous nature of this library makes it easy to forget to check for errors.
		go func(topic string) {
			<-t.Done()
			if err := t.Error(); err != nil {
				debug.ErrorLog.Printf("publishing topic %v: %v", topic, err)
			}
		}(d.Topic)
	}
}
