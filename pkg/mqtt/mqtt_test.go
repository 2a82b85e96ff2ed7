package mqtt

import (
	"os"
	"testing"

	"github.com/womat/debug"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, debug.Standard)
	os.Exit(m.Run())
}

func TestTopic(t *testing.T) {
	tests := []struct {
		prefix, sub, want string
	}{
		{"", "led", "led"},
		{"imxgpio", "led", "imxgpio/led"},
		{"/home/imxgpio/", "/key", "/home/imxgpio/key"},
	}

	for _, tt := range tests {
		if got := New(tt.prefix).Topic(tt.sub); got != tt.want {
			t.Errorf("Topic(%q) with prefix %q = %q, want %q", tt.sub, tt.prefix, got, tt.want)
		}
	}
}

func TestPublishQueuesJSON(t *testing.T) {
	m := New("imxgpio")
	m.Publish("key", map[string]int{"pin": 18}, true)

	msg := <-m.C
	if msg.Topic != "imxgpio/key" || string(msg.Payload) != `{"pin":18}` || !msg.Retained {
		t.Fatalf("message = %+v", msg)
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	m := New("")
	for i := 0; i < cap(m.C)+5; i++ {
		m.Publish("x", i, false)
	}
	if len(m.C) != cap(m.C) {
		t.Fatalf("queue holds %d messages", len(m.C))
	}
}

func TestServiceWithoutBroker(t *testing.T) {
	m := New("")
	if err := m.Connect("", "test"); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		m.Service()
		close(done)
	}()

	m.Publish("x", 1, false)
	m.Close()
	<-done

	if err := m.Disconnect(); err != nil {
		t.Fatal(err)
	}
}
