package ratestream

import (
	"context"
	"sync"
	"testing"
	"time"
)

func newTestClient() *Client {
	return New("key", "wss://example.test/rates", []string{"bogota|cali"}, time.Second, time.Second, nil)
}

func TestApplyRateFrame(t *testing.T) {
	c := newTestClient()

	c.apply([]byte(`{"type":"rate","data":[{"lane":"bogota|cali","perKg":4200,"ts":1757000000000}]}`))

	rate, ok := c.LatestRate("bogota|cali")
	if !ok {
		t.Fatalf("expected rate for lane")
	}
	if rate != 4200 {
		t.Fatalf("rate %v", rate)
	}
}

func TestApplyKeepsLatestRate(t *testing.T) {
	c := newTestClient()

	c.apply([]byte(`{"type":"rate","data":[{"lane":"bogota|cali","perKg":4200}]}`))
	c.apply([]byte(`{"type":"rate","data":[{"lane":"bogota|cali","perKg":3950}]}`))

	rate, _ := c.LatestRate("bogota|cali")
	if rate != 3950 {
		t.Fatalf("expected latest rate, got %v", rate)
	}
}

func TestApplyIgnoresJunk(t *testing.T) {
	c := newTestClient()

	c.apply([]byte(`not json`))
	c.apply([]byte(`{"type":"ping"}`))
	c.apply([]byte(`{"type":"rate","data":[{"lane":"","perKg":100},{"lane":"x|y","perKg":-5}]}`))

	if _, ok := c.LatestRate(""); ok {
		t.Fatalf("blank lane must be ignored")
	}
	if _, ok := c.LatestRate("x|y"); ok {
		t.Fatalf("non-positive rate must be ignored")
	}
}

func TestLatestRateUnknownLane(t *testing.T) {
	c := newTestClient()
	if _, ok := c.LatestRate("medellin|cartagena"); ok {
		t.Fatalf("unknown lane should report no rate")
	}
}

func TestConcurrentCloseAndStatus(t *testing.T) {
	c := newTestClient()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.IsConnected()
				_ = c.Close()
			}
		}()
	}
	wg.Wait()

	if c.IsConnected() {
		t.Fatalf("client should report disconnected after Close")
	}
	if err := c.Subscribe(context.Background()); err == nil {
		t.Fatalf("subscribe on a closed client must fail")
	}
}
