package hedger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"perpdesk/pkg/types"
)

func TestParsePriceUpdate(t *testing.T) {
	frame := `{
		"stream": "btcusdt@markPrice",
		"data": {"s": "BTCUSDT", "p": "27123.45", "i": "27120.00", "r": "0.0001", "T": 1700003600000}
	}`
	evt, ok, err := parsePriceUpdate([]byte(frame))
	if err != nil {
		t.Fatalf("parsePriceUpdate: %v", err)
	}
	if !ok {
		t.Fatal("price frame must report ok")
	}
	if evt.Name != "BTCUSDT" || evt.MarkPrice != "27123.45" || evt.FundingRate != "0.0001" {
		t.Errorf("event: %+v", evt)
	}
	if evt.NextFunding != time.UnixMilli(1700003600000) {
		t.Errorf("next funding: %v", evt.NextFunding)
	}
}

func TestParsePriceUpdateNonPriceFrame(t *testing.T) {
	// subscription ack carries no symbol
	_, ok, err := parsePriceUpdate([]byte(`{"result": null, "id": 1}`))
	if err != nil {
		t.Fatalf("ack must not be an error: %v", err)
	}
	if ok {
		t.Error("ack must not produce an event")
	}

	if _, _, err := parsePriceUpdate([]byte(`not json`)); err == nil {
		t.Error("garbage must report a parse error")
	}
}

func TestPriceStreamSubscribeAndConsume(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer c.Close()

		// first message is the subscription
		var sub struct {
			Method string   `json:"method"`
			Params []string `json:"params"`
		}
		if err := c.ReadJSON(&sub); err != nil {
			t.Errorf("read subscribe: %v", err)
			return
		}
		if sub.Method != "SUBSCRIBE" || len(sub.Params) != 1 || sub.Params[0] != "btcusdt@markPrice" {
			t.Errorf("subscribe message: %+v", sub)
		}

		frame := map[string]any{
			"stream": "btcusdt@markPrice",
			"data": map[string]any{
				"s": "BTCUSDT", "p": "27000.1", "i": "27000.0", "r": "0.0001", "T": 1700003600000,
			},
		}
		payload, _ := json.Marshal(frame)
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			t.Errorf("write frame: %v", err)
			return
		}
		// hold the connection open until the client closes it
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsUrl := "ws" + strings.TrimPrefix(srv.URL, "http")
	stream := NewPriceStream(wsUrl, []string{"BTCUSDT"})

	events := make(chan types.PriceUpdateEvent, 1)
	doneC, _, err := stream.ConnectAndSubscribe(func(e types.PriceUpdateEvent) {
		select {
		case events <- e:
		default:
		}
	})
	if err != nil {
		t.Fatalf("ConnectAndSubscribe: %v", err)
	}

	select {
	case e := <-events:
		if e.Name != "BTCUSDT" || e.MarkPrice != "27000.1" {
			t.Errorf("event: %+v", e)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event within 5s")
	}

	stream.Close()
	select {
	case <-doneC:
	case <-time.After(5 * time.Second):
		t.Fatal("read loop did not drain after Close")
	}
	if !stream.IsClosed() {
		t.Error("stream must report closed")
	}
}

func TestPriceStreamDirectClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsUrl := "ws" + strings.TrimPrefix(srv.URL, "http")
	stream := NewPriceStream(wsUrl, []string{"BTCUSDT"})
	doneC, _, err := stream.ConnectAndSubscribe(func(types.PriceUpdateEvent) {})
	if err != nil {
		t.Fatalf("ConnectAndSubscribe: %v", err)
	}

	stream.Close()
	stream.Close() // idempotent

	select {
	case <-doneC:
	case <-time.After(5 * time.Second):
		t.Fatal("read loop must exit after a direct Close")
	}
}
