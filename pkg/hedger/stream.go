package hedger

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"perpdesk/pkg/types"
)

const HS_TIMEOUT_S = 5   // handshake timeout in seconds
const HB_INTERVAL_S = 55 // heartbeat interval in seconds
const RECONNECT_WAIT_S = 3

// PriceStream consumes the hedger's mark-price/funding websocket feed and
// delivers one PriceUpdateEvent per tick. Updates are unordered and
// last-write-wins on the consumer side; the stream only decodes and
// forwards.
type PriceStream struct {
	wsUrl   string
	dialer  websocket.Dialer
	conn    *websocket.Conn
	symbols []string

	doneC          chan struct{}
	stopC          chan struct{}
	closedC        chan struct{} // closed by Close; releases the heartbeat
	isDisconnected bool          // temporary; the stream will auto-reconnect
	isClosed       bool          // permanent; the stream will not reconnect

	mu      sync.Mutex
	writeMu sync.Mutex
	logger  *log.Entry
}

func NewPriceStream(wsUrl string, symbols []string) *PriceStream {
	return &PriceStream{
		wsUrl:   wsUrl,
		symbols: symbols,
		closedC: make(chan struct{}),
		dialer: websocket.Dialer{
			HandshakeTimeout:  time.Duration(HS_TIMEOUT_S) * time.Second,
			EnableCompression: true,
		},
		logger: log.WithFields(log.Fields{"component": "priceStream", "url": wsUrl}),
	}
}

// ConnectAndSubscribe dials, subscribes every symbol's mark-price channel
// and starts the read loop. onEvent runs on the read goroutine.
func (sm *PriceStream) ConnectAndSubscribe(onEvent func(e types.PriceUpdateEvent)) (doneC chan struct{}, stopC chan struct{}, err error) {
	if err := sm.connect(); err != nil {
		return nil, nil, err
	}
	sm.doneC = make(chan struct{})
	sm.stopC = make(chan struct{})

	go sm.run(onEvent)
	return sm.doneC, sm.stopC, nil
}

func (sm *PriceStream) connect() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	c, _, err := sm.dialer.Dial(sm.wsUrl, nil)
	if err != nil {
		sm.logger.Errorf("fail to connect stream: %v", err)
		return err
	}
	sm.conn = c
	sm.isDisconnected = false
	return nil
}

// connRef snapshots the current connection; reconnects swap it under mu.
func (sm *PriceStream) connRef() *websocket.Conn {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.conn
}

func (sm *PriceStream) sendSubMsg() error {
	conn := sm.connRef()
	sm.writeMu.Lock()
	defer sm.writeMu.Unlock()

	params := make([]string, 0, len(sm.symbols))
	for _, s := range sm.symbols {
		params = append(params, fmt.Sprintf("%s@markPrice", strings.ToLower(s)))
	}
	subMsg := map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": params,
		"id":     time.Now().UnixNano(),
	}
	return conn.WriteJSON(subMsg)
}

func (sm *PriceStream) run(onEvent func(e types.PriceUpdateEvent)) {
	defer close(sm.doneC)

	if err := sm.sendSubMsg(); err != nil {
		sm.logger.Errorf("fail to subscribe: %v", err)
	}
	go sm.heartbeat()

	for {
		select {
		case <-sm.stopC:
			sm.Close()
			return
		default:
		}
		if sm.IsClosed() {
			return
		}

		_, msg, err := sm.connRef().ReadMessage()
		if err != nil {
			if sm.IsClosed() {
				return
			}
			sm.logger.Warnf("stream read error, reconnecting: %v", err)
			sm.handleReconnect()
			continue
		}

		evt, ok, err := parsePriceUpdate(msg)
		if err != nil {
			// malformed tick: log and keep the previous snapshot
			sm.logger.Debugf("fail to parse price update: %v", err)
			continue
		}
		if ok {
			onEvent(evt)
		}
	}
}

func (sm *PriceStream) heartbeat() {
	ticker := time.NewTicker(time.Duration(HB_INTERVAL_S) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-sm.stopC:
			return
		case <-sm.closedC:
			return
		case <-ticker.C:
			conn := sm.connRef()
			sm.writeMu.Lock()
			err := conn.WriteMessage(websocket.PingMessage, nil)
			sm.writeMu.Unlock()
			if err != nil && !sm.IsClosed() {
				sm.logger.Warnf("fail to ping: %v", err)
			}
		}
	}
}

func (sm *PriceStream) handleReconnect() {
	sm.mu.Lock()
	sm.isDisconnected = true
	if sm.conn != nil {
		_ = sm.conn.Close()
	}
	sm.mu.Unlock()

	for !sm.IsClosed() {
		time.Sleep(time.Duration(RECONNECT_WAIT_S) * time.Second)
		if err := sm.connect(); err != nil {
			continue
		}
		if err := sm.sendSubMsg(); err != nil {
			sm.logger.Errorf("fail to resubscribe: %v", err)
			continue
		}
		sm.logger.Info("stream reconnected")
		return
	}
}

func (sm *PriceStream) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.isClosed {
		return
	}
	sm.isClosed = true
	close(sm.closedC)
	if sm.conn != nil {
		_ = sm.conn.Close()
	}
}

func (sm *PriceStream) IsClosed() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.isClosed
}

// parsePriceUpdate decodes one frame; ok is false for non-price frames
// (subscription acks and the like), which are not errors.
func parsePriceUpdate(msg []byte) (types.PriceUpdateEvent, bool, error) {
	receivedTime := time.Now()
	var frame wsCombinedFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		return types.PriceUpdateEvent{}, false, err
	}
	if frame.Data.Symbol == "" {
		return types.PriceUpdateEvent{}, false, nil
	}
	return types.PriceUpdateEvent{
		Name:         frame.Data.Symbol,
		MarkPrice:    frame.Data.MarkPrice,
		IndexPrice:   frame.Data.IndexPrice,
		FundingRate:  frame.Data.FundingRate,
		NextFunding:  time.UnixMilli(frame.Data.NextFundingTime),
		ReceivedTime: receivedTime,
	}, true, nil
}
