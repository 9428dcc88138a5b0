package deepgram

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/voxloop/voxloop-core/core/audio"
)

// speakStream is one utterance worth of websocket traffic. The first audio
// chunk flips speaking on; the flush confirmation plus a sink drain flips it
// off again. The done once guards against cancel racing normal completion.
type speakStream struct {
	client *Client
	conn   *websocket.Conn
	connMu sync.Mutex

	speaking  atomic.Bool
	cancelled atomic.Bool
	done      sync.Once
}

func connectWebsocket(voice Voice, encodingInfo audio.EncodingInfo) (*websocket.Conn, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	urlValues := url.Values{}
	urlValues.Set("encoding", encodingInfo.Encoding)
	urlValues.Set("sample_rate", strconv.Itoa(encodingInfo.SampleRate))
	urlValues.Set("model", string(voice))
	urlValues.Set("container", "none")

	conn, _, err := websocket.DefaultDialer.Dial(
		(&url.URL{
			Scheme: "wss",
			Host:   "api.deepgram.com", Path: "/v1/speak",
			RawQuery: urlValues.Encode(),
		}).String(),
		http.Header{"Authorization": {"token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

func (s *speakStream) readAndProcessMessages() {
	for {
		msgType, msg, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && !s.cancelled.Load() {
				log.Printf("Websocket read error: %v", err)
				s.client.emitError(fmt.Errorf("websocket read failed: %w", err))
			}
			s.end()
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if len(msg) == 0 {
				continue
			}
			if s.client.sink != nil {
				if err := s.client.sink.SendAudio(msg); err != nil {
					s.client.emitError(fmt.Errorf("failed to enqueue audio: %w", err))
					s.cancel()
					return
				}
			}
			if s.speaking.CompareAndSwap(false, true) {
				s.client.emitSpeaking(true)
			}
		case websocket.TextMessage:
			var parsedMsg struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				continue
			}

			if parsedMsg.Type == "Flushed" {
				// All audio for the utterance has been received; finish once
				// the sink has played it out.
				go s.finishPlayback()
			}
		}
	}
}

func (s *speakStream) finishPlayback() {
	_ = s.sendWebsocketMessage(closeMsg)
	if s.client.sink != nil {
		_ = s.client.sink.AwaitDrain()
	}
	s.end()
}

// end reports the end of playback exactly once and tears the stream down.
// The speaking-changed false emission fires even when no audio ever arrived,
// so observers always see the utterance finish.
func (s *speakStream) end() {
	s.done.Do(func() {
		s.client.detach(s)
		s.conn.Close()
		if !s.cancelled.Load() || s.speaking.Load() {
			s.client.emitSpeaking(false)
		}
	})
}

func (s *speakStream) cancel() {
	s.cancelled.Store(true)
	_ = s.sendWebsocketMessage(clearMsg)
	_ = s.sendWebsocketMessage(closeMsg)
	if s.client.sink != nil {
		s.client.sink.ClearBuffer()
	}
	s.end()
}

type websocketMessage struct {
	Type string `json:"type"`
}

var (
	speakMsg = func(text string) struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} {
		return struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: "Speak", Text: text}
	}
	flushMsg = websocketMessage{Type: "Flush"}
	clearMsg = websocketMessage{Type: "Clear"}
	closeMsg = websocketMessage{Type: "Close"}
)

func (s *speakStream) sendWebsocketMessage(msg any) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("websocket connection closed")
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}
