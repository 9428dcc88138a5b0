package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"

	"github.com/voxloop/voxloop-core/core/audio"
	"github.com/voxloop/voxloop-core/core/recognition"
	"github.com/voxloop/voxloop-core/internal/utils"
)

// listenStream is one utterance worth of websocket traffic. The terminal once
// guards the single completed/errored emission each stream is allowed.
type listenStream struct {
	client   *Client
	conn     *websocket.Conn
	encoding audio.EncodingInfo
	cancel   context.CancelFunc

	connMu    sync.Mutex
	lastMsgTs time.Time

	transcriptMu          sync.Mutex
	accumulatedTranscript string
	unendedSegment        bool

	terminal sync.Once
}

func connectWebsocket(sampleRate int, encoding string) (*websocket.Conn, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	listenUrl, _ := url.Parse("wss://api.deepgram.com/v1/listen")
	queryParams := listenUrl.Query()
	queryParams.Set("encoding", encoding)
	queryParams.Set("sample_rate", strconv.Itoa(sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", "nova-3")
	queryParams.Set("language", "en-US")
	queryParams.Set("smart_format", "true")
	queryParams.Set("utterance_end_ms", "1000")
	queryParams.Set("interim_results", "true")
	queryParams.Set("endpointing", "300")
	queryParams.Set("vad_events", "true")

	listenUrl.RawQuery = queryParams.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(listenUrl.String(),
		http.Header{"Authorization": {"Token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, err
}

func (s *listenStream) sendAudio(audio []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	s.lastMsgTs = time.Now()
	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

func (s *listenStream) sendSilence(audio []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

func (s *listenStream) sendKeepAlive() {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if err := s.conn.WriteJSON(
		struct {
			Type string `json:"type"`
		}{
			Type: "KeepAlive",
		}); err != nil {
		log.Println("Failed to write to deepgram client", "error", err)
	}
}

func (s *listenStream) requestClose() {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if err := s.conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		log.Println("Failed to request deepgram stream close", "error", err)
	}
}

func (s *listenStream) fullTranscript() string {
	s.transcriptMu.Lock()
	defer s.transcriptMu.Unlock()
	return strings.TrimSpace(s.accumulatedTranscript)
}

func (s *listenStream) readAndProcessMessages(ctx context.Context, conn *websocket.Conn) {
	silenceCtx, silenceCancel := context.WithCancel(ctx)
	defer silenceCancel()

	go s.generateSilence(silenceCtx)

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || ctx.Err() != nil {
				s.finish(recognition.Completed(s.fullTranscript()))
			} else {
				log.Println("Failed to read deepgram websocket message", "error", err)
				s.fail(fmt.Errorf("websocket read failed: %w", err))
			}
			conn.Close()
			return
		}
		if msgType != websocket.BinaryMessage {
			s.processMessage(msg)
		}
	}
}

func (s *listenStream) processMessage(msg []byte) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		log.Println("Failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}

		transcript := ""
		if len(msgResp.Channel.Alternatives) > 0 {
			transcript = strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
		}

		if msgResp.IsFinal {
			if len(transcript) > 0 {
				s.transcriptMu.Lock()
				s.accumulatedTranscript += " " + transcript
				s.transcriptMu.Unlock()
				s.client.emit(recognition.Listening(s.fullTranscript()))
			}
			if msgResp.SpeechFinal {
				s.onSpeechEnded()
			}
			return
		}

		if len(transcript) > 0 {
			s.client.emit(recognition.Listening(strings.TrimSpace(s.fullTranscript() + " " + transcript)))
		}

	case api.TypeUtteranceEndResponse:
		var msgResp api.UtteranceEndResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}

		s.transcriptMu.Lock()
		unended := s.unendedSegment
		s.transcriptMu.Unlock()
		if unended {
			s.onSpeechEnded()
		}

	case api.TypeSpeechStartedResponse:
		var msgResp api.SpeechStartedResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}

		s.transcriptMu.Lock()
		s.unendedSegment = true
		s.transcriptMu.Unlock()
	}
}

func (s *listenStream) onSpeechEnded() {
	s.transcriptMu.Lock()
	s.unendedSegment = false
	s.transcriptMu.Unlock()

	s.finish(recognition.Completed(s.fullTranscript()))
}

func (s *listenStream) fail(err error) {
	s.finish(recognition.Errored(err))
}

// finish tears the stream down and emits its terminal state, exactly once.
// The idle emission after the terminal one tells observers the client can be
// started again.
func (s *listenStream) finish(terminalState recognition.State) {
	s.terminal.Do(func() {
		s.cancel()
		if s.client.source != nil {
			_ = s.client.source.StopStream()
		}
		s.requestClose()
		s.client.detach(s)
		s.client.emit(terminalState)
		s.client.emit(recognition.Idle())
	})
}

// generateSilence keeps the websocket alive through pauses: after ~50ms
// without real audio it streams silence chunks, and after a second of that it
// falls back to periodic KeepAlive messages.
func (s *listenStream) generateSilence(ctx context.Context) {
	type silenceGeneratorState string
	const (
		silenceGeneratorStateWaiting   silenceGeneratorState = "waiting"
		silenceGeneratorStateSilence   silenceGeneratorState = "silence"
		silenceGeneratorStateKeepAlive silenceGeneratorState = "keepAlive"
	)

	const durationMs = 50
	const millisecondsPerSecond = 1000
	ticker := time.NewTicker(durationMs * time.Millisecond)

	chunk := make([]byte, s.encoding.SampleRate*s.encoding.ByteSize()*durationMs/millisecondsPerSecond)
	for i := range chunk {
		chunk[i] = s.encoding.SilenceValue()
	}

	var state = silenceGeneratorStateWaiting
	var firstSilenceTime *time.Time
	var lastKeepAliveTime *time.Time
	for {
		select {
		case <-ctx.Done():
			ticker.Stop()
			return
		case <-ticker.C:
			switch state {
			case silenceGeneratorStateWaiting:
				if time.Since(s.lastMsgTs).Milliseconds() > 50 {
					state = silenceGeneratorStateSilence
					firstSilenceTime = utils.Ptr(time.Now())
					continue
				}

			case silenceGeneratorStateSilence:
				if time.Since(s.lastMsgTs).Milliseconds() < 50 {
					state = silenceGeneratorStateWaiting
					firstSilenceTime = nil
					continue
				}
				if time.Since(*firstSilenceTime).Milliseconds() >= 1000 {
					state = silenceGeneratorStateKeepAlive
					lastKeepAliveTime = utils.Ptr(time.Now())
					firstSilenceTime = nil
					continue
				}

				if err := s.sendSilence(chunk); err != nil {
					log.Println("Sending silence audio error", err)
				}

			case silenceGeneratorStateKeepAlive:
				if time.Since(s.lastMsgTs).Milliseconds() < 50 {
					state = silenceGeneratorStateWaiting
					continue
				}

				if time.Since(*lastKeepAliveTime).Seconds() >= 5 {
					lastKeepAliveTime = utils.Ptr(time.Now())
					s.sendKeepAlive()
				}
			}
		}
	}
}
