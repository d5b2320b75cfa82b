package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/judge-companion/backend/internal/config"
	"github.com/zhouzirui/judge-companion/backend/internal/model/speech"
)

// DefaultEndpoint 火山引擎单向流式 TTS 地址
const DefaultEndpoint = "wss://openspeech.bytedance.com/api/v3/tts/unidirectional/stream"

const (
	defaultFormat     = "mp3"
	defaultSampleRate = 24000

	// 服务端 code 3000 表示成功
	ttsSuccessCode = 3000
)

var (
	// ErrNotConfigured 表示缺少 AppID 或 AccessToken。
	ErrNotConfigured = errors.New("speech: missing app id or access token")
	// ErrEmptyText 表示待合成文本为空。
	ErrEmptyText = errors.New("speech: text is empty")
	// ErrEmptyAudio 表示会话结束但没有收到音频。
	ErrEmptyAudio = errors.New("speech: empty audio")
)

// VolcengineTTSClient 火山引擎 TTS WebSocket 客户端
type VolcengineTTSClient struct {
	config   config.SpeechConfig
	endpoint string
	dialer   *websocket.Dialer
	logger   logrus.FieldLogger
}

type ttsServerMessage struct {
	ReqID    string `json:"reqid"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Data     string `json:"data"`
	Addition struct {
		Duration string `json:"duration,omitempty"`
	} `json:"addition,omitempty"`
}

type volcengineTTSRequest struct {
	User struct {
		UID string `json:"uid"`
	} `json:"user"`
	ReqParams struct {
		Speaker     string                   `json:"speaker"`
		Text        string                   `json:"text"`
		AudioParams volcengineTTSAudioParams `json:"audio_params"`
		Additions   string                   `json:"additions,omitempty"`
		Language    string                   `json:"language,omitempty"`
	} `json:"req_params"`
}

type volcengineTTSAudioParams struct {
	Format       string  `json:"format"`
	SampleRate   int     `json:"sample_rate"`
	SpeedRatio   float32 `json:"speed_ratio,omitempty"`
	VolumeRatio  float32 `json:"volume_ratio,omitempty"`
	Emotion      string  `json:"emotion,omitempty"`
	EmotionScale float32 `json:"emotion_scale,omitempty"`
}

// NewVolcengineTTSClient 创建 TTS 客户端
func NewVolcengineTTSClient(cfg config.SpeechConfig, logger logrus.FieldLogger) *VolcengineTTSClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &VolcengineTTSClient{
		config:   cfg,
		endpoint: endpoint,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:   logger.WithField("component", "tts"),
	}
}

// SynthesizeSpeechWS 逐个尝试发音人与资源 ID，直到合成成功
func (c *VolcengineTTSClient) SynthesizeSpeechWS(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	appKey, accessKey, err := c.credentials()
	if err != nil {
		return nil, err
	}

	speakers := resolveTTSSpeakerCandidates(req.Voice, c.config.TTSVoice)
	var lastMismatch error
	for _, speaker := range speakers {
		for idx, resourceID := range resolveTTSResourceCandidates(speaker) {
			resp, err := c.synthesize(ctx, req, appKey, accessKey, speaker, resourceID)
			if err == nil {
				if idx > 0 || speaker != speakers[0] {
					c.logger.WithFields(logrus.Fields{"voice": speaker, "resource": resourceID}).Info("tts fallback succeeded")
				}
				return resp, nil
			}
			if !isResourceMismatchError(err) {
				return nil, err
			}
			c.logger.WithFields(logrus.Fields{"voice": speaker, "resource": resourceID}).WithError(err).Debug("tts resource mismatch")
			lastMismatch = err
		}
	}
	if lastMismatch != nil {
		return nil, lastMismatch
	}
	return nil, fmt.Errorf("speech: no compatible resource for voices %v", speakers)
}

func (c *VolcengineTTSClient) credentials() (string, string, error) {
	appID := strings.TrimSpace(c.config.AppID)
	token := strings.TrimSpace(c.config.AccessToken)
	if token == "" {
		token = strings.TrimSpace(c.config.APIKey)
	}
	if appID == "" || token == "" {
		return "", "", ErrNotConfigured
	}
	return appID, token, nil
}

func (c *VolcengineTTSClient) synthesize(ctx context.Context, req *speech.TTSRequest, appKey, accessKey, speaker, resourceID string) (*speech.TTSResponse, error) {
	connectID := uuid.NewString()

	header := http.Header{}
	header.Set("X-Api-App-Key", appKey)
	header.Set("X-Api-Access-Key", accessKey)
	header.Set("X-Api-Resource-Id", resourceID)
	header.Set("X-Api-Connect-Id", connectID)

	conn, httpResp, err := c.dialer.DialContext(ctx, c.endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("speech: dial tts: %w", err)
	}
	defer conn.Close()
	if httpResp != nil {
		if logID := httpResp.Header.Get("X-Tt-Logid"); logID != "" {
			c.logger.WithField("logid", logID).Debug("tts connected")
		}
	}

	// 读阻塞时由 ctx 取消关闭连接
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}

	format := requestFormat(req)
	ttsReq, uid := c.buildTTSRequest(req, speaker, format)
	payload, err := json.Marshal(ttsReq)
	if err != nil {
		return nil, fmt.Errorf("speech: marshal tts request: %w", err)
	}
	compression := NoCompression
	if c.config.Gzip {
		compression = GzipCompression
	}
	if payload, err = CompressPayload(payload, compression); err != nil {
		return nil, err
	}
	frame, err := EncodeMessage(CreateFullClientRequest(payload, compression))
	if err != nil {
		return nil, err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return nil, fmt.Errorf("speech: send tts request: %w", err)
	}

	var (
		audio    bytes.Buffer
		reqID    string
		duration int64
	)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("speech: read tts response: %w", err)
		}
		msg, err := DecodeMessage(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		body, err := DecompressPayload(msg.Payload, msg.Header.CompressionMethod)
		if err != nil {
			return nil, err
		}

		switch msg.Header.MessageType {
		case ErrorMessage:
			return nil, fmt.Errorf("speech: tts error %d: %s", msg.ErrorCode, string(body))

		case AudioOnlyServerResponse:
			audio.Write(body)
			if !msg.IsLastPacket() {
				continue
			}

		case FullServerResponse:
			var serverResp ttsServerMessage
			if len(body) > 0 {
				if err := json.Unmarshal(body, &serverResp); err != nil {
					c.logger.WithError(err).Debug("tts response payload is not json")
				}
			}
			if serverResp.Code != 0 && serverResp.Code != ttsSuccessCode {
				return nil, fmt.Errorf("speech: tts api error %d: %s", serverResp.Code, serverResp.Message)
			}
			if serverResp.ReqID != "" {
				reqID = serverResp.ReqID
			}
			if ms, err := strconv.ParseInt(serverResp.Addition.Duration, 10, 64); err == nil {
				duration = ms
			}
			if serverResp.Data != "" {
				chunk, err := base64.StdEncoding.DecodeString(serverResp.Data)
				if err != nil {
					return nil, fmt.Errorf("speech: decode audio chunk: %w", err)
				}
				audio.Write(chunk)
			}
			if msg.EventType == EventTypeSessionFailed {
				return nil, fmt.Errorf("speech: tts session failed: %s", serverResp.Message)
			}
			finished := (msg.Header.hasEvent() && msg.EventType == EventTypeSessionFinished) ||
				msg.IsLastPacket() || serverResp.Sequence < 0
			if !finished {
				continue
			}

		default:
			c.logger.WithField("type", msg.Header.MessageType).Debug("unexpected tts frame")
			continue
		}

		if audio.Len() == 0 {
			return nil, ErrEmptyAudio
		}
		if reqID == "" {
			reqID = connectID
		}
		return &speech.TTSResponse{
			SessionID: uid,
			AudioData: audio.Bytes(),
			Duration:  duration,
			Format:    format,
			Voice:     speaker,
			RequestID: reqID,
			CreatedAt: time.Now(),
		}, nil
	}
}

// buildTTSRequest 构建火山引擎 TTS 请求体
func (c *VolcengineTTSClient) buildTTSRequest(req *speech.TTSRequest, speaker, format string) (*volcengineTTSRequest, string) {
	ttsReq := &volcengineTTSRequest{}

	uid := strings.TrimSpace(req.SessionID)
	if uid == "" {
		uid = uuid.NewString()
	}
	ttsReq.User.UID = uid

	ttsReq.ReqParams.Speaker = speaker
	ttsReq.ReqParams.Text = req.Text
	ttsReq.ReqParams.Language = strings.TrimSpace(req.Language)
	ttsReq.ReqParams.Additions = `{"disable_markdown_filter":false}`

	params := &ttsReq.ReqParams.AudioParams
	params.Format = format
	params.SampleRate = defaultSampleRate

	speed := req.Speed
	if speed <= 0 {
		speed = c.config.TTSSpeed
	}
	if speed > 0 && speed != 1.0 {
		params.SpeedRatio = speed
	}
	volume := req.Volume
	if volume <= 0 {
		volume = c.config.TTSVolume
	}
	if volume > 0 && volume != 1.0 {
		params.VolumeRatio = volume
	}

	if req.Emotion != "" && supportsEmotion(speaker) {
		params.Emotion = req.Emotion
		params.EmotionScale = req.EmotionScale
	}

	return ttsReq, uid
}

// requestFormat 单向流式接口不支持 wav，统一回落到 mp3
func requestFormat(req *speech.TTSRequest) string {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" || format == "wav" {
		return defaultFormat
	}
	return format
}

func resolveTTSResourceCandidates(voice string) []string {
	const (
		defaultResource = "volc.service_type.10029"
		megaResource    = "volc.megatts.default"
		seedResource    = "seed-tts-2.0"
	)

	voice = strings.TrimSpace(voice)
	if strings.HasPrefix(voice, "S_") {
		return []string{megaResource}
	}
	normalized := strings.ToLower(voice)
	for _, hint := range []string{"bigtts", "seed", "megatts", "mars", "venus", "uranus", "jupiter"} {
		if strings.Contains(normalized, hint) {
			return []string{seedResource, defaultResource}
		}
	}
	return []string{defaultResource, seedResource}
}

// resolveTTSSpeakerCandidates 返回去重后的发音人列表，请求值优先
func resolveTTSSpeakerCandidates(requested, fallback string) []string {
	var candidates []string
	for _, s := range []string{requested, fallback} {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		duplicate := false
		for _, existing := range candidates {
			if strings.EqualFold(existing, s) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			candidates = append(candidates, s)
		}
	}
	return candidates
}

func isResourceMismatchError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "resource ID is mismatched with speaker related resource")
}
