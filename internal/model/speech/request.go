package speech

// TTSRequest 语音合成请求
type TTSRequest struct {
	SessionID    string  `json:"sessionId"`
	Text         string  `json:"text"`
	Voice        string  `json:"voice"`        // 发音人
	Speed        float32 `json:"speed"`        // 语速倍率 0.5-2.0
	Volume       float32 `json:"volume"`       // 音量倍率
	Format       string  `json:"format"`       // mp3, ogg_opus, pcm
	Language     string  `json:"language"`     // zh, en
	Emotion      string  `json:"emotion"`      // 仅多情感发音人生效
	EmotionScale float32 `json:"emotionScale"` // 1-5
}
