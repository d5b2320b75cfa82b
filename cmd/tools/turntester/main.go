package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/judge-companion/backend/internal/analysis/emotion"
	"github.com/zhouzirui/judge-companion/backend/internal/config"
	"github.com/zhouzirui/judge-companion/backend/internal/i18n"
	"github.com/zhouzirui/judge-companion/backend/internal/model/chat"
	"github.com/zhouzirui/judge-companion/backend/internal/service/ai"
	"github.com/zhouzirui/judge-companion/backend/internal/service/analytics"
	"github.com/zhouzirui/judge-companion/backend/internal/service/speech"
)

// turntester 在命令行里跑一轮对话或一次语音合成，用来核对供应商与语音凭证。
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})

	if err := config.LoadDotEnv(); err != nil {
		log.WithError(err).Warn("无法加载 .env，改用系统环境变量")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("配置加载失败")
	}

	mode := flag.String("mode", "chat", "测试模式: chat 或 tts")
	text := flag.String("text", "", "chat: 用户消息; tts: 待合成文本")
	language := flag.String("lang", "en", "语言: en 或 zh")
	label := flag.String("emotion", "", "tts 模式使用的情绪标签，留空则按文本推断")
	outputPath := flag.String("out", "", "音频输出路径 (默认根据时间生成)")
	timeout := flag.Duration("timeout", 90*time.Second, "整体超时时间")
	verbose := flag.Bool("v", false, "输出调试日志")

	flag.Parse()

	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if strings.TrimSpace(*text) == "" {
		flag.Usage()
		log.Fatal("请通过 -text 提供输入文本")
	}
	lang, ok := chat.ParseLanguage(*language)
	if !ok {
		log.Fatalf("不支持的语言: %s", *language)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "chat":
		runChat(ctx, log, cfg, *text, lang, *outputPath)
	case "tts":
		runTTS(ctx, log, cfg, *text, lang, *label, *outputPath)
	default:
		flag.Usage()
		log.Fatal("请通过 -mode=chat 或 -mode=tts 指定测试模式")
	}
}

func runChat(ctx context.Context, log *logrus.Logger, cfg *config.Config, text string, lang chat.Language, outputPath string) {
	var providers []ai.Provider
	if cfg.AI.OpenAI.Enabled() {
		if p, err := ai.NewOpenAIProvider(cfg.AI.OpenAI, cfg.AI.RequestTimeout); err == nil {
			providers = append(providers, p)
		} else {
			log.WithError(err).Warn("OpenAI 初始化失败")
		}
	}
	if cfg.AI.Ark.Enabled() {
		if p, err := ai.NewArkProvider(ctx, cfg.AI.Ark); err == nil {
			providers = append(providers, p)
		} else {
			log.WithError(err).Warn("Ark 初始化失败")
		}
	}
	if cfg.AI.Gemini.Enabled() {
		if p, err := ai.NewGeminiProvider(ctx, cfg.AI.Gemini); err == nil {
			providers = append(providers, p)
		} else {
			log.WithError(err).Warn("Gemini 初始化失败")
		}
	}

	chain := ai.NewChain(providers, cfg.AI.RequestTimeout, nil, log)
	opts := ai.Options{Analyzer: analytics.NewService(chain, nil, log), Logger: log}
	if cfg.Speech.Enabled {
		opts.Speech = speech.NewService(cfg.Speech, nil, log)
	}
	svc := ai.NewService(chain, i18n.MustNew(), opts)

	log.WithFields(logrus.Fields{"providers": chain.Names(), "language": lang}).Info("开始对话测试")
	start := time.Now()
	resp, err := svc.Generate(ctx, text, lang)
	if err != nil {
		log.WithError(err).Fatal("对话生成失败")
	}

	summary := map[string]any{
		"provider":  resp.Provider,
		"message":   resp.Message,
		"emotion":   resp.Emotion,
		"analytics": resp.Analytics,
		"hasAudio":  resp.AudioBase64 != "",
		"elapsed":   time.Since(start).String(),
	}
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	if resp.AudioBase64 != "" {
		audio, err := base64.StdEncoding.DecodeString(resp.AudioBase64)
		if err != nil {
			log.WithError(err).Fatal("音频解码失败")
		}
		writeAudio(log, audio, outputPath)
	}
}

func runTTS(ctx context.Context, log *logrus.Logger, cfg *config.Config, text string, lang chat.Language, rawLabel, outputPath string) {
	if !cfg.Speech.Enabled {
		log.Fatal("语音服务未启用，请先配置 SPEECH_APP_ID 与 SPEECH_ACCESS_TOKEN")
	}

	label := emotion.Classify(text)
	if rawLabel != "" {
		parsed, ok := emotion.ParseLabel(rawLabel)
		if !ok {
			log.Fatalf("未知情绪标签: %s", rawLabel)
		}
		label = parsed
	}

	svc := speech.NewService(cfg.Speech, nil, log)
	log.WithFields(logrus.Fields{"language": lang, "emotion": label}).Info("开始 TTS 测试")

	encoded, err := svc.SynthesizeBase64(ctx, text, lang, label)
	if err != nil {
		log.WithError(err).Fatal("TTS 调用失败")
	}
	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		log.WithError(err).Fatal("音频解码失败")
	}
	writeAudio(log, audio, outputPath)
}

func writeAudio(log *logrus.Logger, audio []byte, outputPath string) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("tts-output-%d.mp3", time.Now().Unix())
	}
	if err := os.WriteFile(outputPath, audio, 0o644); err != nil {
		log.WithError(err).Fatal("写入音频文件失败")
	}
	log.WithFields(logrus.Fields{"file": outputPath, "bytes": len(audio)}).Info("音频已写入")
}
