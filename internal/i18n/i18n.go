package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/zhouzirui/judge-companion/backend/internal/model/chat"
)

//go:embed locales/*.json
var localeFS embed.FS

// Message IDs
const (
	MsgApology       = "apology"
	MsgBusy          = "busy"
	MsgNotConfigured = "not_configured"
	MsgRateLimited   = "rate_limited"
)

var tags = map[chat.Language]language.Tag{
	chat.LanguageEnglish: language.English,
	chat.LanguageChinese: language.Chinese,
}

// Localizer manages the fixed texts returned without calling a model
type Localizer struct {
	bundle     *i18n.Bundle
	localizers map[chat.Language]*i18n.Localizer
}

// New loads the embedded en/zh message files.
func New() (*Localizer, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	localizers := make(map[chat.Language]*i18n.Localizer, len(tags))
	for lang, tag := range tags {
		path := fmt.Sprintf("locales/%s.json", lang)
		if _, err := bundle.LoadMessageFileFS(localeFS, path); err != nil {
			return nil, fmt.Errorf("failed to load language file %s: %w", path, err)
		}
		localizers[lang] = i18n.NewLocalizer(bundle, tag.String())
	}

	return &Localizer{bundle: bundle, localizers: localizers}, nil
}

// MustNew 与 New 相同，加载失败时 panic；内嵌文件损坏属于构建错误。
func MustNew() *Localizer {
	l, err := New()
	if err != nil {
		panic(err)
	}
	return l
}

// Get returns localized message
func (l *Localizer) Get(lang chat.Language, messageID string, data map[string]any) string {
	localizer, exists := l.localizers[lang]
	if !exists {
		localizer = l.localizers[chat.LanguageEnglish]
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID // Fallback to message ID
	}

	return msg
}

// Apology 所有供应商都失败时返回给用户的文本。
func (l *Localizer) Apology(lang chat.Language) string {
	return l.Get(lang, MsgApology, nil)
}

// Busy 供应商返回空内容时的占位回复。
func (l *Localizer) Busy(lang chat.Language) string {
	return l.Get(lang, MsgBusy, nil)
}

// NotConfigured 未配置任何供应商时的提示。
func (l *Localizer) NotConfigured(lang chat.Language) string {
	return l.Get(lang, MsgNotConfigured, nil)
}

// RateLimited 冷却期内的拒绝提示。
func (l *Localizer) RateLimited(lang chat.Language, seconds int) string {
	return l.Get(lang, MsgRateLimited, map[string]any{"Seconds": seconds})
}
