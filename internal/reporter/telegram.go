package reporter

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-jobwatch-automation/internal/monitor"
)

type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramReporter(token string, chatID int64) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//bot.Debug = true

	return &TelegramReporter{
		bot:    bot,
		chatID: chatID,
	}, nil
}

func (t *TelegramReporter) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML" //use HTML for bold/italic
	_, err := t.bot.Send(msg)
	return err
}

func (t *TelegramReporter) SendNewJob(label string, job monitor.Job) error {
	text := fmt.Sprintf(
		"🆕 <b>%s</b>\n"+
			"📋 %s\n"+
			"🔗 <a href=\"%s\">View posting</a>",
		job.Title,
		label,
		job.URL,
	)
	return t.SendMessage(text)
}

func (t *TelegramReporter) SendSummary(totalNew, failed int) error {
	text := fmt.Sprintf("📊 <b>Job watch run finished</b>\nNew postings: %d\nFailed searches: %d", totalNew, failed)
	return t.SendMessage(text)
}

func (t *TelegramReporter) SendError(errReq error) error {
	text := fmt.Sprintf("⚠️ <b>Job watch error</b>:\n%v", errReq)
	return t.SendMessage(text)
}
