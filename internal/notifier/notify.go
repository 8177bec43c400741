package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

type WebhookNotify struct {
	UserId    int64
	Username  string
	Event     string
	TimeStamp string
}

// NotifyWebhook уведомляет о закрытии сессии из-за повторного логина
func NotifyWebhook(webhookURL string, userId int64, username string) error {
	payload := &WebhookNotify{
		UserId:    userId,
		Username:  username,
		Event:     "session_closed_by_new_login",
		TimeStamp: time.Now().Format(time.RFC3339),
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка преобразования в json: %w", err)
	}

	response, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("ошибка отправки webhook: %w", err)
	}
	defer response.Body.Close()

	log.Print("webhook успешно отправлен")
	return nil
}
