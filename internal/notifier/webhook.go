package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"device-auth-server/config"
	"device-auth-server/internal/util"
)

// WebhookNotifier передаёт ссылку подтверждения внешнему почтовому сервису.
// Сам сервер письма не отправляет.
type WebhookNotifier struct {
	endpoint   string
	httpClient *http.Client
}

func NewWebhookNotifier(cfg *config.WebhookConfig) *WebhookNotifier {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WebhookNotifier{
		endpoint: cfg.URL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type verificationPayload struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (n *WebhookNotifier) NotifyVerification(ctx context.Context, email, token string) error {
	if n.endpoint == "" {
		log.Printf("[WebhookNotifier] webhook не настроен, ссылка подтверждения не отправлена, %s", util.MaskEmail(email))
		return nil
	}

	body, err := json.Marshal(verificationPayload{Email: email, Token: token})
	if err != nil {
		return util.LogError("[WebhookNotifier] ошибка сериализации payload", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return util.LogError("[WebhookNotifier] ошибка создания запроса", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := n.httpClient.Do(request)
	if err != nil {
		return util.LogError("[WebhookNotifier] ошибка отправки webhook", err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 300 {
		return util.LogError("[WebhookNotifier] webhook отклонён", fmt.Errorf("status=%d", response.StatusCode))
	}

	log.Printf("[WebhookNotifier] ссылка подтверждения передана, %s", util.MaskEmail(email))
	return nil
}
