package worker_handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/ToyoKou0322/my-sns-app/config"
)

type dmNotifyPayload struct {
	RoomID       string `json:"room_id"`
	SenderUID    string `json:"sender_uid"`
	SenderName   string `json:"sender_name"`
	RecipientUID string `json:"recipient_uid"`
	Preview      string `json:"preview"`
}

// HandleDMNotify mails the dm recipient a nudge with a short preview. The
// mail is best-effort by design: the message itself is already stored, only
// the notification can fail.
func (h *WorkerHandler) HandleDMNotify(ctx context.Context, raw json.RawMessage) error {
	var payload dmNotifyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid dm notify payload: %w", err)
	}

	recipient, appErr := h.Users.FindUserByID(ctx, payload.RecipientUID)
	if appErr != nil {
		return fmt.Errorf("failed to resolve dm recipient %s: %s", payload.RecipientUID, appErr.Message)
	}

	if err := sendDMNotifyMail(recipient.Email, payload.SenderName, payload.Preview); err != nil {
		return err
	}

	log.Info().Str("room_id", payload.RoomID).Str("recipient", payload.RecipientUID).Msg("dm notification mail sent")
	return nil
}

func sendDMNotifyMail(to, senderName, preview string) error {
	host := config.Conf.MAIL.SMTPHost
	port := config.Conf.MAIL.SMTPPort
	username := config.Conf.MAIL.Username
	password := config.Conf.MAIL.Password
	from := config.Conf.MAIL.From

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("New message from %s", senderName))
	m.SetBody("text/plain", fmt.Sprintf("%s sent you a message:\n\n%s\n\nOpen the app to reply.", senderName, preview))

	d := gomail.NewDialer(host, port, username, password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send dm notification email: %w", err)
	}

	return nil
}
