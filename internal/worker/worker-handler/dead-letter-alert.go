package worker_handler

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/ToyoKou0322/my-sns-app/config"
)

// SendDeadLetterAlert mails the ops mailbox (the configured From address)
// when a job exhausts its retries. The caller owns dedupe.
func (h *WorkerHandler) SendDeadLetterAlert(jobID, jobType, errorMsg string) error {
	host := config.Conf.MAIL.SMTPHost
	port := config.Conf.MAIL.SMTPPort
	username := config.Conf.MAIL.Username
	password := config.Conf.MAIL.Password
	from := config.Conf.MAIL.From

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", from)
	m.SetHeader("Subject", fmt.Sprintf("Job type %q failed permanently", jobType))
	m.SetBody("text/plain", fmt.Sprintf("Job %s (%s) was dead-lettered.\n\nLast error:\n%s", jobID, jobType, errorMsg))

	d := gomail.NewDialer(host, port, username, password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send dead letter alert email: %w", err)
	}

	return nil
}
