// Package sender отправляет письма-квитанции об успешной покупке кредитов.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/imagegen-service/internal/lib/sl"
	"github.com/magabrotheeeer/imagegen-service/internal/lib/smtp"
	"github.com/magabrotheeeer/imagegen-service/internal/models"
)

// Transport описывает почтовый транспорт.
type Transport interface {
	Connect() (smtp.Client, error)
	GetSMTPUser() string
}

// SenderService читает квитанции из очереди и отправляет их по почте.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport Transport) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendPaymentReceipt разбирает сообщение очереди и отправляет письмо
// с подтверждением зачисления кредитов.
func (s *SenderService) SendPaymentReceipt(body []byte) error {
	var receipt models.PaymentReceipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		s.log.Error("Failed to unmarshal message body", "error", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{receipt.Email}
	subject := "Подтверждение покупки кредитов"
	bodyText := fmt.Sprintf(`Здравствуйте, %s!

Оплата по тарифу %q прошла успешно.
На ваш счёт зачислено %d кредитов, сумма платежа: %d %s (в минорных единицах).
Номер транзакции: %s.`,
		receipt.Name, receipt.Plan, receipt.Credits, receipt.Amount, receipt.Currency, receipt.TransactionUID)

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("Failed to connect to SMTP server", "error", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("Failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("Failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("Failed to get Data writer", "error", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("Failed to write email body", "error", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("Failed to close Data writer", "error", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("Failed to quit SMTP client", "error", sl.Err(err))
		return err
	}

	s.log.Info("payment receipt email sent", "to", to)
	return nil
}
