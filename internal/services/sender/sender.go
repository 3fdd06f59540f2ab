// Package services содержит сервис рассылки: отправку почтовых уведомлений
// об истекающих подписках и обработку событий въезда.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/parking-manager/internal/lib/sl"
	"github.com/magabrotheeeer/parking-manager/internal/lib/smtp"
	"github.com/magabrotheeeer/parking-manager/internal/models"
)

// SenderService отправляет письма и обрабатывает сообщения из очередей.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendExpiryNotification разбирает сообщение об истекающей подписке и
// отправляет пользователю письмо.
func (s *SenderService) SendExpiryNotification(body []byte) error {
	var message models.ExpiryInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal expiry notification", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Уведомление о скором окончании подписки на парковку"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nВаша подписка на тариф %s заканчивается завтра.\n\nПожалуйста, продлите её заранее, чтобы не потерять доступ к парковке.",
		message.Name, message.PlanName)

	return s.sendEmail(to, subject, bodyText)
}

// HandleEntryEvent принимает событие въезда. Сейчас событие только
// логируется для аудита.
func (s *SenderService) HandleEntryEvent(body []byte) error {
	var event models.EntryEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal entry event", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}
	s.log.Info("vehicle entry recorded",
		slog.String("event_id", event.EventID),
		slog.String("uid", event.UserUID),
		slog.String("parking_id", event.ParkingID),
		slog.Time("arrival_time", event.ArrivalTime))
	return nil
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
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
