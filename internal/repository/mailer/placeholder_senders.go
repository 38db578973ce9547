package mailer

import (
	"payvance/pkg/logger"
)

// SMSRepository is a stand-in until a Termii/Twilio integration lands. It
// logs and reports success so the dispatch path can be exercised end to end.
type SMSRepository struct{}

func NewSMSRepository() *SMSRepository {
	return &SMSRepository{}
}

func (r *SMSRepository) SendSMS(toPhone, message string) error {
	// TODO: integrate Termii once the account is provisioned
	logger.Info("SMS send (placeholder)", "to", toPhone)
	return nil
}

// WhatsAppRepository is a stand-in for the Meta Business API integration.
type WhatsAppRepository struct{}

func NewWhatsAppRepository() *WhatsAppRepository {
	return &WhatsAppRepository{}
}

func (r *WhatsAppRepository) SendWhatsApp(toPhone, message string) error {
	logger.Info("WhatsApp send (placeholder)", "to", toPhone)
	return nil
}
