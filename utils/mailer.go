package utils

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/commercelink/reseller_backend/config"
	"github.com/commercelink/reseller_backend/models"
)

// Mailer sends payout receipt emails to resellers. Sending is best-effort:
// a failure is logged and never fails the payment flow.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.MailFrom,
	}
}

// SendPayoutReceipt emails the reseller after a successful disbursement.
func (m *Mailer) SendPayoutReceipt(reseller *models.Reseller, payment *models.Payment, result *models.DisbursementResult) {
	if m.host == "" {
		log.WithField("paymentId", payment.PaymentID).Debug("SMTP not configured, skipping payout receipt")
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", reseller.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Commission payout %s", payment.PaymentID))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\r\n\r\nYour commission of %.2f for payment %s has been disbursed.\r\nGateway reference: %s\r\n\r\nThank you for selling with us.",
		reseller.FullName, payment.CommissionAmount, payment.PaymentID, result.TransactionID,
	))

	dialer := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := dialer.DialAndSend(msg); err != nil {
		log.WithFields(log.Fields{
			"paymentId":  payment.PaymentID,
			"resellerId": reseller.ResellerID,
		}).Warnf("Failed to send payout receipt: %v", err)
	}
}
