package managers

import (
	"context"
	"errors"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"

	"cloud-drive/internal/config"
)

var errMailNotConfigured = errors.New("mailgun is not configured")

// MailMgr delivers transactional mail.
type MailMgr interface {
	SendResetCode(ctx context.Context, email, fullName, code string) error
}

// MailManager formats mails with Hermes and sends them through Mailgun.
// Outside production nothing is sent and the code is logged instead.
type MailManager struct {
	Hermes     *hermes.Hermes
	Mailgun    mailgun.Mailgun
	from       string
	production bool
	validFor   time.Duration
}

// SendResetCode mails the one-time password reset code to the account owner.
func (mm *MailManager) SendResetCode(ctx context.Context, email, fullName, code string) error {
	if !mm.production {
		log.WithField("email", email).Infof("Skipping reset mail in development mode, code is %s", code)
		return nil
	}

	if mm.Mailgun == nil {
		return errMailNotConfigured
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: fullName,
			Intros: []string{
				"We received a request to reset the password of your Cloud Drive account.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "Enter the following code to choose a new password:",
					InviteCode:   code,
				},
			},
			Outros: []string{
				"The code expires in " + mm.validFor.String() + ". If you did not request a reset, you can ignore this mail.",
			},
		},
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}
	plainBody, err := mm.Hermes.GeneratePlainText(mailBody)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	message := mm.Mailgun.NewMessage(mm.from, "Your password reset code", plainBody, email)
	message.SetHtml(emailBody)
	if _, _, err = mm.Mailgun.Send(ctx, message); err != nil {
		return err
	}
	log.Debug("Reset mail sent to ", email)

	return nil
}

// NewMailManager initializes Hermes and, when a domain and key are configured, Mailgun.
func NewMailManager(cfg *config.Config) MailMgr {
	log.Info("Initializing mail manager")

	if !cfg.IsProduction() {
		log.Info("Running in development mode, mails will not be sent to users")
	}

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:      "Cloud Drive",
				Link:      cfg.PublicBaseURL,
				Copyright: "Cloud Drive",
			},
		},
		from:       cfg.MailFrom,
		production: cfg.IsProduction(),
		validFor:   cfg.ResetCodeValidity,
	}

	if cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" {
		mm.Mailgun = mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey)
	} else if mm.production {
		log.Warn("MAILGUN_DOMAIN or MAILGUN_API_KEY not set, reset mails will fail")
	}

	log.Info("Initialized mail manager")
	return mm
}
