package mailer

import (
	"log"
	"os"

	"ers/src/lib"
)

// NewMailerMessage hands the message off for delivery outside the request
// path. Delivery failure is logged, never propagated: mail must not block or
// roll back the operation that triggered it.
func NewMailerMessage(input *lib.SendMailInput) error {
	if os.Getenv("SMTP_HOST") == "" {
		log.Println("Mailer disabled: SMTP_HOST not set")
		return nil
	}
	if input.From == "" {
		input.From = os.Getenv("SMTP_FROM")
	}
	if input.FromName == "" {
		input.FromName = os.Getenv("SMTP_FROM_NAME")
	}
	go func() {
		if err := lib.SendMail(input); err != nil {
			log.Printf("Error sending mail: %s\n", err.Error())
		}
	}()
	return nil
}
