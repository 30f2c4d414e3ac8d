package common

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	"ers/src/lib"
	"ers/src/lib/mailer"
	"ers/src/models"

	"github.com/yeqown/go-qrcode"
)

// IssueTicket builds the registration's verification URL, encodes it as a
// scannable image, and marks the registration active. The ticket email is
// fire-and-forget: delivery failure never rolls back issuance.
func (v *Verifier) IssueTicket(ticketID string) (*models.Registration, string, error) {
	url := VerificationURL(ticketID)
	qrData, err := EncodeQR(url)
	if err != nil {
		log.Printf("Error encoding qrcode for %s: %s\n", ticketID, err.Error())
		return nil, "", err
	}
	reg, err := v.Issue(ticketID, qrData)
	if err != nil {
		return nil, "", err
	}
	if reg.Email != "" {
		sendTicketEmail(reg, qrData, url)
	}
	return reg, url, nil
}

// VerificationURL is the opaque credential content: the gate scanner opens
// it and the server decides.
func VerificationURL(ticketID string) string {
	root := os.Getenv("SITE_ROOT")
	if root == "" {
		root = "http://localhost:3000"
	}
	return fmt.Sprintf("%s/verify?t=%s", root, ticketID)
}

// EncodeQR renders the content as a QR image and returns it as a base64
// data URI suitable for direct embedding in an <img> tag or email body.
func EncodeQR(content string) (string, error) {
	qrc, err := qrcode.New(content)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		log.Printf("Could not write qrcode to buffer: %s\n", err.Error())
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func sendTicketEmail(reg *models.Registration, qrData, url string) {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your ticket <b>%s</b> is ready. Present this QR code at the entrance:</p><p><img src=\"%s\" alt=\"ticket\"/></p><p>Or open <a href=\"%s\">%s</a></p>",
		reg.Name, reg.ID, qrData, url, url,
	)
	if err := mailer.NewMailerMessage(&lib.SendMailInput{
		To:      []string{reg.Email},
		Subject: fmt.Sprintf("Your ticket %s", reg.ID),
		Body:    body,
		Html:    true,
	}); err != nil {
		log.Printf("Error queueing ticket email for %s: %s\n", reg.ID, err.Error())
	}
}
