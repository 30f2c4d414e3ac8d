package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"ers/src/common"
	"ers/src/db"
	"ers/src/lib"
	"ers/src/lib/mailer"
	"ers/src/models"
	"ers/src/types"
	"ers/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func registrationHandlers(g *gin.RouterGroup, verifier *common.Verifier) *gin.RouterGroup {
	g.
		GET("/form", func(ctx *gin.Context) {
			if form := lib.GetCachedPublishedForm(); form != nil {
				ctx.JSON(http.StatusOK, form)
				return
			}
			var form models.EventForm
			db := db.GetDb()
			if err := db.Where("is_published = ?", true).First(&form).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				log.Printf("Error retrieving published form: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			go lib.CachePublishedForm(&form)
			ctx.JSON(http.StatusOK, &form)
		}).
		POST("/register", func(ctx *gin.Context) {
			var body types.RegisterRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error in validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()

			// The form is read once here; the registration binds to whatever
			// revision is published at this moment.
			var form *models.EventForm
			var published models.EventForm
			if err := db.Where("is_published = ?", true).First(&published).Error; err == nil {
				form = &published
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("Error retrieving published form: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}

			schema := common.SchemaFor(form)
			if errs := schema.Validate(&body); errs != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"errors": errs})
				return
			}

			groupSize := body.GroupSize
			if groupSize < 1 {
				groupSize = 1
			}
			customData := types.JSONB{}
			for k, v := range body.CustomFieldData {
				customData[k] = v
			}
			reg := models.Registration{
				Name:            body.Name,
				Email:           body.Email,
				Phone:           body.Phone,
				Organization:    body.Organization,
				GroupSize:       groupSize,
				TeamMembers:     types.TeamMemberList(body.TeamMembers),
				CustomFieldData: customData,
				MaxScans:        form.MaxScansFor(groupSize),
				Status:          types.REGISTRATION_PENDING,
			}
			if form != nil {
				reg.FormID = &form.ID
			}

			created := false
			for range 5 {
				reg.ID = utils.NewTicketID()
				err := db.Create(&reg).Error
				if err == nil {
					created = true
					break
				}
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					continue
				}
				log.Printf("Error creating Registration: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if !created {
				log.Printf("Could not allocate a ticket id after retries\n")
				ctx.Status(http.StatusInternalServerError)
				return
			}

			if reg.Email != "" {
				sendConfirmationEmail(&reg, form)
			}
			ctx.JSON(http.StatusCreated, &reg)
		}).
		GET("/verify", func(ctx *gin.Context) {
			var query types.VerifyQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				// A missing or empty token is still a gate decision, not an
				// HTTP error.
				ctx.JSON(http.StatusOK, common.ScanResult{Valid: false, Message: common.MsgInvalidTicket})
				return
			}
			result, err := verifier.Scan(query.Ticket)
			if err != nil {
				log.Printf("Error scanning ticket [%s]: %s\n", query.Ticket, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, result)
		})
	return g
}

func sendConfirmationEmail(reg *models.Registration, form *models.EventForm) {
	subject := "Registration received"
	intro := "Thanks for registering!"
	if form != nil && form.SuccessTitle != "" {
		subject = form.SuccessTitle
	}
	if form != nil && form.SuccessMessage != "" {
		intro = form.SuccessMessage
	}
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>%s</p><p>Your registration id is <b>%s</b>. You will receive your entry QR code once it is issued.</p>",
		reg.Name, intro, reg.ID,
	)
	if err := mailer.NewMailerMessage(&lib.SendMailInput{
		To:      []string{reg.Email},
		Subject: subject,
		Body:    body,
		Html:    true,
	}); err != nil {
		log.Printf("Error queueing confirmation email for %s: %s\n", reg.ID, err.Error())
	}
}
