package main

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"ers/src/common"
	"ers/src/db"
	"ers/src/middlewares"
	"ers/src/models"
	"ers/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

const adminSessionTTL = 24 * time.Hour

func authHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/login", func(ctx *gin.Context) {
			var body types.AdminLoginRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			password := os.Getenv("ADMIN_PASSWORD")
			if password == "" {
				log.Println("ADMIN_PASSWORD is not configured")
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if subtle.ConstantTimeCompare([]byte(body.Password), []byte(password)) != 1 {
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			expiresAt := time.Now().Add(adminSessionTTL)
			claims := types.Claims{
				Role: "admin",
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "admin",
					IssuedAt:  jwt.NewNumericDate(time.Now()),
					ExpiresAt: jwt.NewNumericDate(expiresAt),
				},
			}
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
			signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
			if err != nil {
				log.Printf("Error signing session token: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"token": signed, "expiresAt": expiresAt})
		})
	return g
}

func adminHandlers(g *gin.RouterGroup, verifier *common.Verifier) *gin.RouterGroup {
	g.
		POST("/logout", func(ctx *gin.Context) {
			token := ctx.GetString("token")
			if token != "" {
				middlewares.RevokeToken(token, int64(adminSessionTTL.Seconds()))
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/registrations", func(ctx *gin.Context) {
			var query struct {
				Form uint `form:"form"`
			}
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			tx := db.Order("created_at DESC")
			if query.Form > 0 {
				tx = tx.Where("form_id = ?", query.Form)
			}
			var regs []models.Registration
			if err := tx.Find(&regs).Error; err != nil {
				log.Printf("Error retrieving registrations: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, &regs)
		}).
		GET("/registrations/:id", func(ctx *gin.Context) {
			var params types.TicketURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			reg, err := verifier.Get(params.ID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				log.Printf("Error retrieving Registration [%s]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, reg)
		}).
		PUT("/registrations/:id", func(ctx *gin.Context) {
			var params types.TicketURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateRegistrationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			// Admin edits are trusted: no ruleset re-run, and scan state is
			// untouchable from here.
			updates := map[string]any{}
			if body.Name != nil {
				updates["name"] = *body.Name
			}
			if body.Email != nil {
				updates["email"] = *body.Email
			}
			if body.Phone != nil {
				updates["phone"] = *body.Phone
			}
			if body.Organization != nil {
				updates["organization"] = *body.Organization
			}
			if body.GroupSize != nil {
				updates["group_size"] = *body.GroupSize
			}
			if body.TeamMembers != nil {
				updates["team_members"] = types.TeamMemberList(*body.TeamMembers)
			}
			if body.CustomFieldData != nil {
				customData := types.JSONB{}
				for k, v := range *body.CustomFieldData {
					customData[k] = v
				}
				updates["custom_field_data"] = customData
			}
			db := db.GetDb()
			var reg models.Registration
			if err := db.First(&reg, "id = ?", params.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				log.Printf("Error retrieving Registration [%s]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if len(updates) > 0 {
				if err := db.Model(&reg).Updates(updates).Error; err != nil {
					log.Printf("Error updating Registration [%s]: %s\n", params.ID, err.Error())
					ctx.Status(http.StatusInternalServerError)
					return
				}
			}
			ctx.JSON(http.StatusOK, &reg)
		}).
		DELETE("/registrations/:id", func(ctx *gin.Context) {
			var params types.TicketURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := verifier.Delete(params.ID); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				log.Printf("Error deleting Registration [%s]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/generate-qr/:id", func(ctx *gin.Context) {
			var params types.TicketURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			reg, url, err := verifier.IssueTicket(params.ID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "registration not found"})
					return
				}
				if errors.Is(err, common.ErrConflict) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "QR code already generated for this registration"})
					return
				}
				log.Printf("Error issuing QR for [%s]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"registration": reg, "url": url})
		}).
		POST("/revoke-qr/:id", func(ctx *gin.Context) {
			var params types.TicketURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			reg, err := verifier.Revoke(params.ID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "registration not found"})
					return
				}
				log.Printf("Error revoking QR for [%s]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, reg)
		}).
		GET("/export", func(ctx *gin.Context) {
			var query types.ExportQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			tx := db.Order("created_at DESC")
			if query.FormID > 0 {
				tx = tx.Where("form_id = ?", query.FormID)
			}
			var regs []models.Registration
			if err := tx.Find(&regs).Error; err != nil {
				log.Printf("Error retrieving registrations for export: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			data, filename, contentType, err := common.Export(query.Format, regs)
			if err != nil {
				log.Printf("Error exporting registrations: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
			ctx.Data(http.StatusOK, contentType, data)
		})
	return g
}
