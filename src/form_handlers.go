package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"ers/src/common"
	"ers/src/db"
	"ers/src/lib"
	"ers/src/models"
	"ers/src/types"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func formHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/forms", func(ctx *gin.Context) {
			var forms []models.EventForm
			db := db.GetDb()
			if err := db.Order("created_at DESC").Find(&forms).Error; err != nil {
				log.Printf("Error retrieving forms: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, &forms)
		}).
		POST("/forms", func(ctx *gin.Context) {
			var body types.CreateFormRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error in validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if errs := common.ValidateFormConfig(body.CustomFields); errs != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"errors": errs})
				return
			}
			baseFields := types.DefaultBaseFields()
			if body.BaseFields != nil {
				baseFields = *body.BaseFields
			}
			scanPolicy := body.ScanPolicy
			if scanPolicy == "" {
				scanPolicy = types.SCAN_POLICY_PER_MEMBER
			}
			form := models.EventForm{
				Title:          body.Title,
				Slug:           slug.Make(body.Title),
				BannerURL:      body.BannerURL,
				CustomLinks:    body.CustomLinks,
				CustomFields:   types.CustomFieldList(body.CustomFields),
				BaseFields:     baseFields,
				ScanPolicy:     scanPolicy,
				SuccessTitle:   body.SuccessTitle,
				SuccessMessage: body.SuccessMessage,
			}
			db := db.GetDb()
			if err := db.Create(&form).Error; err != nil {
				log.Printf("Error creating EventForm: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if body.Publish {
				if err := publishForm(db, form.ID); err != nil {
					log.Printf("Error publishing EventForm [%d]: %s\n", form.ID, err.Error())
				} else {
					form.IsPublished = true
				}
			}
			ctx.JSON(http.StatusCreated, &form)
		}).
		GET("/forms/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var form models.EventForm
			db := db.GetDb()
			if err := db.First(&form, "id = ?", params.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				log.Printf("Error retrieving EventForm [%d]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, &form)
		}).
		PUT("/forms/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CreateFormRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error in validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if errs := common.ValidateFormConfig(body.CustomFields); errs != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"errors": errs})
				return
			}
			db := db.GetDb()
			var form models.EventForm
			if err := db.First(&form, "id = ?", params.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				log.Printf("Error retrieving EventForm [%d]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			updates := map[string]any{
				"title":           body.Title,
				"slug":            slug.Make(body.Title),
				"banner_url":      body.BannerURL,
				"custom_links":    body.CustomLinks,
				"custom_fields":   types.CustomFieldList(body.CustomFields),
				"success_title":   body.SuccessTitle,
				"success_message": body.SuccessMessage,
			}
			if body.BaseFields != nil {
				updates["base_fields"] = *body.BaseFields
			}
			if body.ScanPolicy != "" {
				updates["scan_policy"] = body.ScanPolicy
			}
			if err := db.Model(&form).Updates(updates).Error; err != nil {
				log.Printf("Error updating EventForm [%d]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if form.IsPublished {
				lib.InvalidatePublishedForm()
			}
			ctx.JSON(http.StatusOK, &form)
		}).
		DELETE("/forms/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			del := db.Delete(&models.EventForm{}, "id = ?", params.ID)
			if del.Error != nil {
				log.Printf("Error deleting EventForm [%d]: %s\n", params.ID, del.Error.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if del.RowsAffected == 0 {
				ctx.Status(http.StatusNotFound)
				return
			}
			lib.InvalidatePublishedForm()
			ctx.Status(http.StatusNoContent)
		}).
		POST("/forms/:id/publish", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			if err := publishForm(db, params.ID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				log.Printf("Error publishing EventForm [%d]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			var form models.EventForm
			if err := db.First(&form, "id = ?", params.ID).Error; err != nil {
				log.Printf("Error retrieving EventForm [%d]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			go lib.CachePublishedForm(&form)
			ctx.JSON(http.StatusOK, &form)
		}).
		GET("/forms/:id/stats", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var form models.EventForm
			if err := db.First(&form, "id = ?", params.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				log.Printf("Error retrieving EventForm [%d]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			stats, err := formStats(db, params.ID)
			if err != nil {
				log.Printf("Error computing stats for EventForm [%d]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, stats)
		}).
		GET("/forms/:id/export", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var query types.ExportQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var regs []models.Registration
			if err := db.Where("form_id = ?", params.ID).Order("created_at DESC").Find(&regs).Error; err != nil {
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

// publishForm enforces the single-published-form invariant: everything else
// is unpublished in the same transaction that publishes the target.
func publishForm(db *gorm.DB, id uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.EventForm{}).
			Where("is_published = ?", true).
			Update("is_published", false).Error; err != nil {
			return err
		}
		up := tx.Model(&models.EventForm{}).
			Where("id = ?", id).
			Update("is_published", true)
		if up.Error != nil {
			return up.Error
		}
		if up.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	lib.InvalidatePublishedForm()
	return nil
}

func formStats(db *gorm.DB, formID uint) (*types.FormStats, error) {
	var stats types.FormStats
	base := func() *gorm.DB {
		return db.Model(&models.Registration{}).Where("form_id = ?", formID)
	}
	if err := base().Count(&stats.TotalRegistrations).Error; err != nil {
		return nil, err
	}
	if err := base().Where("has_qr = ?", true).Count(&stats.QRIssued).Error; err != nil {
		return nil, err
	}
	if err := base().Where("scans > 0").Count(&stats.CheckedIn).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", types.REGISTRATION_EXHAUSTED).Count(&stats.Exhausted).Error; err != nil {
		return nil, err
	}
	var totalScans int64
	if err := base().Select("COALESCE(SUM(scans), 0)").Scan(&totalScans).Error; err != nil {
		return nil, err
	}
	stats.TotalScans = totalScans
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := base().Where("created_at >= ?", midnight).Count(&stats.RegistrationsToday).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
