package boot

import (
	"log"
	"time"

	"ers/src/db"
	"ers/src/lib"
	"ers/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.EventForm{},
		&models.Registration{},
		&models.ScanHistory{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	jid, err := lib.CreateDailyJob(SnapshotStats, 0, 5)
	if err != nil {
		log.Printf("Error running job: %s\n", err.Error())
		return
	}
	jobsWaitingInQueue := len(sched.Jobs())
	log.Println("Jobs in queue:", jobsWaitingInQueue)
	log.Printf("Job ID: %s\n", *jid)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

// SnapshotStats logs a daily roll-up of registration and entry activity.
func SnapshotStats() {
	db := db.GetDb()
	if db == nil {
		return
	}
	since := time.Now().Add(-24 * time.Hour)
	var registered, scanned int64
	if err := db.Model(&models.Registration{}).Where("created_at >= ?", since).Count(&registered).Error; err != nil {
		log.Printf("Error counting registrations: %s\n", err.Error())
		return
	}
	if err := db.Model(&models.ScanHistory{}).Where("scanned_at >= ? AND valid = ?", since, true).Count(&scanned).Error; err != nil {
		log.Printf("Error counting scans: %s\n", err.Error())
		return
	}
	log.Printf("Last 24h: %d registrations, %d entries\n", registered, scanned)
}
