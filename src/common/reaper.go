package common

import (
	"log"

	"boxoffice/src/config"
	"boxoffice/src/lib"
)

// StartReaper registers the periodic expiry sweep and starts the scheduler.
// One timer drives all holds (no per-hold timers), so resource usage stays
// flat no matter how many holds are in flight.
func StartReaper() {
	interval := config.ReaperInterval()
	id, err := lib.CreateCronJob(func() {
		ReapExpired()
	}, interval)
	if err != nil {
		log.Printf("[reaper] Error scheduling sweep: %s\n", err.Error())
		return
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		return
	}
	sched.Start()
	log.Printf("[reaper] Sweep job %s running every %s\n", *id, interval)
}
