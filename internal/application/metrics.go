package application

import "expvar"

// Counters published under "jobify" on /debug/vars.
var (
	metrics = expvar.NewMap("jobify")

	usersRegistered = new(expvar.Int)
	loginsSucceeded = new(expvar.Int)
	jobsCreated     = new(expvar.Int)
	jobsUpdated     = new(expvar.Int)
	jobsDeleted     = new(expvar.Int)
	imagesReaped    = new(expvar.Int)
)

func init() {
	metrics.Set("users_registered", usersRegistered)
	metrics.Set("logins_succeeded", loginsSucceeded)
	metrics.Set("jobs_created", jobsCreated)
	metrics.Set("jobs_updated", jobsUpdated)
	metrics.Set("jobs_deleted", jobsDeleted)
	metrics.Set("images_reaped", imagesReaped)
}
