package models

// Table names used by the persistence layer.
const (
	TablePrograms      = "programs"
	TableEvents        = "events"
	TableReports       = "reports"
	TableVens          = "vens"
	TableResources     = "resources"
	TableSubscriptions = "subscriptions"
)
