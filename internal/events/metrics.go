package events

import "expvar"

var (
	metricEventsQueuedTotal       = expvar.NewInt("events_queued_total")
	metricEventsDroppedTotal      = expvar.NewInt("events_dropped_total")
	metricEventsPublishedTotal    = expvar.NewInt("events_published_total")
	metricEventsFailedTotal       = expvar.NewInt("events_failed_total")
	metricEventsRetryTotal        = expvar.NewInt("events_retry_total")
	metricEventsRetryDroppedTotal = expvar.NewInt("events_retry_dropped_total")
	metricEventsQueueLen          = expvar.NewInt("events_queue_len")
)
