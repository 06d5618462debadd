package metrics

// ObserveAction counts one dispatched action. found=false covers both
// "no such record" and "not the owner".
func ObserveAction(surface, action string, found bool) {
	outcome := "hit"
	if !found {
		outcome = "miss"
	}
	dnsActions.WithLabelValues(surface, action, outcome).Inc()
}

// SetRecords publishes the current record count.
func SetRecords(n int) { dnsRecords.Set(float64(n)) }

// EventDropped counts one event lost to a full queue.
func EventDropped() { dnsEventsDropped.Inc() }
