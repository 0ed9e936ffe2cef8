package metrics

// Ingestion

// RecordEventIngested counts an event accepted onto the queue.
func RecordEventIngested() { globalManager.eventsIngested.Inc() }

// RecordEventProcessed counts an event stored by a worker.
func RecordEventProcessed() { globalManager.eventsProcessed.Inc() }

// RecordEventDuplicate counts an event dropped as a duplicate.
func RecordEventDuplicate() { globalManager.eventsDuplicate.Inc() }

// RecordEventRejected counts a validation rejection.
func RecordEventRejected(reason string) {
	globalManager.eventsRejected.WithLabelValues(reason).Inc()
}

// Scoring and reports

// RecordCompositeComputation observes one composite computation.
func RecordCompositeComputation(latencyMs float64) { globalManager.compositeLatency.Observe(latencyMs) }

// RecordCompositeBoard observes one composite board and its size.
func RecordCompositeBoard(latencyMs float64, staff int) {
	globalManager.boardLatency.Observe(latencyMs)
	globalManager.boardStaff.Set(float64(staff))
}

// RecordAttendanceSummary counts a month-over-month attendance summary.
func RecordAttendanceSummary() { globalManager.attendanceReports.Inc() }

// RecordLeaderboardQuery counts a leaderboard query.
func RecordLeaderboardQuery(metric string) {
	globalManager.leaderboardQuery.WithLabelValues(metric).Inc()
}

// Repository

// UpdateRepositoryRecordsTotal sets the number of stored score events.
func UpdateRepositoryRecordsTotal(count int) { globalManager.repositoryRecords.Set(float64(count)) }

// RecordRepositoryUpdateLatency observes a repository write.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateMillis.Observe(latencyMs)
}

// RecordRepositoryQueryLatency observes a repository read.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryMillis.Observe(latencyMs)
}

// Queue

// UpdateQueueSize sets the queue backlog.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueue counts an enqueue.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueRejected counts a refused enqueue.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// Workers

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) { globalManager.workerActive.Set(float64(count)) }

// UpdateWorkerMessagesPerSecond sets the worker throughput.
func UpdateWorkerMessagesPerSecond(rate float64) { globalManager.workerRate.Set(rate) }

// RecordWorkerProcessingLatency observes per-event worker latency.
func RecordWorkerProcessingLatency(latencyMs float64) { globalManager.workerLatency.Observe(latencyMs) }

// RecordWorkerError counts a worker storage failure.
func RecordWorkerError() { globalManager.workerErrorCount.Inc() }

// HTTP

// RecordHTTPRequest counts a request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint counts an HTTP error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent counts an error raised by a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System

// UpdateSystemMemoryUsage sets heap bytes allocated.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemory.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutines.Set(float64(count)) }

// RecordSystemGCPauseTime observes an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPause.Observe(pauseMs) }
