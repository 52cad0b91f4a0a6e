package filesystem

// Observer records filesystem operation metrics. The implementation lives in
// the metrics package so that filesystem does not import it.
type Observer interface {
	// ObserveOperation records duration and error status for an operation.
	// volume is the resolved label ("raw", "output"), operation is "stat"
	// or "readdir".
	ObserveOperation(volume, operation string, durationSeconds float64, err error)

	ObserveRetryAttempt(retryOp, volume string)
	ObserveRetrySuccess(retryOp, volume string)
	ObserveRetryFailure(retryOp, volume string)
	ObserveRetryDuration(retryOp, volume string, durationSeconds float64)
	ObserveStaleError(retryOp, volume string)
}

// defaultObserver is nil until SetObserver is called; recording is skipped
// while it is unset.
var defaultObserver Observer

// SetObserver sets the package-level metrics observer.
func SetObserver(o Observer) {
	defaultObserver = o
}

func observe() Observer {
	return defaultObserver
}
