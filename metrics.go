package castsweep

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var mutationsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "castsweep_mutations_total",
	Help: "total follow/unfollow mutations by direction and status",
}, []string{"direction", "status"})

var recordsWritten = promauto.NewCounter(prometheus.CounterOpts{
	Name: "castsweep_records_written_total",
	Help: "total unfollow records appended to the run csv",
})
