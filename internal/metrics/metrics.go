// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Dispatch holds counters for campaign dispatch outcomes.
type Dispatch struct {
	Sent               prometheus.Counter
	Failed             prometheus.Counter
	Skipped            prometheus.Counter
	CampaignsCompleted prometheus.Counter
}

func NewDispatch(reg prometheus.Registerer) *Dispatch {
	d := &Dispatch{
		Sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_recipients_sent_total",
			Help: "Campaign recipients successfully sent.",
		}),
		Failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_recipients_failed_total",
			Help: "Campaign recipients that ended in failed status.",
		}),
		Skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_recipients_skipped_total",
			Help: "Campaign recipients skipped due to opt-out.",
		}),
		CampaignsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_campaigns_completed_total",
			Help: "Campaigns driven to completed status.",
		}),
	}
	if reg != nil {
		reg.MustRegister(d.Sent, d.Failed, d.Skipped, d.CampaignsCompleted)
	}
	return d
}

// NewDispatchNop returns unregistered counters, handy in tests.
func NewDispatchNop() *Dispatch {
	return NewDispatch(nil)
}
