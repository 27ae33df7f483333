package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lucky_sessions_active",
			Help: "Rooms currently held by the hub, by phase",
		},
		[]string{"phase"},
	)
	SessionsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lucky_sessions_finished_total",
			Help: "Sessions that reached the finished phase",
		},
		[]string{"variant", "reason"},
	)
	Actions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lucky_actions_total",
			Help: "Player actions applied to sessions, by result code",
		},
		[]string{"action", "result"},
	)
	TimerExpiries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lucky_timer_expiries_total",
			Help: "Turn timer expiries applied to sessions",
		},
		[]string{"kind"},
	)
	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lucky_matchmaking_queue_depth",
			Help: "Tickets waiting in matchmaking, by buy-in tier",
		},
		[]string{"tier"},
	)
	MatchesFormed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lucky_matches_formed_total",
			Help: "Matchmaking groups handed to the hub",
		},
		[]string{"tier"},
	)
	DroppedMessages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lucky_ws_dropped_messages_total",
			Help: "Outbound messages dropped because a client buffer was full",
		},
	)
	InvariantViolations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lucky_invariant_violations_total",
			Help: "Committed transitions that failed the money conservation check",
		},
	)
	Settlements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lucky_settlements_total",
			Help: "Finished sessions handed to the external ledger",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(SessionsFinished)
	prometheus.MustRegister(Actions)
	prometheus.MustRegister(TimerExpiries)
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(MatchesFormed)
	prometheus.MustRegister(DroppedMessages)
	prometheus.MustRegister(InvariantViolations)
	prometheus.MustRegister(Settlements)
}
