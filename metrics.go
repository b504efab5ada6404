package taskflow

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterMetrics registers gauge and counter collectors for the system's
// statistics with the given registerer, typically prometheus.DefaultRegisterer.
func RegisterMetrics(reg prometheus.Registerer, s *TaskSystem) error {
	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "taskflow_running_workers",
				Help: "Number of running worker goroutines",
			},
			func() float64 {
				return float64(s.RunningWorkers())
			}),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "taskflow_waiting_tasks",
				Help: "Number of tasks currently sitting in queues",
			},
			func() float64 {
				return float64(s.WaitingTasks())
			}),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "taskflow_submitted_tasks_total",
				Help: "Total number of tasks submitted to the system",
			},
			func() float64 {
				return float64(s.SubmittedTasks())
			}),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "taskflow_successful_tasks_total",
				Help: "Total number of tasks completed without error",
			},
			func() float64 {
				return float64(s.SuccessfulTasks())
			}),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "taskflow_failed_tasks_total",
				Help: "Total number of tasks completed with a failure",
			},
			func() float64 {
				return float64(s.FailedTasks())
			}),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "taskflow_stolen_tasks_total",
				Help: "Total number of tasks popped from a non-home queue",
			},
			func() float64 {
				return float64(s.StolenTasks())
			}),
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
