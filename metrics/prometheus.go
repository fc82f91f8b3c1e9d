package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "amlctl"

type counterDesc struct {
	desc  *prometheus.Desc
	value func(Snapshot) int64
}

func newCounter(subsystem, name, help string, value func(Snapshot) int64) counterDesc {
	return counterDesc{
		desc:  prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, nil),
		value: value,
	}
}

// Exporter exposes a Collector's counters to Prometheus. Values are read
// from a fresh Snapshot on every scrape.
type Exporter struct {
	source   *Collector
	counters []counterDesc
	byCode   *prometheus.Desc
}

// NewExporter wraps c for registration with a prometheus.Registerer.
func NewExporter(c *Collector) *Exporter {
	return &Exporter{
		source: c,
		counters: []counterDesc{
			newCounter("client", "commands_sent_total", "Commands written to the command pipe.", func(s Snapshot) int64 { return s.CommandsSent }),
			newCounter("client", "send_failures_total", "Command pipe opens or writes that failed.", func(s Snapshot) int64 { return s.SendFailures }),
			newCounter("client", "channels_created_total", "Response channels created.", func(s Snapshot) int64 { return s.ChannelsCreated }),
			newCounter("client", "channel_failures_total", "Response channels that could not be created.", func(s Snapshot) int64 { return s.ChannelFailures }),
			newCounter("client", "channels_removed_total", "Response channels removed.", func(s Snapshot) int64 { return s.ChannelsRemoved }),
			newCounter("client", "completions_total", "Completions with code 0.", func(s Snapshot) int64 { return s.Completions }),
			newCounter("client", "domain_failures_total", "Completions with a positive code.", func(s Snapshot) int64 { return s.DomainFailures }),
			newCounter("client", "bad_completions_total", "Completions with a negative code.", func(s Snapshot) int64 { return s.BadCompletions }),
			newCounter("client", "timeouts_total", "Bounded waits that expired.", func(s Snapshot) int64 { return s.Timeouts }),
			newCounter("client", "interrupts_total", "Waits cancelled by the caller.", func(s Snapshot) int64 { return s.Interrupts }),
			newCounter("client", "no_responses_total", "Waits that ended without a readable completion.", func(s Snapshot) int64 { return s.NoResponses }),
			newCounter("daemon", "commands_received_total", "Valid commands read from the command pipe.", func(s Snapshot) int64 { return s.CommandsReceived }),
			newCounter("daemon", "bad_records_total", "Records rejected by the magic check.", func(s Snapshot) int64 { return s.BadRecords }),
			newCounter("daemon", "responses_delivered_total", "Completions written to a response channel.", func(s Snapshot) int64 { return s.ResponsesDelivered }),
			newCounter("daemon", "response_retries_total", "Response channel opens retried for lack of a reader.", func(s Snapshot) int64 { return s.ResponseRetries }),
			newCounter("daemon", "responses_dropped_total", "Completions that could not be delivered.", func(s Snapshot) int64 { return s.ResponsesDropped }),
		},
		byCode: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "client", "commands_by_code_total"),
			"Commands written to the command pipe, by command.",
			[]string{"command"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range e.counters {
		ch <- c.desc
	}
	ch <- e.byCode
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	s := e.source.Snapshot()
	for _, c := range e.counters {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.CounterValue, float64(c.value(s)))
	}
	for code, n := range s.CommandsByCode {
		ch <- prometheus.MustNewConstMetric(e.byCode, prometheus.CounterValue, float64(n), code)
	}
}

var _ prometheus.Collector = (*Exporter)(nil)
