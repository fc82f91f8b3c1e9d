// Package metrics provides per-process counters for command dispatch and
// completion delivery.
//
// The Collector is a leaf package with no internal dependencies. Client-side
// counters are recorded by the dispatcher; the responder records the
// response-write counters. Exporter and NewHandler expose the same
// counters to Prometheus.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Client side
	CommandsSent       int64            `json:"commands_sent" yaml:"commands_sent"`
	CommandsByCode     map[string]int64 `json:"commands_by_code" yaml:"commands_by_code"`
	SendFailures       int64            `json:"send_failures" yaml:"send_failures"`
	ChannelsCreated    int64            `json:"channels_created" yaml:"channels_created"`
	ChannelFailures    int64            `json:"channel_failures" yaml:"channel_failures"`
	ChannelsRemoved    int64            `json:"channels_removed" yaml:"channels_removed"`
	Completions        int64            `json:"completions" yaml:"completions"`
	DomainFailures     int64            `json:"domain_failures" yaml:"domain_failures"`
	BadCompletions     int64            `json:"bad_completions" yaml:"bad_completions"`
	Timeouts           int64            `json:"timeouts" yaml:"timeouts"`
	Interrupts         int64            `json:"interrupts" yaml:"interrupts"`
	NoResponses        int64            `json:"no_responses" yaml:"no_responses"`

	// Daemon side
	CommandsReceived   int64 `json:"commands_received" yaml:"commands_received"`
	BadRecords         int64 `json:"bad_records" yaml:"bad_records"`
	ResponsesDelivered int64 `json:"responses_delivered" yaml:"responses_delivered"`
	ResponseRetries    int64 `json:"response_retries" yaml:"response_retries"`
	ResponsesDropped   int64 `json:"responses_dropped" yaml:"responses_dropped"`
}

// Collector accumulates counters for one process.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	commandsSent    int64
	commandsByCode  map[string]int64
	sendFailures    int64
	channelsCreated int64
	channelFailures int64
	channelsRemoved int64
	completions     int64
	domainFailures  int64
	badCompletions  int64
	timeouts        int64
	interrupts      int64
	noResponses     int64

	commandsReceived   int64
	badRecords         int64
	responsesDelivered int64
	responseRetries    int64
	responsesDropped   int64
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		commandsByCode: make(map[string]int64),
	}
}

func (c *Collector) add(counter *int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	*counter++
	c.mu.Unlock()
}

// --- Client side ---

// IncCommandSent records a command written to the command channel.
func (c *Collector) IncCommandSent(code string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.commandsSent++
	c.commandsByCode[code]++
	c.mu.Unlock()
}

// IncSendFailure records a failed command channel open or write.
func (c *Collector) IncSendFailure() {
	if c == nil {
		return
	}
	c.add(&c.sendFailures)
}

// IncChannelCreated records a response channel created.
func (c *Collector) IncChannelCreated() {
	if c == nil {
		return
	}
	c.add(&c.channelsCreated)
}

// IncChannelFailure records a response channel that could not be created.
func (c *Collector) IncChannelFailure() {
	if c == nil {
		return
	}
	c.add(&c.channelFailures)
}

// IncChannelRemoved records a response channel removed.
func (c *Collector) IncChannelRemoved() {
	if c == nil {
		return
	}
	c.add(&c.channelsRemoved)
}

// IncCompletion records a successful completion (code 0).
func (c *Collector) IncCompletion() {
	if c == nil {
		return
	}
	c.add(&c.completions)
}

// IncDomainFailure records a completion with a positive code.
func (c *Collector) IncDomainFailure() {
	if c == nil {
		return
	}
	c.add(&c.domainFailures)
}

// IncBadCompletion records a completion with a negative code.
func (c *Collector) IncBadCompletion() {
	if c == nil {
		return
	}
	c.add(&c.badCompletions)
}

// IncTimeout records a bounded wait that expired.
func (c *Collector) IncTimeout() {
	if c == nil {
		return
	}
	c.add(&c.timeouts)
}

// IncInterrupt records a wait cancelled by the caller.
func (c *Collector) IncInterrupt() {
	if c == nil {
		return
	}
	c.add(&c.interrupts)
}

// IncNoResponse records a wait that ended without a readable completion.
func (c *Collector) IncNoResponse() {
	if c == nil {
		return
	}
	c.add(&c.noResponses)
}

// --- Daemon side ---

// IncCommandReceived records a valid command read from the command channel.
func (c *Collector) IncCommandReceived() {
	if c == nil {
		return
	}
	c.add(&c.commandsReceived)
}

// IncBadRecord records a record rejected by the magic check.
func (c *Collector) IncBadRecord() {
	if c == nil {
		return
	}
	c.add(&c.badRecords)
}

// IncResponseDelivered records a completion written to a response channel.
func (c *Collector) IncResponseDelivered() {
	if c == nil {
		return
	}
	c.add(&c.responsesDelivered)
}

// IncResponseRetry records a response channel open retried for lack of a reader.
func (c *Collector) IncResponseRetry() {
	if c == nil {
		return
	}
	c.add(&c.responseRetries)
}

// IncResponseDropped records a completion that could not be delivered.
func (c *Collector) IncResponseDropped() {
	if c == nil {
		return
	}
	c.add(&c.responsesDropped)
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all counters.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	byCode := make(map[string]int64, len(c.commandsByCode))
	for k, v := range c.commandsByCode {
		byCode[k] = v
	}

	return Snapshot{
		CommandsSent:    c.commandsSent,
		CommandsByCode:  byCode,
		SendFailures:    c.sendFailures,
		ChannelsCreated: c.channelsCreated,
		ChannelFailures: c.channelFailures,
		ChannelsRemoved: c.channelsRemoved,
		Completions:     c.completions,
		DomainFailures:  c.domainFailures,
		BadCompletions:  c.badCompletions,
		Timeouts:        c.timeouts,
		Interrupts:      c.interrupts,
		NoResponses:     c.noResponses,

		CommandsReceived:   c.commandsReceived,
		BadRecords:         c.badRecords,
		ResponsesDelivered: c.responsesDelivered,
		ResponseRetries:    c.responseRetries,
		ResponsesDropped:   c.responsesDropped,
	}
}
