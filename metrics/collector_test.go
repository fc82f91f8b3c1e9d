package metrics

import (
	"sync"
	"testing"
)

func TestCollector_IncrementMethods(t *testing.T) {
	c := NewCollector()

	c.IncCommandSent("label")
	c.IncCommandSent("label")
	c.IncCommandSent("unload")
	c.IncSendFailure()
	c.IncChannelCreated()
	c.IncChannelCreated()
	c.IncChannelFailure()
	c.IncChannelRemoved()
	c.IncCompletion()
	c.IncDomainFailure()
	c.IncDomainFailure()
	c.IncBadCompletion()
	c.IncTimeout()
	c.IncInterrupt()
	c.IncNoResponse()
	c.IncCommandReceived()
	c.IncBadRecord()
	c.IncResponseDelivered()
	c.IncResponseRetry()
	c.IncResponseRetry()
	c.IncResponseDropped()

	s := c.Snapshot()

	checks := []struct {
		name string
		got  int64
		want int64
	}{
		{"CommandsSent", s.CommandsSent, 3},
		{"SendFailures", s.SendFailures, 1},
		{"ChannelsCreated", s.ChannelsCreated, 2},
		{"ChannelFailures", s.ChannelFailures, 1},
		{"ChannelsRemoved", s.ChannelsRemoved, 1},
		{"Completions", s.Completions, 1},
		{"DomainFailures", s.DomainFailures, 2},
		{"BadCompletions", s.BadCompletions, 1},
		{"Timeouts", s.Timeouts, 1},
		{"Interrupts", s.Interrupts, 1},
		{"NoResponses", s.NoResponses, 1},
		{"CommandsReceived", s.CommandsReceived, 1},
		{"BadRecords", s.BadRecords, 1},
		{"ResponsesDelivered", s.ResponsesDelivered, 1},
		{"ResponseRetries", s.ResponseRetries, 2},
		{"ResponsesDropped", s.ResponsesDropped, 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}

	if s.CommandsByCode["label"] != 2 || s.CommandsByCode["unload"] != 1 {
		t.Errorf("CommandsByCode = %v", s.CommandsByCode)
	}
}

func TestCollector_SnapshotIsCopy(t *testing.T) {
	c := NewCollector()
	c.IncCommandSent("audit")

	s := c.Snapshot()
	c.IncCommandSent("audit")

	if s.CommandsByCode["audit"] != 1 {
		t.Errorf("snapshot mutated: %v", s.CommandsByCode)
	}
	if c.Snapshot().CommandsByCode["audit"] != 2 {
		t.Error("collector did not keep counting after snapshot")
	}
}

func TestCollector_NilReceiverSafe(t *testing.T) {
	var c *Collector

	c.IncCommandSent("label")
	c.IncSendFailure()
	c.IncCompletion()
	c.IncTimeout()
	c.IncResponseDropped()

	s := c.Snapshot()
	if s.CommandsSent != 0 || s.CommandsByCode != nil {
		t.Errorf("nil collector snapshot = %+v", s)
	}
}

func TestCollector_ConcurrentSafety(t *testing.T) {
	c := NewCollector()
	const goroutines = 50
	const iterations = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			for range iterations {
				c.IncCommandSent("mount")
				c.IncCompletion()
				c.IncResponseRetry()
				_ = c.Snapshot()
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	want := int64(goroutines * iterations)
	if s.CommandsSent != want {
		t.Errorf("CommandsSent = %d, want %d", s.CommandsSent, want)
	}
	if s.Completions != want {
		t.Errorf("Completions = %d, want %d", s.Completions, want)
	}
	if s.ResponseRetries != want {
		t.Errorf("ResponseRetries = %d, want %d", s.ResponseRetries, want)
	}
	if s.CommandsByCode["mount"] != want {
		t.Errorf("CommandsByCode[mount] = %d, want %d", s.CommandsByCode["mount"], want)
	}
}
