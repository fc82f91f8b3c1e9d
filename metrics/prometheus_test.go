package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestExporter_Gather(t *testing.T) {
	c := NewCollector()
	c.IncCommandSent("label")
	c.IncCommandSent("label")
	c.IncCommandSent("unload")
	c.IncTimeout()
	c.IncResponseRetry()

	reg := prometheus.NewRegistry()
	if err := reg.Register(NewExporter(c)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	values := make(map[string]float64)
	var byCode map[string]float64
	for _, mf := range families {
		if mf.GetName() == "amlctl_client_commands_by_code_total" {
			byCode = make(map[string]float64)
			for _, m := range mf.GetMetric() {
				for _, lp := range m.GetLabel() {
					if lp.GetName() == "command" {
						byCode[lp.GetValue()] = m.GetCounter().GetValue()
					}
				}
			}
			continue
		}
		if len(mf.GetMetric()) != 1 {
			t.Errorf("%s: %d samples, want 1", mf.GetName(), len(mf.GetMetric()))
			continue
		}
		values[mf.GetName()] = mf.GetMetric()[0].GetCounter().GetValue()
	}

	checks := map[string]float64{
		"amlctl_client_commands_sent_total":     3,
		"amlctl_client_timeouts_total":          1,
		"amlctl_client_completions_total":       0,
		"amlctl_daemon_response_retries_total":  1,
		"amlctl_daemon_responses_dropped_total": 0,
	}
	for name, want := range checks {
		got, ok := values[name]
		if !ok {
			t.Errorf("%s not gathered", name)
			continue
		}
		if got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
	if byCode["label"] != 2 || byCode["unload"] != 1 {
		t.Errorf("commands_by_code = %v", byCode)
	}
}

func TestExporter_NilCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewExporter(nil))
	if _, err := reg.Gather(); err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
}
