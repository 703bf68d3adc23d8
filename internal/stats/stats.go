package stats

import (
	"encoding/json"
	"expvar"
	"net/http"
	"time"
)

type StatsProvider interface {
	Incr(name string)
	RegisterMetric(name string)
}

// StatsRecorder publishes named counters backed by expvar vars. The map is
// kept private and served by the recorder's own handler rather than being
// exported through expvar's global registry, so recorders can be created
// freely in tests.
type StatsRecorder struct {
	vars *expvar.Map
}

// NewStatsRecorder creates a recorder and mounts its JSON view on mux at
// /debug/vars.
func NewStatsRecorder(mux *http.ServeMux) *StatsRecorder {
	sr := &StatsRecorder{
		vars: new(expvar.Map).Init(),
	}
	mux.Handle("GET /debug/vars", http.HandlerFunc(sr.expvarHandler))

	startTime := time.Now()
	sr.vars.Set("UptimeMillis", expvar.Func(func() any {
		return time.Since(startTime).Milliseconds()
	}))

	return sr
}

func (sr *StatsRecorder) expvarHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	expvarData := make(map[string]any)
	sr.vars.Do(func(kv expvar.KeyValue) {
		var value any
		json.Unmarshal([]byte(kv.Value.String()), &value)
		expvarData[kv.Key] = value
	})

	json.NewEncoder(w).Encode(expvarData)
}

func (sr *StatsRecorder) RegisterMetric(name string) {
	sr.vars.Set(name, new(expvar.Int))
}

// Incr adds one to a registered counter. Counters must be registered first;
// incrementing an unknown name panics.
func (sr *StatsRecorder) Incr(name string) {
	metric := sr.vars.Get(name)
	if metric == nil {
		panic("metric not found: " + name)
	}

	metric.(*expvar.Int).Add(1)
}
