package engine

import "github.com/prometheus/client_golang/prometheus"

// Operation label values for the resolutions counter.
const (
	opResolveZoo        = "resolve_zoo"
	opResolveAnimal     = "resolve_animal"
	opResolveZooAnimals = "resolve_zoo_animals"
	opInsertZoo         = "insert_zoo"
	opInsertLion        = "insert_lion"
	opInsertShark       = "insert_shark"
)

// Metrics counts engine operations.
type Metrics struct {
	// Operations counts every engine call by operation name.
	Operations *prometheus.CounterVec
	// AnimalJoins counts GetAnimalsByZoo calls issued by the Zoo.animals
	// resolver.
	AnimalJoins prometheus.Counter
}

// NewMetrics builds the counters and registers them on reg when reg is not
// nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "menagerie",
			Name:      "operations_total",
			Help:      "Engine operations by name.",
		}, []string{"operation"}),
		AnimalJoins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "menagerie",
			Name:      "animal_joins_total",
			Help:      "Zoo to animal joins performed by the Zoo.animals resolver.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Operations, m.AnimalJoins)
	}
	return m
}

func (m *Metrics) observe(op string) {
	m.Operations.WithLabelValues(op).Inc()
}
