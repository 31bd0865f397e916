package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// FetchTotal counts remote download outcomes: success, unavailable, error.
	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "luma",
			Name:      "fetch_total",
			Help:      "Remote asset fetch outcomes",
		},
		[]string{"outcome"},
	)

	// IngestTotal counts record ingestion outcomes: ok, error.
	IngestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "luma",
			Name:      "ingest_records_total",
			Help:      "Record ingestion outcomes",
		},
		[]string{"outcome"},
	)

	// ThumbnailTotal counts thumbnail derivation outcomes: ok, failed.
	ThumbnailTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "luma",
			Name:      "thumbnails_total",
			Help:      "Thumbnail derivation outcomes",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(FetchTotal)
	prometheus.MustRegister(IngestTotal)
	prometheus.MustRegister(ThumbnailTotal)
}
