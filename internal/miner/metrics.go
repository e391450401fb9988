package miner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalSearches tracks discovery calls across both strategies.
	TotalSearches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteminer_searches_total",
		Help: "The total number of search calls issued.",
	})
	// TotalSearchFallbacks tracks how often the rendered-page search fallback ran.
	TotalSearchFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteminer_search_fallbacks_total",
		Help: "The total number of searches that fell back to the HTML strategy.",
	})
	// TotalPostsFetched tracks successfully extracted posts.
	TotalPostsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteminer_posts_fetched_total",
		Help: "The total number of posts successfully extracted.",
	})
	// TotalExtractFailures tracks queued items abandoned after retry exhaustion.
	TotalExtractFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteminer_extract_failures_total",
		Help: "The total number of queued posts abandoned after all attempts failed.",
	})
	// TotalCandidatesFiltered tracks fragments rejected by the classifier.
	TotalCandidatesFiltered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteminer_candidates_filtered_total",
		Help: "The total number of candidate fragments rejected by classification.",
	})
	// TotalRecordsSaved tracks records appended to the dataset sink.
	TotalRecordsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteminer_records_saved_total",
		Help: "The total number of output records persisted.",
	})
)
