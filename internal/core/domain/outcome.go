package domain

// SkipReason codes why an invoice was passed over without an attempt.
// Skips are expected conditions, not errors; each carries enough context
// for an operator to act on.
type SkipReason string

const (
	// ReasonConfigurationError means the seller has no short-name
	// mapping in the profile. Operator-actionable, never silent.
	ReasonConfigurationError SkipReason = "configuration_error"

	// ReasonMissingTrackingCode means retrieval cannot proceed because
	// the invoice has no tracking code yet.
	ReasonMissingTrackingCode SkipReason = "missing_tracking_code"

	// ReasonNoTaxProvider means the invoice's origin is unknown, so no
	// retriever can be resolved.
	ReasonNoTaxProvider SkipReason = "no_tax_provider"

	// ReasonNoRetriever means the tax provider has no registered
	// retriever variant.
	ReasonNoRetriever SkipReason = "no_retriever"
)

// OutcomeStatus is the result class of processing one invoice.
// Callers branch on this data instead of on error control flow.
type OutcomeStatus int

const (
	// OutcomeSucceeded means the document was retrieved and validated.
	OutcomeSucceeded OutcomeStatus = iota

	// OutcomeReconciled means the target artifact already existed and
	// the invoice was marked downloaded without any retrieval.
	OutcomeReconciled

	// OutcomeSkipped means the invoice was passed over with a reason.
	OutcomeSkipped

	// OutcomeFailed means retrieval was attempted and exhausted.
	OutcomeFailed
)

// String returns a stable label for logs.
func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeReconciled:
		return "reconciled"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// InvoiceOutcome records how one invoice fared during a download run.
type InvoiceOutcome struct {
	// Key identifies the invoice.
	Key InvoiceKey

	// Status is the result class.
	Status OutcomeStatus

	// Reason is set when Status is OutcomeSkipped.
	Reason SkipReason

	// Err is the failure description when Status is OutcomeFailed.
	Err string
}

// DownloadSummary aggregates one orchestrator run.
type DownloadSummary struct {
	// RunID correlates log lines with this run.
	RunID string

	// Succeeded counts validated retrievals.
	Succeeded int

	// Reconciled counts invoices marked downloaded because the artifact
	// was already present.
	Reconciled int

	// Skipped counts skips per reason.
	Skipped map[SkipReason]int

	// Failed counts exhausted retrieval attempts.
	Failed int

	// Outcomes lists the per-invoice detail in processing order.
	Outcomes []InvoiceOutcome
}

// NewDownloadSummary creates an empty summary for a run.
func NewDownloadSummary(runID string) *DownloadSummary {
	return &DownloadSummary{
		RunID:   runID,
		Skipped: make(map[SkipReason]int),
	}
}

// Add records one outcome and bumps the matching counter.
func (s *DownloadSummary) Add(o InvoiceOutcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Status {
	case OutcomeSucceeded:
		s.Succeeded++
	case OutcomeReconciled:
		s.Reconciled++
	case OutcomeSkipped:
		s.Skipped[o.Reason]++
	case OutcomeFailed:
		s.Failed++
	}
}

// SkippedTotal sums skips across all reasons.
func (s *DownloadSummary) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}
