// Package queue defines message payloads exchanged over the message broker.
package queue

// AdmissionQueueName is the durable queue carrying AdmissionEvaluatedEvent.
const AdmissionQueueName = "admission.evaluated"

// AdmissionEvaluatedEvent is published after every evaluated batch.  It
// carries enough information for downstream consumers to log or trigger
// analytics without querying the audit database.
type AdmissionEvaluatedEvent struct {
    CheckID       uint64   `json:"check_id,omitempty"` // 0 when persistence is disabled
    Valid         bool     `json:"valid"`
    Admitted      bool     `json:"admitted"`
    TicketCount   int      `json:"ticket_count"`
    RejectedCount int      `json:"rejected_count"`
    Seats         []string `json:"seats"`
    Locale        string   `json:"locale"`
    Output        string   `json:"output"`
    EvaluatedAt   string   `json:"evaluated_at"`
}
