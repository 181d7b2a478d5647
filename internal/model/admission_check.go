package model

import "time"

// AdmissionCheck is the audit record of one evaluated batch.  It
// corresponds to a row in the `admission_checks` table.
//
// Fields:
//  ID            – primary key identifier.
//  Input         – raw request text as received.
//  Output        – rendered result (prices, reasons or the invalid token).
//  Valid         – false when the batch failed to parse.
//  Admitted      – true when every ticket passed.
//  TicketCount   – number of parsed tickets (0 when invalid).
//  RejectedCount – number of tickets with at least one reason.
//  Locale        – catalog used to render Output.
//  CreatedAt     – evaluation timestamp.
type AdmissionCheck struct {
    ID            uint64    `json:"id"`             // admission_checks.id
    Input         string    `json:"input"`          // admission_checks.input_text
    Output        string    `json:"output"`         // admission_checks.output_text
    Valid         bool      `json:"valid"`          // admission_checks.valid
    Admitted      bool      `json:"admitted"`       // admission_checks.admitted
    TicketCount   uint32    `json:"ticket_count"`   // admission_checks.ticket_count
    RejectedCount uint32    `json:"rejected_count"` // admission_checks.rejected_count
    Locale        string    `json:"locale"`         // admission_checks.locale
    CreatedAt     time.Time `json:"created_at"`     // admission_checks.created_at
}
