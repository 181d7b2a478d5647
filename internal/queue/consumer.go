// Package queue contains the background consumer that listens to the
// admission.evaluated queue and writes one log line per event.
package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "log"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartAdmissionConsumer connects to RabbitMQ at url, declares the
// admission.evaluated queue (durable) and consumes it forever.  Each message
// is appended to <logDir>/admission.log.  Dial failures back off
// exponentially up to 30s; a broken channel triggers a reconnect.
func StartAdmissionConsumer(url, logDir string) {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("admission-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(conn, logDir)
        _ = conn.Close()
        log.Printf("admission-consumer: consume loop ended: %v; reconnecting", err)
        time.Sleep(2 * time.Second)
    }
}

func consumeLoop(conn *amqp.Connection, logDir string) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("admission-consumer: set QoS failed: %v", err)
    }

    _, err = ch.QueueDeclare(AdmissionQueueName, true, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(AdmissionQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := handleMessage(d.Body, logDir); err != nil {
            log.Printf("admission-consumer: handle message failed: %v", err)
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, logDir string) error {
    var ev AdmissionEvaluatedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll(logDir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(logDir, "admission.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if err := writeLine(f, ev); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func writeLine(w io.Writer, ev AdmissionEvaluatedEvent) error {
    verdict := "admitted"
    switch {
    case !ev.Valid:
        verdict = "invalid"
    case !ev.Admitted:
        verdict = "rejected"
    }
    seats := fmt.Sprintf("[%s]", strings.Join(ev.Seats, ","))
    // Output may span several lines; keep the log one line per event.
    output := strings.ReplaceAll(ev.Output, "\n", " | ")

    _, err := fmt.Fprintf(w, "[%s] Admission %s | check_id=%d | tickets=%d | rejected=%d | locale=%s | seats=%s | output=%q\n",
        ev.EvaluatedAt, verdict, ev.CheckID, ev.TicketCount, ev.RejectedCount, ev.Locale, seats, output)
    return err
}
