package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"ride-pool/internal/carpool/domain"
	"ride-pool/pkg/rabbitmq"
)

// AMQPReportSink implements domain.ReportSink: append-only moderation
// records published to the carpool exchange, consumed by the out-of-band
// review workflow. The service never reads this queue.
type AMQPReportSink struct {
	conn *rabbitmq.Connection
}

func NewAMQPReportSink(conn *rabbitmq.Connection) *AMQPReportSink {
	return &AMQPReportSink{conn: conn}
}

// Append publishes a report record. Callers treat failures as best-effort:
// they log and move on.
func (s *AMQPReportSink) Append(ctx context.Context, report domain.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	routingKey := "report." + report.Kind
	if err := s.conn.Publish(ctx, routingKey, body); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	return nil
}
