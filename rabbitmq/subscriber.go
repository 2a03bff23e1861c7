// Package rabbitmq consumes upload-ingested events and triggers rules
// runs for the announced uploads. The subscriber reconnects on channel
// loss; message handling is at-least-once, which is safe because runs
// are append-only and dashboard reads only consume the latest
// successful one.
package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/apex/log"
	"github.com/streadway/amqp"

	"defect-classify-pipeline/config"
	"defect-classify-pipeline/metrics"
	"defect-classify-pipeline/service"
)

// UploadIngestedMessage announces that an upload's sections are stored
// and ready for classification.
type UploadIngestedMessage struct {
	UploadID string `json:"upload_id"`
	Sector   string `json:"sector,omitempty"`
}

// Subscriber owns the AMQP consumption loop.
type Subscriber struct {
	cfg  *config.Config
	svc  *service.Service
	stop chan struct{}
}

func NewSubscriber(cfg *config.Config, svc *service.Service) *Subscriber {
	return &Subscriber{cfg: cfg, svc: svc, stop: make(chan struct{})}
}

// Start runs the consume loop until Stop is called, reconnecting after
// connection loss.
func (s *Subscriber) Start() {
	for {
		select {
		case <-s.stop:
			return
		default:
		}

		if err := s.consume(); err != nil {
			metrics.RabbitMQConnected.Set(0)
			log.WithError(err).Warnf("rabbitmq consume loop ended, reconnecting in %v", s.cfg.RabbitMQReconnect)
		}

		select {
		case <-s.stop:
			return
		case <-time.After(s.cfg.RabbitMQReconnect):
		}
	}
}

// Stop ends the consume loop.
func (s *Subscriber) Stop() {
	close(s.stop)
}

func (s *Subscriber) consume() error {
	conn, err := amqp.Dial(s.cfg.RabbitMQURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return err
	}
	defer channel.Close()

	if err := channel.ExchangeDeclare(s.cfg.RabbitMQExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	queue, err := channel.QueueDeclare(s.cfg.RabbitMQQueue, true, false, false, false, nil)
	if err != nil {
		return err
	}
	if err := channel.QueueBind(queue.Name, s.cfg.UploadIngestedKey, s.cfg.RabbitMQExchange, false, nil); err != nil {
		return err
	}

	deliveries, err := channel.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	metrics.RabbitMQConnected.Set(1)
	log.WithField("queue", queue.Name).Info("rabbitmq subscriber connected")

	for {
		select {
		case <-s.stop:
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return amqp.ErrClosed
			}
			s.handle(delivery)
		}
	}
}

func (s *Subscriber) handle(delivery amqp.Delivery) {
	var msg UploadIngestedMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil || msg.UploadID == "" {
		log.WithError(err).Warn("dropping malformed upload-ingested message")
		// Malformed messages never become valid; don't requeue.
		if err := delivery.Nack(false, false); err != nil {
			log.WithError(err).Warn("nack failed")
		}
		return
	}

	run, err := s.svc.StartRun(context.Background(), msg.UploadID)
	if err != nil {
		log.WithError(err).WithField("upload_id", msg.UploadID).Error("rules run could not start, requeueing")
		if err := delivery.Nack(false, true); err != nil {
			log.WithError(err).Warn("nack failed")
		}
		return
	}

	log.WithField("upload_id", msg.UploadID).
		WithField("rules_run_id", run.ID).
		WithField("status", run.Status).
		Info("rules run triggered by upload-ingested event")
	if err := delivery.Ack(false); err != nil {
		log.WithError(err).Warn("ack failed")
	}
}
