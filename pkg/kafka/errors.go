package kafka

import "errors"

var (
	ErrNoBrokers    = errors.New("kafka: no brokers configured")
	ErrNoTopic      = errors.New("kafka: topic is required")
	ErrWriteFailed  = errors.New("kafka: failed to write message")
	ErrProducerDone = errors.New("kafka: producer is closed")
)
