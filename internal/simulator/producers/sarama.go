package producers

import (
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type SaramaProducer struct {
	producer sarama.SyncProducer
	logger   *zap.SugaredLogger
}

func NewSaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // Must be true for SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second
	return saramaConfig
}

func NewSaramaProducer(brokers string, logger *zap.SugaredLogger) (*SaramaProducer, error) {
	brokerList := strings.Split(brokers, ",")

	producer, err := sarama.NewSyncProducer(brokerList, NewSaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	logger.Infof("Sarama producer created with brokers %v", brokerList)
	return NewSaramaProducerWithClient(producer, logger), nil
}

func NewSaramaProducerWithClient(producer sarama.SyncProducer, logger *zap.SugaredLogger) *SaramaProducer {
	return &SaramaProducer{producer: producer, logger: logger}
}

func (s *SaramaProducer) WriteMessage(topic string, msg []byte) error {
	if s.producer == nil {
		return fmt.Errorf("Sarama producer is not initialized")
	}

	partition, offset, err := s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		s.logger.Errorf("Failed to send message to topic %s: %v", topic, err)
		return err
	}

	s.logger.Debugw("Message delivered", "topic", topic, "partition", partition, "offset", offset)
	return nil
}

func (s *SaramaProducer) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
