package lib

import (
	"encoding/json"
	"log"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

var kafkaProducer *kafka.Producer

func GetKafkaProducer() *kafka.Producer {
	if kafkaProducer != nil {
		return kafkaProducer
	}
	broker := os.Getenv("KAFKA_BROKER")
	if broker == "" {
		return nil
	}
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": broker,
		"client.id":         "boxoffice",
		"acks":              "all",
	})
	if err != nil {
		log.Printf("[kafka] Error creating producer: %s\n", err.Error())
		return nil
	}
	kafkaProducer = p
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					log.Printf("[kafka] Delivery failed: %v\n", ev.TopicPartition)
				}
			case kafka.Error:
				log.Printf("[kafka] Error: %v\n", ev)
			}
		}
	}()
	return p
}

func NewKafkaProducer(p *kafka.Producer) {
	kafkaProducer = p
}

// KafkaProduceMessage publishes a domain event. Publishing is best effort:
// with no broker configured the event is skipped, and a failed produce is
// logged rather than propagated so the HTTP path never depends on the bus.
func KafkaProduceMessage(topic string, payload any) {
	p := GetKafkaProducer()
	if p == nil {
		return
	}
	value, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[kafka] Error serializing payload for %s: %s\n", topic, err.Error())
		return
	}
	err = p.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          value,
	}, nil)
	if err != nil {
		log.Printf("[kafka] Error producing to %s: %s\n", topic, err.Error())
	}
}
