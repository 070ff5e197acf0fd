package lib

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSSender is the subset of the SQS client the refund queue needs. Tests
// replace it with NewSQSClient.
type SQSSender interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

var sqsClient SQSSender

func AWSGetSQSClient() SQSSender {
	if sqsClient != nil {
		return sqsClient
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Failed to initialize SQS client: %s\n", err.Error())
		return nil
	}
	sqsClient = sqs.NewFromConfig(cfg)
	return sqsClient
}

func NewSQSClient(c SQSSender) {
	sqsClient = c
}

// SQSSendMessage publishes a JSON payload to the named queue. Used for the
// operator refund queue: entries there represent captured payments whose
// seats are gone and need a manual refund.
func SQSSendMessage(ctx context.Context, queueName string, payload any) error {
	c := AWSGetSQSClient()
	if c == nil {
		log.Printf("[sqs] No client available; dropping message for %s\n", queueName)
		return nil
	}
	qurl, err := c.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(queueName)})
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = c.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    qurl.QueueUrl,
		MessageBody: aws.String(string(body)),
	})
	return err
}

type SQSConsumer struct {
	Name    string
	handler func(body string)
}

func NewSQSConsumer(queue string, handler func(body string)) *SQSConsumer {
	return &SQSConsumer{Name: queue, handler: handler}
}

// Listen long-polls the queue in the background and hands each message body
// to the handler. Messages are deleted after dispatch; the handler owns any
// durable record it needs.
func (s *SQSConsumer) Listen() {
	go func() {
		qname := s.Name
		client := AWSGetSQSClient()
		if client == nil {
			return
		}
		qurl, err := client.GetQueueUrl(context.Background(), &sqs.GetQueueUrlInput{
			QueueName: aws.String(qname),
		})
		if err != nil {
			log.Printf("Failed to retrieve queue URL for %s: %s\n", qname, err.Error())
			return
		}
		log.Printf("%s: Listening for messages...", qname)
		for {
			output, err := client.ReceiveMessage(context.Background(), &sqs.ReceiveMessageInput{
				QueueUrl:            qurl.QueueUrl,
				WaitTimeSeconds:     20,
				MaxNumberOfMessages: 10,
			})
			if err != nil {
				log.Printf("[SQS] Error receiving messages: %s\n", err.Error())
				return
			}
			for _, m := range output.Messages {
				s.handler(*m.Body)
				_, err := client.DeleteMessage(context.Background(), &sqs.DeleteMessageInput{
					QueueUrl:      qurl.QueueUrl,
					ReceiptHandle: m.ReceiptHandle,
				})
				if err != nil {
					log.Printf("[SQS] Error deleting message %s: %s\n", *m.MessageId, err.Error())
				}
			}
		}
	}()
}
