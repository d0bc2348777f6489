package events

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

// Transport pairs a publisher with the subscriber that reads what it writes.
// With Redis it is backed by Redis Streams; without Redis it is an in-process
// channel, so publisher and subscriber must come from the same Transport.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	inProcess  bool
}

// NewTransport builds a Redis Streams transport, or a gochannel one when rdb is nil
func NewTransport(rdb *redis.Client, consumerGroup string, logger watermill.LoggerAdapter) (*Transport, error) {
	if rdb == nil {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
		return &Transport{Publisher: ch, Subscriber: ch, inProcess: true}, nil
	}

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: rdb,
	}, logger)
	if err != nil {
		return nil, err
	}

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        rdb,
		ConsumerGroup: consumerGroup,
	}, logger)
	if err != nil {
		publisher.Close()
		return nil, err
	}

	return &Transport{Publisher: publisher, Subscriber: subscriber}, nil
}

// InProcess reports whether events only reach subscribers in this process
func (t *Transport) InProcess() bool {
	return t.inProcess
}

// Close closes both sides
func (t *Transport) Close() error {
	if t.inProcess {
		return t.Publisher.Close()
	}
	return errors.Join(t.Publisher.Close(), t.Subscriber.Close())
}
