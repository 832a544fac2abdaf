package memory

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/pubsub"
)

// PubSub is an in-process bus used when Kafka is disabled and in tests
type PubSub struct {
	channel *gochannel.GoChannel
}

func NewPubSub(log *logger.Logger) pubsub.PubSub {
	return &PubSub{
		channel: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
			Persistent:          false,
		}, log.GetWatermillLogger()),
	}
}

func (p *PubSub) Publish(ctx context.Context, topic string, msg *message.Message) error {
	msg.SetContext(ctx)
	return p.channel.Publish(topic, msg)
}

func (p *PubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return p.channel.Subscribe(ctx, topic)
}

func (p *PubSub) Close() error {
	return p.channel.Close()
}
