package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rflight/pkg/remote"
)

// Client talks to a Bridge.
type Client struct {
	Queue *Queue
	Ref   remote.Ref
}

// Dial connects to the broker for the device ref.
func Dial(brokerURL string, ref remote.Ref) (*Client, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	c := &Client{Queue: NewQueue(opts, topicPrefix), Ref: ref}
	token := c.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	return c, nil
}

// Send sends a command to the device.
func (c *Client) Send(msg remote.SerializableMessage) error {
	data, err := remote.Encode(msg)
	if err != nil {
		return err
	}
	token := c.Queue.PubWith(c.Ref.Topic(remote.TopicControl), data, 1, false)
	token.Wait()
	return token.Error()
}

// Watch calls fn with every status published by the device.
func (c *Client) Watch(fn func(*remote.Status)) *Subscription {
	return c.Queue.Sub(c.Ref.Topic(remote.TopicStatus), func(topic string, payload []byte) {
		if len(payload) == 0 {
			return
		}
		env, err := remote.DecodeEnvelope(payload)
		if err != nil {
			glog.Warningf("bad status on %s: %v", topic, err)
			return
		}
		msg, err := env.Decode()
		if err != nil {
			glog.Warningf("bad status on %s: %v", topic, err)
			return
		}
		if st, ok := msg.(*remote.Status); ok {
			fn(st)
		}
	})
}

// Close implements io.Closer.
func (c *Client) Close() error {
	return c.Queue.Close()
}

// DeviceInfo describes a device found online.
type DeviceInfo struct {
	Ref  remote.Ref
	Meta remote.Meta
}

// DefaultDiscoverTimeout is how long Discover collects answers.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Discover lists the devices with a retained meta topic.
func Discover(ctx context.Context, q *Queue, timeout time.Duration) ([]DeviceInfo, error) {
	if timeout == 0 {
		timeout = DefaultDiscoverTimeout
	}
	found := make(chan DeviceInfo, 16)
	sub := q.Sub("+/+/"+remote.TopicMeta, func(topic string, payload []byte) {
		items := strings.Split(topic, "/")
		if len(items) != 3 || len(payload) == 0 {
			return
		}
		info := DeviceInfo{Ref: remote.Ref{Type: items[0], ID: items[1]}}
		if err := json.Unmarshal(payload, &info.Meta); err != nil {
			glog.Warningf("bad meta on %s: %v", topic, err)
		}
		select {
		case found <- info:
		case <-time.After(time.Second):
		}
	})
	defer sub.Close()

	var res []DeviceInfo
	deadline := time.After(timeout)
	for {
		select {
		case info := <-found:
			res = append(res, info)
		case <-deadline:
			return res, nil
		case <-ctx.Done():
			return res, ctx.Err()
		}
	}
}
