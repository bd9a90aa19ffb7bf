package mqtt

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/rflight/pkg/device"
	fx "github.com/robotalks/rflight/pkg/framework"
	"github.com/robotalks/rflight/pkg/light"
	"github.com/robotalks/rflight/pkg/remote"
)

// ConnectRetryInterval is the wait between failed connection attempts.
const ConnectRetryInterval = 5 * time.Second

// Bridge publishes the device on the broker. It keeps the retained
// meta and status topics current and posts commands received on the
// control topic into the loop.
type Bridge struct {
	Queue  *Queue
	Ref    remote.Ref
	Device *device.Device
	Side   *light.Context
	Logo   *light.Context

	meta      []byte
	last      *remote.Status
	republish atomic.Bool
}

// NewBridge creates a Bridge connecting to brokerURL.
func NewBridge(brokerURL string, ref remote.Ref, meta remote.Meta, dev *device.Device, side, logo *light.Context) (*Bridge, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+ref.Topic(remote.TopicMeta), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID(ref.Type + ":" + ref.ID)
	}
	return newBridge(NewQueue(opts, topicPrefix), ref, meta, dev, side, logo)
}

func newBridge(q *Queue, ref remote.Ref, meta remote.Meta, dev *device.Device, side, logo *light.Context) (*Bridge, error) {
	data, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	b := &Bridge{Queue: q, Ref: ref, Device: dev, Side: side, Logo: logo, meta: data}
	q.OnConnect = func(*Queue) { b.onConnected() }
	return b, nil
}

// AddToLoop implements LoopAdder.
func (b *Bridge) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvPostProc, b)
}

// Run implements Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	b.Queue.Sub(b.Ref.Topic(remote.TopicControl), b.controlHandler(fx.LoopCtlFrom(ctx)))
	for {
		token := b.Queue.Connect()
		token.Wait()
		err := token.Error()
		if err == nil {
			break
		}
		glog.Warningf("mqtt connect error: %v", err)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(ConnectRetryInterval):
		}
	}
	<-ctx.Done()
	b.Queue.PubWith(b.Ref.Topic(remote.TopicMeta), nil, 1, true).WaitTimeout(time.Second)
	return b.Queue.Close()
}

// Control implements Controller. The status is published when it
// changes and after every reconnect.
func (b *Bridge) Control(cc fx.ControlContext) error {
	st := remote.StatusOf(b.Device, b.Side, b.Logo)
	if !b.republish.Swap(false) && b.last != nil && proto.Equal(st, b.last) {
		return nil
	}
	data, err := remote.Encode(st)
	if err != nil {
		return err
	}
	b.last = st
	glog.V(1).Infof("status %s", st.Summary())
	b.Queue.PubWith(b.Ref.Topic(remote.TopicStatus), data, 1, true)
	return nil
}

func (b *Bridge) controlHandler(ctl fx.LoopControl) Handler {
	return func(topic string, payload []byte) {
		msg, err := remote.DecodeCommand(payload)
		if err != nil {
			glog.Warningf("drop message on %s: %v", topic, err)
			return
		}
		glog.V(1).Infof("command %v", msg)
		ctl.PostMessage(msg)
		ctl.TriggerNext()
	}
}

func (b *Bridge) onConnected() {
	b.Queue.PubWith(b.Ref.Topic(remote.TopicMeta), b.meta, 1, true)
	b.republish.Store(true)
}
