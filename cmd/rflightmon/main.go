package main

import (
	"flag"
	"log"
	"os"
	"reflect"
	"strings"

	"github.com/robotalks/rflight/pkg/remote"
	"github.com/robotalks/rflight/pkg/remote/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/rflight/"
)

func init() {
	if val := os.Getenv("RFLIGHT_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	opts, prefix, err := mqtt.ClientOptionsFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q := mqtt.NewQueue(opts, prefix)
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}

	q.Sub("#", func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/"+remote.TopicMeta) {
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		if len(payload) == 0 {
			log.Printf("%s: cleared", topic)
			return
		}
		env, err := remote.DecodeEnvelope(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		msg, err := env.Decode()
		if err != nil {
			log.Printf("%s: decode error: (type_id=%x) %v", topic, env.TypeId, err)
			return
		}
		if st, ok := msg.(*remote.Status); ok {
			log.Printf("%s: %s", topic, st.Summary())
			return
		}
		log.Printf("%s: [%s] %s", topic,
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
			msg.(remote.SerializableMessage).Serializable().String())
	})
	<-(chan struct{})(nil)
}
