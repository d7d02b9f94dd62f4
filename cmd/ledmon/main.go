package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/epilepsia/epilepsia.go/pkg/control/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/epilepsia/"
)

func init() {
	if val := os.Getenv("EPILEPSIA_MQTT_URL"); val != "" {
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
	var marshaler jsonpb.Marshaler
	q.Sub("+/"+mqtt.TopicStatus, mqtt.Handler(func(topic string, payload []byte) {
		var status structpb.Struct
		if err := proto.Unmarshal(payload, &status); err != nil {
			log.Printf("%s: bad status: %v", topic, err)
			return
		}
		out, err := marshaler.MarshalToString(&status)
		if err != nil {
			log.Printf("%s: %v", topic, err)
			return
		}
		log.Printf("%s: %s", strings.TrimSuffix(topic, "/"+mqtt.TopicStatus), out)
	}))
	token := q.Connect()
	if token.Wait(); token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
