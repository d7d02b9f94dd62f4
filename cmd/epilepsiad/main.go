package main

import (
	"flag"
	"os"
	"sync"

	"github.com/golang/glog"
	"periph.io/x/host/v3"

	"github.com/epilepsia/epilepsia.go/pkg/config"
	"github.com/epilepsia/epilepsia.go/pkg/control/httpapi"
	"github.com/epilepsia/epilepsia.go/pkg/control/mqtt"
	"github.com/epilepsia/epilepsia.go/pkg/display"
	"github.com/epilepsia/epilepsia.go/pkg/frame"
	"github.com/epilepsia/epilepsia.go/pkg/framework"
	"github.com/epilepsia/epilepsia.go/pkg/opc"
	"github.com/epilepsia/epilepsia.go/pkg/pru"
)

func init() {
	config.SetupFlags()
}

func openPRU(conf *config.Config) (*pru.Region, []pru.Lane) {
	if conf.Simulate {
		region, err := pru.NewMemoryRegion(pru.DefaultLayout)
		if err != nil {
			glog.Fatalf("shared memory: %v", err)
		}
		glog.Warning("running with simulated PRUs")
		return region, pru.NewSimulator(region).Lanes()
	}
	if _, err := host.Init(); err != nil {
		glog.Fatalf("host init: %v", err)
	}
	region, err := pru.MapPhysical(pru.SharedMemoryBase, pru.DefaultLayout)
	if err != nil {
		glog.Fatalf("shared memory: %v", err)
	}
	return region, pru.RemoteProcLanes()
}

// persist saves settings changed at runtime.
func persist(conf *config.Config, settings config.Settings) func(display.Settings) {
	var lock sync.Mutex
	return func(s display.Settings) {
		lock.Lock()
		defer lock.Unlock()
		settings.LEDs.Brightness = s.Brightness
		settings.LEDs.Dithering = s.Dithering
		if err := settings.Save(conf.SettingsFile); err != nil {
			glog.Errorf("save settings: %v", err)
		}
	}
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := config.NewConfig()
	settings := conf.MustLoadSettings()
	handshake, err := pru.ParseHandshake(conf.Handshake)
	if err != nil {
		glog.Fatal(err)
	}

	region, lanes := openPRU(conf)
	drv, err := pru.New(region, lanes, pru.Options{
		Geometry:  settings.Geometry(),
		Handshake: handshake,
	})
	if err != nil {
		glog.Fatalf("PRU driver: %v", err)
	}
	pipeline, err := frame.NewPipeline(settings.PipelineOptions())
	if err != nil {
		glog.Fatalf("pipeline: %v", err)
	}
	disp := display.New(pipeline, drv)
	if conf.Persist {
		disp.OnChange = persist(conf, settings)
	}

	server := opc.NewServer(settings.ListenAddrs()...)
	if err := disp.Register(server); err != nil {
		glog.Fatal(err)
	}

	runner := framework.NewRunner().HandleSignals()
	runner.OnStop("pru", drv.Close)
	runner.OnStop("display", disp.Clear)
	runner.Go(framework.NamedRun("opc", server))

	if conf.MQTTBrokerURL != "" {
		bridge, err := mqtt.NewBridge(conf.MQTTBrokerURL, conf.DeviceID, disp)
		if err != nil {
			glog.Fatalf("MQTT: %v", err)
		}
		bridge.Interval = conf.StatusInterval
		bridge.Clients = server.Clients
		runner.Go(framework.NamedRun("mqtt", bridge))
	}
	if conf.HTTPAddr != "" {
		api := httpapi.New(conf.HTTPAddr, disp)
		api.Clients = server.Clients
		runner.Go(framework.NamedRun("http", api))
	}

	if err := runner.Wait(); err != nil {
		glog.Error(err)
		glog.Flush()
		os.Exit(1)
	}
}
