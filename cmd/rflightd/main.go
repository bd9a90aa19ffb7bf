package main

import (
	"context"
	"flag"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/robotalks/rflight/pkg/config"
	fx "github.com/robotalks/rflight/pkg/framework"
	"github.com/robotalks/rflight/pkg/hw"
	"github.com/robotalks/rflight/pkg/input"
	"github.com/robotalks/rflight/pkg/keyboard"
	"github.com/robotalks/rflight/pkg/light"
	"github.com/robotalks/rflight/pkg/remote/mqtt"
	"github.com/robotalks/rflight/pkg/rf"
	"github.com/robotalks/rflight/pkg/settings"
)

func init() {
	config.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := config.Load(flag.CommandLine)
	if err != nil {
		glog.Exitf("config: %v", err)
	}

	port, err := hw.OpenSerial(conf.Radio.Port, conf.Radio.Baud)
	if err != nil {
		glog.Exitf("radio: %v", err)
	}
	transport := rf.NewStreamTransport(port)
	if conf.Radio.WakePin != "" {
		if transport.Wake, err = hw.OpenPin(conf.Radio.WakePin, false); err != nil {
			glog.Exitf("wake pin: %v", err)
		}
	}
	var reset rf.Line
	if conf.Radio.ResetPin != "" {
		if reset, err = hw.OpenPin(conf.Radio.ResetPin, conf.Radio.ResetActiveLow); err != nil {
			glog.Exitf("reset pin: %v", err)
		}
	}

	preview := hw.NewPreview()
	drivers := light.MultiDriver{preview}
	if conf.LED.SPI != "" {
		leds, err := hw.OpenAPA102(conf.LED.SPI, conf.LED.SPIFrequency(), conf.LED.Brightness)
		if err != nil {
			glog.Exitf("LEDs: %v", err)
		}
		defer leds.Close()
		drivers = append(drivers, leds)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	kb := keyboard.New(keyboard.Options{
		Transport:  transport,
		Reset:      reset,
		Driver:     drivers,
		Store:      settings.NewFileStore(conf.SettingsPath),
		Metrics:    rf.NewMetrics(reg),
		Overlay:    conf.OverlayOptions(),
		DeviceName: conf.DeviceName,
		DongleName: conf.DongleName,
	})
	if err := kb.Restore(); err != nil {
		glog.Errorf("restore settings: %v", err)
	}

	loop := fx.NewLoop()
	loop.Add(kb)
	loop.AddRunnable(fx.NamedRun("radio", fx.RunnableFunc(func(ctx context.Context) error {
		return fx.RunWithContextCloser(ctx, port, func() error {
			return transport.Run(ctx)
		})
	})))
	if conf.Input.Gamepad {
		loop.Add(input.NewPad(conf.Input.Index))
	}
	if conf.MQTT.URL != "" {
		bridge, err := mqtt.NewBridge(conf.MQTT.URL, conf.Ref(), conf.Meta(), kb.Device, &kb.Side, &kb.Logo)
		if err != nil {
			glog.Exitf("mqtt: %v", err)
		}
		loop.Add(bridge)
	}
	if conf.HTTP.Addr != "" {
		loop.AddRunnable(fx.NamedRun("http", &keyboard.HTTPServer{
			Addr:     conf.HTTP.Addr,
			Gatherer: reg,
			LEDs:     preview.Handler(),
		}))
	}

	glog.Infof("%s started, radio on %s", conf.Ref().Name(), conf.Radio.Port)
	if err := fx.NewRunner().HandleSignals().Go(loop).Wait(); err != nil {
		glog.Errorf("stopped: %v", err)
	}
}
