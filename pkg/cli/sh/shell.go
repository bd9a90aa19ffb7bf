package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/rflight/pkg/config"
	"github.com/robotalks/rflight/pkg/remote"
	"github.com/robotalks/rflight/pkg/remote/mqtt"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	// Timeout is how long a command waits for the status to change.
	Timeout time.Duration

	Shell  *ishell.Shell
	Config *config.Config
	Conn   *Conn
}

// Conn is a connection to one device.
type Conn struct {
	Client *mqtt.Client

	sub      *mqtt.Subscription
	statusCh chan *remote.Status
	last     *remote.Status
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

// DefaultTimeout is the default Shell.Timeout.
const DefaultTimeout = time.Second

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&StatusCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	conf := config.Default()
	flag.StringVar(&conf.MQTT.URL, "mqtt", conf.MQTT.URL, "MQTT broker URL.")
	flag.StringVar(&conf.ID, "id", conf.ID, "Device ID to connect.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *config.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     DefaultTimeout,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// FormatInfo prints DeviceInfo into friendly string for display.
func FormatInfo(info mqtt.DeviceInfo) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.DeviceName != "" {
		fmt.Fprintf(&w, " [%s]", info.Meta.DeviceName)
	}
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	return w.String()
}

// PrintStatus prints a status in the selected format.
func PrintStatus(c *ishell.Context, st *remote.Status) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(st)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(st.Summary())
}

// DoCommand sends a command and prints the status it results in.
// Commands not changing the status print OK after the timeout.
func DoCommand(c *ishell.Context, msg remote.SerializableMessage) error {
	s := ShellFrom(c)
	if s.Conn == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	s.Conn.drain()
	if err := s.Conn.Client.Send(msg); err != nil {
		c.Err(err)
		return err
	}
	select {
	case st := <-s.Conn.statusCh:
		PrintStatus(c, st)
	case <-time.After(s.Timeout):
		c.Println("OK")
	}
	return nil
}

func (c *Conn) watch(st *remote.Status) {
	for {
		select {
		case c.statusCh <- st:
			return
		default:
		}
		// keep the latest
		select {
		case <-c.statusCh:
		default:
		}
	}
}

func (c *Conn) drain() {
	for {
		select {
		case st := <-c.statusCh:
			c.last = st
		default:
			return
		}
	}
}

// Status waits up to timeout for the current status.
func (c *Conn) Status(timeout time.Duration) *remote.Status {
	c.drain()
	if c.last != nil {
		return c.last
	}
	select {
	case c.last = <-c.statusCh:
	case <-time.After(timeout):
	}
	return c.last
}

// Close closes the connection.
func (c *Conn) Close() error {
	c.sub.Close()
	return c.Client.Close()
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// DiscoverDevices lists devices on the broker.
func (s *Shell) DiscoverDevices(filter func(mqtt.DeviceInfo) bool) ([]mqtt.DeviceInfo, error) {
	opts, prefix, err := mqtt.ClientOptionsFromURL(s.Config.MQTT.URL)
	if err != nil {
		return nil, err
	}
	q := mqtt.NewQueue(opts, prefix)
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	defer q.Close()
	infoList, err := mqtt.Discover(context.TODO(), q, 0)
	if err != nil {
		return nil, err
	}
	if filter != nil {
		items := make([]mqtt.DeviceInfo, 0, len(infoList))
		for _, info := range infoList {
			if filter(info) {
				items = append(items, info)
			}
		}
		infoList = items
	}
	return infoList, nil
}

// SelectDevice discovers devices and asks for a choice.
func (s *Shell) SelectDevice(filter func(mqtt.DeviceInfo) bool) (*mqtt.DeviceInfo, error) {
	infoList, err := s.DiscoverDevices(filter)
	if err != nil {
		return nil, err
	}
	if len(infoList) == 0 {
		return nil, nil
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, fmt.Errorf("more than 1 devices discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = FormatInfo(info)
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
	}
	return &infoList[index], nil
}

// Connect connects the device with ref.
func (s *Shell) Connect(ref remote.Ref) error {
	client, err := mqtt.Dial(s.Config.MQTT.URL, ref)
	if err != nil {
		return err
	}
	conn := &Conn{Client: client, statusCh: make(chan *remote.Status, 1)}
	conn.sub = client.Watch(conn.watch)
	s.Disconnect()
	s.Conn = conn
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", ref.Name()))
	return nil
}

// Disconnect disconnects current device.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	ref := s.Config.Ref()
	if s.AutoConnect && ref.IsValid() {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", ref.Name())
		}
		if err := s.Connect(ref); err != nil {
			log.Fatalf("connect %q failed: %v", ref.Name(), err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// DiscoverCmd discovers devices.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			infoList, err := s.DiscoverDevices(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if len(infoList) == 0 {
					// in case infoList is nil, make it empty slice.
					infoList = []mqtt.DeviceInfo{}
				}
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No devices found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects a device.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[TYPE/]ID",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var ref remote.Ref
			if len(c.Args) > 0 && !strings.Contains(c.Args[0], "/") {
				ref = remote.Ref{Type: remote.DeviceType, ID: c.Args[0]}
			} else if len(c.Args) > 0 {
				var err error
				if ref, err = remote.ParseRef(c.Args[0]); err != nil {
					c.Err(err)
					return
				}
			} else {
				info, err := s.SelectDevice(nil)
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(fmt.Errorf("no device discovered"))
					return
				}
				ref = info.Ref
			}
			if err := s.Connect(ref); err != nil {
				c.Err(err)
				return
			}
		},
	}

	// DisconnectCmd disconnects current device.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// StatusCmd prints the last published status.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			st := s.Conn.Status(s.Timeout)
			if st == nil {
				c.Err(fmt.Errorf("no status published"))
				return
			}
			PrintStatus(c, st)
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(config.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
