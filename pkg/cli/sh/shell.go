// Package sh provides an interactive shell driving an OPC server.
package sh

import (
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/epilepsia/epilepsia.go/pkg/opc/client"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	AutoConnect bool

	// URL is the server to connect to.
	URL string
	// Width and Height describe the pixel matrix, Width pixels per row.
	Width, Height int
	// Channel is the OPC channel of pixel messages.
	Channel byte

	Shell  *ishell.Shell
	Client *client.Client
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	evalOnly   bool
	defaultURL = "tcp://127.0.0.1:" + client.DefaultPort
	width      = 60
	height     = 32
	channel    uint

	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.StringVar(&defaultURL, "url", defaultURL, "Server URL, tcp://host:port or ws://host:port/")
	flag.IntVar(&width, "width", width, "Pixels per row.")
	flag.IntVar(&height, "height", height, "Number of rows.")
	flag.UintVar(&channel, "channel", channel, "OPC channel.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New() *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		URL:         defaultURL,
		Width:       width,
		Height:      height,
		Channel:     byte(channel),
		Shell:       ishell.New(),
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
		if ShellFrom(c).Client == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// Report prints err to the shell if not nil.
func Report(c *ishell.Context, err error) {
	if err != nil {
		c.Err(err)
	}
}

// PixelCount is the number of pixels in a frame.
func (s *Shell) PixelCount() int {
	return s.Width * s.Height
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect connects to url, replacing the current connection.
func (s *Shell) Connect(url string) error {
	cli, err := client.Dial(url)
	if err != nil {
		return err
	}
	cli.Channel = s.Channel
	s.Disconnect()
	s.Client = cli
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", cli.URL()))
	return nil
}

// Disconnect closes the current connection.
func (s *Shell) Disconnect() {
	if s.Client != nil {
		s.Client.Close()
		s.Client = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.URL)
		}
		if err := s.Connect(s.URL); err != nil {
			log.Fatalf("connect %q failed: %v", s.URL, err)
		}
	}
	defer s.Disconnect()

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
	// ConnectCmd connects to a server.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[URL]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			url := s.URL
			if len(c.Args) > 0 {
				url = c.Args[0]
			}
			Report(c, s.Connect(url))
		},
	}

	// DisconnectCmd disconnects from the server.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New().WithAutoConnect(true).Run(flag.Args()...)
}
