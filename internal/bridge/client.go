package bridge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/decenza/de1-sim/internal/config"
)

// Client is the controller side of the control channel. Events from the
// agent are delivered on Events(); the channel closes when the connection
// drops. Commands are written and flushed immediately.
type Client struct {
	conn   net.Conn
	events chan Event

	writeMu sync.Mutex
	closed  sync.Once
}

// Dial connects to the agent's control port.
func Dial(host string, port int) (*Client, error) {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect to agent at %s: %w", addr, err)
	}

	c := &Client{
		conn:   conn,
		events: make(chan Event, 16),
	}
	go c.readLoop()
	return c, nil
}

// Probe checks whether an agent is listening without holding a session open.
func Probe(host string, port int, timeout time.Duration) error {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return err
	}
	conn.Close()
	return nil
}

// Events returns the inbound event stream. The channel closes on disconnect.
func (c *Client) Events() <-chan Event {
	return c.events
}

func (c *Client) readLoop() {
	defer c.closed.Do(func() { c.conn.Close() })
	defer close(c.events)

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 4096), 64*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			config.Debugf("dropping malformed event line: %v", err)
			continue
		}
		c.events <- ev
	}
}

func (c *Client) send(cmd Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err = c.conn.Write(append(data, '\n'))
	if err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}

// Notify writes data to the named characteristic and fires a notification.
func (c *Client) Notify(shortID string, data []byte) error {
	return c.send(Command{Cmd: CmdNotify, Char: shortID, Data: EncodeHex(data)})
}

// Update replaces the characteristic's cached read value. The agent applies
// it through the same GATT write as Notify, so subscribed centrals are still
// notified; there is no silent update.
func (c *Client) Update(shortID string, data []byte) error {
	return c.send(Command{Cmd: CmdUpdate, Char: shortID, Data: EncodeHex(data)})
}

// StartAdvertising asks the agent to begin advertising.
func (c *Client) StartAdvertising() error {
	return c.send(Command{Cmd: CmdStart})
}

// StopAdvertising asks the agent to stop advertising.
func (c *Client) StopAdvertising() error {
	return c.send(Command{Cmd: CmdStop})
}

// Close tears down the connection. The events channel closes shortly after.
func (c *Client) Close() {
	c.closed.Do(func() { c.conn.Close() })
}
