package uart

import (
	"fmt"
	"strings"

	"github.com/console-repair-tools/noruart/pkg/errcode"
)

// Console commands understood by the diagnostic firmware.
const (
	cmdGetErrorCodes   = "get_error_codes"
	cmdClearErrorCodes = "clear_error_codes"
)

// Client layers the console's diagnostic operations on top of a
// Transport.
type Client struct {
	t *Transport
}

// NewClient wraps an existing transport.
func NewClient(t *Transport) *Client {
	return &Client{t: t}
}

// ReadErrorCodes asks the console for its stored error codes and returns
// them parsed, in the order the console reported them.
func (c *Client) ReadErrorCodes() ([]errcode.Code, error) {
	resp, err := c.t.SendCommand(cmdGetErrorCodes)
	if err != nil {
		return nil, err
	}
	return errcode.Parse(resp), nil
}

// ClearErrorCodes wipes the console's stored error codes. The firmware
// acknowledges with a bare OK.
func (c *Client) ClearErrorCodes() error {
	resp, err := c.t.SendCommand(cmdClearErrorCodes)
	if err != nil {
		return err
	}
	if strings.TrimSpace(resp) != "OK" {
		return fmt.Errorf("unexpected response to %s: %q", cmdClearErrorCodes, resp)
	}
	return nil
}

// SendRaw passes an arbitrary command through, for the custom-command
// escape hatch. Validation and framing are the transport's.
func (c *Client) SendRaw(command string) (string, error) {
	return c.t.SendCommand(command)
}
