package uart

import (
	"strings"
	"testing"
)

func TestClientReadErrorCodes(t *testing.T) {
	port := newFakePort("ERROR:80810001,CE-10005-6\n")
	c := NewClient(NewTransport(port))

	codes, err := c.ReadErrorCodes()
	if err != nil {
		t.Fatalf("ReadErrorCodes: %v", err)
	}
	if len(codes) != 2 || codes[0].Raw != "80810001" || codes[1].Raw != "CE-10005-6" {
		t.Fatalf("ReadErrorCodes = %+v", codes)
	}
	if !strings.HasPrefix(port.writes[0], "get_error_codes:") {
		t.Fatalf("Wrote %q, want a framed get_error_codes", port.writes[0])
	}
}

func TestClientReadErrorCodesNoCodes(t *testing.T) {
	port := newFakePort("NO ERRORS STORED\n")
	c := NewClient(NewTransport(port))

	codes, err := c.ReadErrorCodes()
	if err != nil {
		t.Fatalf("ReadErrorCodes: %v", err)
	}
	if len(codes) != 0 {
		t.Fatalf("ReadErrorCodes on chatter = %+v, want none", codes)
	}
}

func TestClientClearErrorCodes(t *testing.T) {
	port := newFakePort("OK\n")
	c := NewClient(NewTransport(port))
	if err := c.ClearErrorCodes(); err != nil {
		t.Fatalf("ClearErrorCodes: %v", err)
	}

	port = newFakePort("FAILED\n")
	c = NewClient(NewTransport(port))
	if err := c.ClearErrorCodes(); err == nil {
		t.Fatal("ClearErrorCodes accepted a non-OK acknowledgement")
	}
}

func TestClientSendRaw(t *testing.T) {
	port := newFakePort("CFI-1016A\n")
	c := NewClient(NewTransport(port))
	resp, err := c.SendRaw("version")
	if err != nil {
		t.Fatalf("SendRaw: %v", err)
	}
	if resp != "CFI-1016A" {
		t.Fatalf("SendRaw = %q", resp)
	}
}
