package endpoint

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bepec/wfd-toolbox/rtsp"
)

// stubReceiver answers every request with 200 OK and records responses it
// was handed, mirroring rtsp_test.go's table-driven style of exercising a
// handler against canned wire input.
type stubReceiver struct {
	responseStatus int
	methodSeen     rtsp.Method
}

func (s *stubReceiver) ProcessRequest(req *rtsp.Request) (*rtsp.Response, error) {
	return rtsp.NewResponse(200), nil
}

func (s *stubReceiver) ProcessResponse(resp *rtsp.Response, method rtsp.Method) {
	s.responseStatus = resp.Status
	s.methodSeen = method
}

func TestSyncSendRequestBlocksForMatchingResponse(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	recv := &stubReceiver{}
	ep := NewSync(client, recv)

	go func() {
		reader := bufio.NewReader(server)
		line, _ := reader.ReadString('\n')
		assert.Equal(t, "OPTIONS * RTSP/1.0\r\n", line)
		for {
			l, _ := reader.ReadString('\n')
			if l == "\r\n" {
				break
			}
		}
		server.Write([]byte("RTSP/1.0 200 OK\r\nCSeq: 0\r\n\r\n"))
	}()

	req := rtsp.NewRequest(rtsp.OPTIONS, "")
	resp, err := ep.SendRequest(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, 200, recv.responseStatus)
	assert.Equal(t, rtsp.OPTIONS, recv.methodSeen)
	assert.Equal(t, 1, ep.NextCSeq())
}

func TestSyncSendRequestCSeqMismatchIsFatal(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	ep := NewSync(client, &stubReceiver{})

	go func() {
		reader := bufio.NewReader(server)
		for {
			l, _ := reader.ReadString('\n')
			if l == "\r\n" {
				break
			}
		}
		server.Write([]byte("RTSP/1.0 200 OK\r\nCSeq: 99\r\n\r\n"))
	}()

	req := rtsp.NewRequest(rtsp.OPTIONS, "")
	_, err := ep.SendRequest(req)
	assert.Error(t, err)
}

func TestSyncWaitForRequestDispatchesToReceiverAndWritesResponse(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	ep := NewSync(client, &stubReceiver{})

	done := make(chan string, 1)
	go func() {
		reader := bufio.NewReader(server)
		var resp []byte
		buf := make([]byte, 4096)
		for {
			n, err := server.Read(buf)
			if n > 0 {
				resp = append(resp, buf[:n]...)
			}
			if err != nil || (len(resp) >= 4 && string(resp[len(resp)-4:]) == "\r\n\r\n") {
				break
			}
		}
		_ = reader
		done <- string(resp)
	}()

	go func() {
		server.Write([]byte("OPTIONS * RTSP/1.0\r\nCSeq: 7\r\n\r\n"))
	}()

	req, err := ep.WaitForRequest()
	require.NoError(t, err)
	assert.Equal(t, rtsp.OPTIONS, req.Method)

	select {
	case resp := <-done:
		assert.Contains(t, resp, "RTSP/1.0 200 OK")
		assert.Contains(t, resp, "CSeq: 7")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for response")
	}
}

func TestSyncWaitForRequestPropagatesFatalReceiverError(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	ep := NewSync(client, erroringReceiver{})

	go func() {
		server.Write([]byte("SETUP rtsp://localhost/wfd1.0 RTSP/1.0\r\nCSeq: 0\r\n\r\n"))
	}()

	_, err := ep.WaitForRequest()
	assert.Error(t, err)
}

type erroringReceiver struct{}

func (erroringReceiver) ProcessRequest(req *rtsp.Request) (*rtsp.Response, error) {
	return nil, assert.AnError
}
func (erroringReceiver) ProcessResponse(resp *rtsp.Response, method rtsp.Method) {}
