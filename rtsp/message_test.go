package rtsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderSetPreservesInsertionOrder(t *testing.T) {
	h := NewHeader()
	h.Set("CSeq", "1")
	h.Set("Require", "org.wfa.wfd1.0")
	h.Set("CSeq", "2") // update, not append

	pairs := h.Pairs()
	require.Len(t, pairs, 2)
	assert.Equal(t, "CSeq", pairs[0].Name)
	assert.Equal(t, "2", pairs[0].Value)
	assert.Equal(t, "Require", pairs[1].Name)
}

func TestHeaderAddAllowsDuplicates(t *testing.T) {
	h := NewHeader()
	h.Add("Public", "OPTIONS")
	h.Add("Public", "GET_PARAMETER")

	pairs := h.Pairs()
	require.Len(t, pairs, 2)
	assert.Equal(t, "GET_PARAMETER", h.Get("Public"))
}

func TestHeaderDel(t *testing.T) {
	h := NewHeader()
	h.Set("CSeq", "1")
	h.Set("Session", "01234567")
	h.Del("CSeq")

	assert.Equal(t, "", h.Get("CSeq"))
	pairs := h.Pairs()
	require.Len(t, pairs, 1)
	assert.Equal(t, "Session", pairs[0].Name)
}

func TestSetContentSyncsHeaders(t *testing.T) {
	req := NewRequest(GetParameter, "rtsp://localhost/wfd1.0")
	SetContent(req, &Content{MediaType: "text/parameters", Data: []byte("wfd_video_formats\r\n")})

	assert.Equal(t, "text/parameters", req.Header.Get(HeaderContentType))
	assert.Equal(t, "19", req.Header.Get(HeaderContentLength))

	SetContent(req, nil)
	assert.Nil(t, req.Content)
	assert.Equal(t, "", req.Header.Get(HeaderContentType))
	assert.Equal(t, "", req.Header.Get(HeaderContentLength))
}

func TestCSeqRoundTrip(t *testing.T) {
	resp := NewResponse(200)
	_, ok := CSeq(resp)
	assert.False(t, ok)

	SetCSeq(resp, 3)
	n, ok := CSeq(resp)
	require.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestReasonPhraseKnownAndUnknown(t *testing.T) {
	phrase, ok := ReasonPhrase(200)
	require.True(t, ok)
	assert.Equal(t, "OK", phrase)

	phrase, ok = ReasonPhrase(250)
	require.True(t, ok)
	assert.Equal(t, "Low on Storage Space", phrase)

	_, ok = ReasonPhrase(999)
	assert.False(t, ok)
}

func TestRequestStatusLineDefaultsURL(t *testing.T) {
	req := NewRequest(OPTIONS, "")
	assert.Equal(t, "*", req.URL)
	assert.Equal(t, "OPTIONS * RTSP/1.0", req.statusLine())
}
