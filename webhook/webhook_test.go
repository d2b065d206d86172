package webhook_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/m-g-r/relay/dispatch"
	"github.com/m-g-r/relay/webhook"
	"github.com/stretchr/testify/assert"
)

type recordingPipeline struct {
	mtx   sync.Mutex
	turns []string
}

func (p *recordingPipeline) Handle(ctx context.Context, userId string, message string) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.turns = append(p.turns, userId+":"+message)
}

func (p *recordingPipeline) handled() []string {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	cpy := make([]string, len(p.turns))
	copy(cpy, p.turns)

	return cpy
}

func newServer(t *testing.T) (*httptest.Server, *recordingPipeline, *dispatch.Pool) {
	t.Helper()

	pipeline := &recordingPipeline{}
	pool := dispatch.New(dispatch.WithWorkers(1))

	handler := webhook.New(
		pipeline,
		pool,
		webhook.WithVerifyToken("shared-secret"),
	).Handler()

	return httptest.NewServer(handler), pipeline, pool
}

func TestVerificationHandshake(t *testing.T) {
	server, _, pool := newServer(t)
	defer server.Close()
	defer pool.Shutdown()

	rsp, err := http.Get(server.URL + "/webhook?hub.mode=subscribe&hub.verify_token=shared-secret&hub.challenge=12345")
	assert.Nil(t, err)
	defer rsp.Body.Close()

	body, _ := io.ReadAll(rsp.Body)

	assert.Equal(t, http.StatusOK, rsp.StatusCode)
	assert.Equal(t, "12345", string(body))
}

func TestVerificationRejectsWrongToken(t *testing.T) {
	server, _, pool := newServer(t)
	defer server.Close()
	defer pool.Shutdown()

	rsp, err := http.Get(server.URL + "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345")
	assert.Nil(t, err)
	defer rsp.Body.Close()

	assert.Equal(t, http.StatusForbidden, rsp.StatusCode)
}

func TestTextEventIsDispatched(t *testing.T) {
	server, pipeline, pool := newServer(t)
	defer server.Close()

	event := `{"sender_id":"u1","message_type":"text","text":"hello"}`

	rsp, err := http.Post(server.URL+"/webhook", "application/json", strings.NewReader(event))
	assert.Nil(t, err)
	rsp.Body.Close()

	assert.Equal(t, http.StatusOK, rsp.StatusCode)

	pool.Shutdown()

	assert.Equal(t, []string{"u1:hello"}, pipeline.handled())
}

func TestNonTextEventIsIgnored(t *testing.T) {
	server, pipeline, pool := newServer(t)
	defer server.Close()

	event := `{"sender_id":"u1","message_type":"image","text":"ignored"}`

	rsp, err := http.Post(server.URL+"/webhook", "application/json", strings.NewReader(event))
	assert.Nil(t, err)
	rsp.Body.Close()

	// still acknowledged
	assert.Equal(t, http.StatusOK, rsp.StatusCode)

	pool.Shutdown()

	assert.Empty(t, pipeline.handled())
}

func TestMalformedEventIsRejected(t *testing.T) {
	server, pipeline, pool := newServer(t)
	defer server.Close()
	defer pool.Shutdown()

	rsp, err := http.Post(server.URL+"/webhook", "application/json", strings.NewReader("not json"))
	assert.Nil(t, err)
	rsp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)
	assert.Empty(t, pipeline.handled())
}
