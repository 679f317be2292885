package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/avvvet/bingo-match/internal/comm"
	"github.com/avvvet/bingo-match/internal/engine"
	"github.com/avvvet/bingo-match/internal/socketsvc/broker"
	"github.com/avvvet/bingo-match/internal/socketsvc/ws"
	"github.com/go-chi/jwtauth"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu   sync.Mutex
	msgs []comm.WSMessage
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	var m comm.WSMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, m)
	return nil
}

func (f *fakeConn) last() (comm.WSMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.msgs) == 0 {
		return comm.WSMessage{}, false
	}
	return f.msgs[len(f.msgs)-1], true
}

var testAuth = jwtauth.New("HS256", []byte("test-secret"), nil)

// newServer serves the websocket handler behind token verification, the
// way the routes mount it.
func newServer(t *testing.T, s *ws.Ws) *httptest.Server {
	t.Helper()
	h := NewHandler(s, "8081")
	verify := jwtauth.Verify(testAuth, jwtauth.TokenFromHeader, jwtauth.TokenFromQuery)
	srv := httptest.NewServer(verify(jwtauth.Authenticator(http.HandlerFunc(h.HandleWebSocket))))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, userId int64) *websocket.Conn {
	t.Helper()
	_, token, err := testAuth.Encode(map[string]interface{}{"user_id": userId})
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?jwt=" + token
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestWebSocketRoundTrip(t *testing.T) {
	nc := &fakeConn{}
	s := ws.NewWs()
	b := broker.NewBroker(nc, s.Send)
	s.Broker = b

	client := dial(t, newServer(t, s), 8)

	// the token decides the user, not the payload
	req, err := comm.NewMessage(comm.TypeStartMatch, comm.StartRequest{
		UserId: 99, Practice: true, EntryFee: decimal.Zero,
	}, "")
	require.NoError(t, err)
	require.NoError(t, client.WriteJSON(req))

	var forwarded comm.WSMessage
	require.Eventually(t, func() bool {
		var ok bool
		forwarded, ok = nc.last()
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, comm.TypeStartMatch, forwarded.Type)
	require.NotEmpty(t, forwarded.SocketId)
	var start comm.StartRequest
	require.NoError(t, json.Unmarshal(forwarded.Data, &start))
	assert.Equal(t, int64(8), start.UserId)

	// the match service answers on the socket the request came from
	reply, err := comm.NewMessage(comm.TypeMatchState, comm.SnapshotData{
		UserId:   8,
		Snapshot: engine.Snapshot{Status: engine.GamePlaying},
	}, forwarded.SocketId)
	require.NoError(t, err)
	data, err := json.Marshal(reply)
	require.NoError(t, err)
	b.HandleMessage(data)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	var got comm.WSMessage
	require.NoError(t, client.ReadJSON(&got))
	assert.Equal(t, comm.TypeMatchState, got.Type)

	var sd comm.SnapshotData
	require.NoError(t, json.Unmarshal(got.Data, &sd))
	assert.Equal(t, engine.GamePlaying, sd.Snapshot.Status)
}

func TestWebSocketRejectsGarbage(t *testing.T) {
	s := ws.NewWs()
	s.Broker = broker.NewBroker(&fakeConn{}, s.Send)

	client := dial(t, newServer(t, s), 8)

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("hello")))

	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	var got comm.WSMessage
	require.NoError(t, client.ReadJSON(&got))
	assert.Equal(t, comm.TypeError, got.Type)
}

func TestWebSocketRequiresToken(t *testing.T) {
	nc := &fakeConn{}
	s := ws.NewWs()
	s.Broker = broker.NewBroker(nc, s.Send)
	srv := newServer(t, s)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, other, err := jwtauth.New("HS256", []byte("other-secret"), nil).Encode(map[string]interface{}{"user_id": 42})
	require.NoError(t, err)
	_, resp, err = websocket.DefaultDialer.Dial(url+"?jwt="+other, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, ok := nc.last()
	assert.False(t, ok)
}

func TestUpgradeNeedsUserClaim(t *testing.T) {
	s := ws.NewWs()
	s.Broker = broker.NewBroker(&fakeConn{}, s.Send)
	srv := newServer(t, s)

	_, token, err := testAuth.Encode(map[string]interface{}{"service_id": 8003022})
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?jwt=" + token
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
