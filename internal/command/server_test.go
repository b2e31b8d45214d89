package command

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/ecosentinel-go/internal/emergency"
	"github.com/tphakala/ecosentinel-go/internal/nodestate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startServer(t *testing.T, state *nodestate.State) (*Server, net.Conn) {
	t.Helper()

	ctrl := emergency.New(state, nil)
	srv := NewServer("127.0.0.1:0", state, ctrl, nil)
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		assert.NoError(t, srv.Shutdown(ctx))
	})

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return srv, conn
}

func sendLine(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	_, err := fmt.Fprintln(conn, line)
	require.NoError(t, err)
}

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSpace(line)
}

func TestStatusReportsCountersWithoutMutation(t *testing.T) {
	state := nodestate.New()
	state.UpdateBaseline(150, 0.01)
	state.IncrementWildlife()
	state.IncrementWildlife()

	_, conn := startServer(t, state)
	r := bufio.NewReader(conn)

	sendLine(t, conn, "STATUS")
	reply := readLine(t, r)

	assert.Contains(t, reply, "baseline=150.00")
	assert.Contains(t, reply, "wildlife=2")
	assert.Contains(t, reply, "emergency=false")
	assert.Contains(t, reply, "uptime=")

	snap := state.Snapshot()
	assert.Equal(t, int64(2), snap.WildlifeDetections, "STATUS must not mutate state")
	assert.InDelta(t, 150.0, snap.BaselineNoise, 1e-9)
}

func TestResetClearsNodeState(t *testing.T) {
	state := nodestate.New()
	state.UpdateBaseline(150, 0.01)
	state.IncrementWildlife()
	state.SetEmergency(true)

	_, conn := startServer(t, state)
	r := bufio.NewReader(conn)

	sendLine(t, conn, "RESET")
	assert.Equal(t, "OK", readLine(t, r))

	snap := state.Snapshot()
	assert.Zero(t, snap.BaselineNoise)
	assert.Zero(t, snap.WildlifeDetections)
	assert.False(t, snap.EmergencyMode)
}

func TestEmergencyCommandForcesEmergency(t *testing.T) {
	state := nodestate.New()
	_, conn := startServer(t, state)
	r := bufio.NewReader(conn)

	sendLine(t, conn, "EMERGENCY")
	assert.Equal(t, "OK", readLine(t, r))
	assert.True(t, state.EmergencyActive())
}

func TestUnknownCommandsIgnored(t *testing.T) {
	state := nodestate.New()
	state.IncrementWildlife()
	_, conn := startServer(t, state)
	r := bufio.NewReader(conn)

	// no reply for garbage; the next STATUS reply proves the connection
	// survived and nothing was mutated
	sendLine(t, conn, "SELFDESTRUCT")
	sendLine(t, conn, "")
	sendLine(t, conn, "STATUS")

	reply := readLine(t, r)
	assert.Contains(t, reply, "wildlife=1")
	assert.Contains(t, reply, "emergency=false")
}

func TestOverlongLineKeepsConnectionAlive(t *testing.T) {
	state := nodestate.New()
	state.IncrementWildlife()
	_, conn := startServer(t, state)
	r := bufio.NewReader(conn)

	// longer than the line buffer: ignored like any unknown command,
	// connection and state stay intact
	sendLine(t, conn, strings.Repeat("X", 4096))
	sendLine(t, conn, "STATUS")

	reply := readLine(t, r)
	assert.Contains(t, reply, "wildlife=1")
	assert.Contains(t, reply, "emergency=false")
}

func TestCommandsAreCaseInsensitive(t *testing.T) {
	state := nodestate.New()
	_, conn := startServer(t, state)
	r := bufio.NewReader(conn)

	sendLine(t, conn, "  reset ")
	assert.Equal(t, "OK", readLine(t, r))
}
