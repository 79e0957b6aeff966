package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mkAlert(msg string, at time.Time) Alert {
	return newAlert(AlertDrawdownWarning, SeverityMedium, msg, at)
}

func messages(alerts []Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.Message
	}
	return out
}

func TestAlertLogRingBuffer(t *testing.T) {
	t.Parallel()

	l := NewAlertLog(3)
	for _, m := range []string{"a", "b", "c", "d", "e"} {
		l.Append(mkAlert(m, t0))
	}

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 3, l.Cap())
	assert.Equal(t, []string{"c", "d", "e"}, messages(l.Recent(10)))
	assert.Equal(t, []string{"d", "e"}, messages(l.Recent(2)))
	assert.Nil(t, l.Recent(0))
	assert.Nil(t, l.Recent(-1))
}

func TestAlertLogEvictBefore(t *testing.T) {
	t.Parallel()

	l := NewAlertLog(10)
	l.Append(mkAlert("old1", t0), mkAlert("old2", t0.Add(time.Minute)))
	l.Append(mkAlert("new", t0.Add(2*time.Hour)))

	removed := l.EvictBefore(t0.Add(time.Hour))
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"new"}, messages(l.Recent(10)))
}

func TestAlertLogDefaultCapacity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultConfig().AlertCapacity, NewAlertLog(0).Cap())
}

func TestAlertIDsAreUnique(t *testing.T) {
	t.Parallel()

	a := mkAlert("x", t0)
	b := mkAlert("x", t0)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 26)
}
