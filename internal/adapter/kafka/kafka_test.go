package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testDataset(t *testing.T, rows ...domain.Observation) *domain.Dataset {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })
	return domain.NewDataset("vhi_data", nil, rows)
}

func kyiv(year, week int, vhi string) domain.Observation {
	id := 11
	return domain.Observation{Year: year, Week: week, VHI: domain.ParseValue(vhi), VCI: domain.ParseValue("N/A"), Region: "Kyiv", RegionID: &id}
}

func TestMessageKey(t *testing.T) {
	assert.Equal(t, "Kyiv City|2015|5", MessageKey(domain.Observation{Region: "Kyiv City", Year: 2015, Week: 5}))
}

func TestSerializeToMessage(t *testing.T) {
	ds := testDataset(t)
	msg, err := serializeToMessage(kyiv(2015, 5, "45.2"), ds)
	require.NoError(t, err)

	assert.Equal(t, []byte("Kyiv|2015|5"), msg.Key)
	assert.Contains(t, string(msg.Value), `"VHI":45.2`)
	assert.Contains(t, string(msg.Value), `"VCI":"N/A"`)
	assert.Contains(t, string(msg.Value), `"region_id":11`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "region", msg.Headers[0].Key)
	assert.Equal(t, []byte("Kyiv"), msg.Headers[0].Value)
	assert.Equal(t, "snapshot_id", msg.Headers[1].Key)
	assert.Equal(t, []byte(ds.ID.String()), msg.Headers[1].Value)
	assert.Equal(t, "loaded_at", msg.Headers[2].Key)
	assert.Equal(t, []byte("2024-04-26T15:10:00Z"), msg.Headers[2].Value)

	var back domain.Observation
	require.NoError(t, json.Unmarshal(msg.Value, &back))
	assert.Equal(t, 2015, back.Year)
	assert.InDelta(t, 45.2, back.VHI.Number, 1e-9)
}

func TestWriter_LoadBatch(t *testing.T) {
	fw := &fakeWriter{}
	w := &Writer{writer: fw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	ds := testDataset(t)

	require.NoError(t, w.LoadBatch(context.Background(), ds, []domain.Observation{kyiv(2015, 5, "45.2"), kyiv(2015, 6, "30")}))
	require.Len(t, fw.msgs, 2)
	assert.Equal(t, []byte("Kyiv|2015|6"), fw.msgs[1].Key)

	require.NoError(t, w.LoadBatch(context.Background(), ds, nil))
	assert.Len(t, fw.msgs, 2, "empty batch writes nothing")

	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}

func TestWriter_LoadBatchError(t *testing.T) {
	boom := errors.New("leader not available")
	w := &Writer{writer: &fakeWriter{err: boom}, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := w.LoadBatch(context.Background(), testDataset(t), []domain.Observation{kyiv(2015, 5, "45.2")})
	assert.ErrorIs(t, err, boom)
}
