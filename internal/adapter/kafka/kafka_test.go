package kafka

import (
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/metar-etl/internal/domain"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("KOKC"),
		Value:     []byte("KOKC 011755Z 18015KT 10SM CLR 25/14 A2992"),
		Topic:     "raw-metar-reports",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("awc")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("KOKC"), raw.Key)
	assert.Equal(t, "KOKC 011755Z 18015KT 10SM CLR 25/14 A2992", string(raw.Value))
	assert.Equal(t, "raw-metar-reports", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "awc", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestSerializeToMessage(t *testing.T) {
	observed := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	decoded := time.Date(2024, 4, 26, 15, 12, 3, 0, time.UTC)
	temp := 25.0
	obs := domain.Observation{
		StationID:     "KOKC",
		DateTime:      &observed,
		Temperature:   &temp,
		CloudCoverage: domain.CoverageOktas(4),
		DecodedAt:     decoded,
	}

	msg, err := serializeToMessage(obs)
	require.NoError(t, err)

	assert.Equal(t, []byte("KOKC"), msg.Key)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "KOKC", body["station_id"])
	assert.Equal(t, 25.0, body["temperature"])
	assert.Equal(t, 4.0, body["cloud_coverage"])
	assert.Nil(t, body["visibility"])

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "station_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("KOKC"), msg.Headers[0].Value)
	assert.Equal(t, "observed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-04-26T15:10:00Z"), msg.Headers[1].Value)
	assert.Equal(t, "decoded_at", msg.Headers[2].Key)
	assert.Equal(t, []byte("2024-04-26T15:12:03Z"), msg.Headers[2].Value)
}

func TestSerializeToMessage_MissingDateTime(t *testing.T) {
	msg, err := serializeToMessage(domain.Observation{StationID: "KXYZ"})
	require.NoError(t, err)

	assert.Equal(t, "observed_at", msg.Headers[1].Key)
	assert.Empty(t, msg.Headers[1].Value)
}
