//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/metar-etl/internal/adapter/kafka"
	"github.com/couchcryptid/metar-etl/internal/adapter/stations"
	"github.com/couchcryptid/metar-etl/internal/config"
	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/observability"
	"github.com/couchcryptid/metar-etl/internal/pipeline"
)

const (
	testSourceTopic = "test-source"
	testSinkTopic   = "test-sink"
)

var receivedAt = time.Date(2024, time.April, 26, 18, 0, 0, 0, time.UTC)

// decodedMessage holds a deserialized message read from the sink topic.
type decodedMessage struct {
	Observation domain.Observation
	Key         string
	Headers     map[string]string
}

// readDecoded reads a single message from the sink consumer and deserializes it.
func readDecoded(ctx context.Context, t *testing.T, consumer *kafkago.Reader) decodedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var obs domain.Observation
	require.NoError(t, json.Unmarshal(msg.Value, &obs), "unmarshal sink message")

	return decodedMessage{
		Observation: obs,
		Key:         string(msg.Key),
		Headers:     headers,
	}
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

func newTransformer(t *testing.T, metrics *observability.Metrics) *pipeline.ReportTransformer {
	t.Helper()
	table, err := stations.Default()
	require.NoError(t, err)
	return pipeline.NewTransformer(domain.NewDecoder(table, nil), nil, metrics, discardLogger())
}

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (Extractor) and
// kafka.Writer (Loader) correctly round-trip a report through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-reader")

	reports := loadMockData(t)
	report := reports[0] // KOKC 011755Z ...

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("KOKC"),
		Value: []byte(report),
		Time:  receivedAt,
	}))

	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("KOKC"), raw.Key)
	assert.Equal(t, report, string(raw.Value))
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")

	require.NoError(t, raw.Commit(ctx))

	transformer := newTransformer(t, observability.NewMetricsForTesting())
	obs, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.LoadBatch(ctx, []domain.Observation{obs}))

	dm := readDecoded(ctx, t, sinkConsumer(t, broker))
	assert.Equal(t, "KOKC", dm.Key)
	assert.Equal(t, "KOKC", dm.Headers["station_id"])
	assert.Equal(t, "2024-04-01T17:55:00Z", dm.Headers["observed_at"])
	_, err = time.Parse(time.RFC3339, dm.Headers["decoded_at"])
	assert.NoError(t, err, "decoded_at should be valid RFC3339")

	o := dm.Observation
	assert.Equal(t, "KOKC", o.StationID)
	require.NotNil(t, o.Latitude)
	require.NotNil(t, o.WindDirection)
	assert.Equal(t, 180, *o.WindDirection)
	require.NotNil(t, o.WindGust)
	assert.InDelta(t, 25.0, *o.WindGust, 1e-9)
	require.NotNil(t, o.Altimeter)
	assert.InDelta(t, 29.92, *o.Altimeter, 1e-9)
}

// TestPipelineEndToEnd wires the full pipeline (Reader → Transformer → Writer) with
// real Kafka and verifies that every parseable mock report is decoded.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-pipeline")

	reports := loadMockData(t)
	const unparseable = 3

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(reports))
	for i, report := range reports {
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(fmt.Sprintf("report-%d", i)),
			Value: []byte(report),
			Time:  receivedAt,
		})
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := newTransformer(t, metrics)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50, 4)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)

	want := len(reports) - unparseable
	received := make([]decodedMessage, 0, want)
	for len(received) < want {
		received = append(received, readDecoded(ctx, t, consumer))
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	byStation := map[string]domain.Observation{}
	for _, dm := range received {
		assert.Equal(t, dm.Observation.StationID, dm.Key, "messages are keyed by station id")
		assert.NotEmpty(t, dm.Headers["decoded_at"], "missing decoded_at header")
		require.NotNil(t, dm.Observation.DateTime, "station %s", dm.Observation.StationID)
		byStation[dm.Observation.StationID] = dm.Observation
	}

	// Spot-check JFK: heavy rain and fog under a vertical-visibility ceiling.
	jfk, ok := byStation["KJFK"]
	require.True(t, ok, "expected KJFK observation")
	require.NotNil(t, jfk.Visibility)
	assert.InDelta(t, 804.672, *jfk.Visibility, 1e-6)
	require.NotNil(t, jfk.CurrentWeather[0])
	assert.Equal(t, "+RA", *jfk.CurrentWeather[0])
	oktas, known := jfk.CloudCoverage.Oktas()
	assert.True(t, known)
	assert.Equal(t, 8, oktas)

	// Spot-check DEN: metric visibility and negative temperatures.
	den, ok := byStation["KDEN"]
	require.True(t, ok, "expected KDEN observation")
	assert.Nil(t, den.WindDirection)
	require.NotNil(t, den.Temperature)
	assert.InDelta(t, -5.0, *den.Temperature, 1e-9)
	require.NotNil(t, den.Altimeter)
	assert.InDelta(t, 1013/33.8638866667, *den.Altimeter, 1e-6)
}

// TestPipelineParseError verifies that an unparseable report is skipped and the
// pipeline continues processing valid messages.
func TestPipelineParseError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-poison")

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("NIL="), Time: receivedAt},
		kafkago.Message{Key: []byte("good"), Value: []byte("KOKC 011755Z 18015KT 10SM CLR 25/14 A2992"), Time: receivedAt},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := newTransformer(t, metrics)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50, 2)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)

	dm := readDecoded(ctx, t, consumer)
	assert.Equal(t, "KOKC", dm.Observation.StationID)

	// Verify no second message arrives (the bad report was skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
