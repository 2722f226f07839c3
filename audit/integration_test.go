//go:build integration

package audit_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/audit"
	"github.com/relabs-tech/aqaar/core/client"
	"github.com/relabs-tech/aqaar/core/query"
	"github.com/relabs-tech/aqaar/dashboard"
	"github.com/relabs-tech/aqaar/sandbox"
)

const topic = "aqaar-owner-actions"

// KafkaSuite runs a Kafka broker in docker and publishes the actions of a dashboard
// working against the sandbox
type KafkaSuite struct {
	suite.Suite
	network        testcontainers.Network
	zookeeper      testcontainers.Container
	kafkaContainer testcontainers.Container
	kafkaConn      *kafka.Conn
	kafkaAddr      string
}

func TestKafkaSuite(t *testing.T) {
	suite.Run(t, new(KafkaSuite))
}

func (s *KafkaSuite) SetupSuite() {
	ctx := context.Background()

	networkName := fmt.Sprintf("aqaar-audit-network_%d", time.Now().Unix())
	network, err := testcontainers.GenericNetwork(ctx, testcontainers.GenericNetworkRequest{
		NetworkRequest: testcontainers.NetworkRequest{
			Name:           networkName,
			CheckDuplicate: true,
		},
	})
	s.Require().NoError(err)
	s.network = network

	s.zookeeper, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "confluentinc/cp-zookeeper:7.5.0",
			ExposedPorts: []string{"2181/tcp"},
			Env: map[string]string{
				"ZOOKEEPER_CLIENT_PORT": "2181",
				"ZOOKEEPER_TICK_TIME":   "2000",
			},
			WaitingFor:     wait.ForListeningPort("2181/tcp"),
			Networks:       []string{networkName},
			NetworkAliases: map[string][]string{networkName: {"zookeeper"}},
		},
		Started: true,
	})
	s.Require().NoError(err)

	s.kafkaContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "confluentinc/cp-kafka:7.5.0",
			ExposedPorts: []string{"9092:9092/tcp"},
			Env: map[string]string{
				"KAFKA_BROKER_ID":                        "1",
				"KAFKA_ZOOKEEPER_CONNECT":                "zookeeper:2181",
				"KAFKA_LISTENERS":                        "PLAINTEXT://0.0.0.0:9092,EXTERNAL://0.0.0.0:9093",
				"KAFKA_ADVERTISED_LISTENERS":             "PLAINTEXT://localhost:9092,EXTERNAL://kafka:9093",
				"KAFKA_LISTENER_SECURITY_PROTOCOL_MAP":   "PLAINTEXT:PLAINTEXT,EXTERNAL:PLAINTEXT",
				"KAFKA_INTER_BROKER_LISTENER_NAME":       "EXTERNAL",
				"KAFKA_OFFSETS_TOPIC_REPLICATION_FACTOR": "1",
			},
			WaitingFor:     wait.ForLog("started (kafka.server.KafkaServer)"),
			Networks:       []string{networkName},
			NetworkAliases: map[string][]string{networkName: {"kafka"}},
		},
		Started: true,
	})
	s.Require().NoError(err)

	host, err := s.kafkaContainer.Host(ctx)
	s.Require().NoError(err)
	port, err := s.kafkaContainer.MappedPort(ctx, "9092")
	s.Require().NoError(err)
	s.kafkaAddr = fmt.Sprintf("%s:%s", host, port.Port())

	s.kafkaConn, err = kafka.Dial("tcp", s.kafkaAddr)
	s.Require().NoError(err)
	s.Require().NoError(s.kafkaConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func (s *KafkaSuite) TearDownSuite() {
	ctx := context.Background()
	if s.kafkaConn != nil {
		s.kafkaConn.Close()
	}
	for _, c := range []testcontainers.Container{s.kafkaContainer, s.zookeeper} {
		if c != nil {
			s.Require().NoError(c.Terminate(ctx))
		}
	}
	if s.network != nil {
		s.Require().NoError(s.network.Remove(ctx))
	}
}

func (s *KafkaSuite) TestPublishesDashboardActions() {
	ctx := context.Background()

	router := mux.NewRouter()
	sb := sandbox.New(&sandbox.Builder{Router: router, Secret: []byte("integration-secret")})
	token, err := sb.IssueToken(sandbox.OwnerEmail)
	s.Require().NoError(err)

	publisher, err := audit.NewPublisher(s.kafkaAddr, topic)
	s.Require().NoError(err)
	defer publisher.Close()

	cache := query.New(nil, nil)
	cache.Observe(publisher)
	d := dashboard.New(cache, api.New(client.NewWithRouter(router).WithToken(token)))

	s.Require().NoError(d.Admins.ToggleStatus(ctx, sandbox.ActiveAdminID))
	s.Require().Error(d.Properties.Approve(ctx, sandbox.ApprovedPropertyID))
	s.Require().NoError(d.Properties.Approve(ctx, sandbox.PendingPropertyID))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   []string{s.kafkaAddr},
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	var events []audit.Event
	for len(events) < 2 {
		msg, err := reader.ReadMessage(readCtx)
		s.Require().NoError(err)
		var e audit.Event
		s.Require().NoError(json.Unmarshal(msg.Value, &e))
		s.Equal(e.Label, string(msg.Key))
		events = append(events, e)
	}

	// refused actions never reach the backend and are not published
	s.Equal("admins.toggle", events[0].Label)
	s.Equal("properties.approve", events[1].Label)
	for _, e := range events {
		s.Equal(audit.OutcomeSuccess, e.Outcome)
		s.NotEmpty(e.Keys)
	}
}
