package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil document service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingDocumentService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Document: &mockDocumentService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil document service returns error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingDocumentService)
	})

	t.Run("document only is valid", func(t *testing.T) {
		ports := &Ports{
			Document: &mockDocumentService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Document:  &mockDocumentService{},
			Ingestion: &mockIngestionService{},
			Agent:     &mockAgentService{},
			Knowledge: &mockKnowledgeService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})
}

func TestServer_ListsTools(t *testing.T) {
	ctx := context.Background()
	server, err := NewServer(&Ports{Document: &mockDocumentService{}})
	require.NoError(t, err)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	result, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"ingest_text", "list_documents", "get_document", "delete_document",
		"list_agents", "get_agent", "ask",
	}, names)
}

func TestServer_Tools(t *testing.T) {
	server := newTestServer(t, &Ports{})

	tools := server.Tools()

	require.Len(t, tools, 7)
	assert.Equal(t, "ingest_text", tools[0].Name)
	assert.Equal(t, "ask", tools[6].Name)
	for _, tool := range tools {
		assert.NotEmpty(t, tool.Description, tool.Name)
	}

	tools[0].Name = "changed"
	assert.Equal(t, "ingest_text", server.Tools()[0].Name)
}

func TestServer_RunHTTP_StopsOnCancel(t *testing.T) {
	server := newTestServer(t, &Ports{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- server.RunHTTP(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}

func TestServer_RunHTTP_ListenError(t *testing.T) {
	server := newTestServer(t, &Ports{})

	err := server.RunHTTP(context.Background(), "256.0.0.1:bad")

	assert.Error(t, err)
}
