package graph

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestSingle(t *testing.T) {
	body := `{"query":"query Q($id: ID!) { offer(id: $id) { id } }","variables":{"id":"3"},"operationName":"Q"}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	requests, batch, err := ParseRequest(req)
	require.NoError(t, err)
	assert.False(t, batch)
	require.Len(t, requests, 1)
	assert.Equal(t, "Q", requests[0].OperationName)
	assert.Equal(t, "3", requests[0].Variables["id"])

	again, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(again))
}

func TestParseRequestBatch(t *testing.T) {
	body := ` [{"query":"{ categories { id } }"},{"query":"{ materials { id } }"}]`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))

	requests, batch, err := ParseRequest(req)
	require.NoError(t, err)
	assert.True(t, batch)
	assert.Len(t, requests, 2)
}

func TestParseRequestGet(t *testing.T) {
	q := url.Values{}
	q.Set("query", "{ categories { id } }")
	q.Set("variables", `{"a":1}`)
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil)

	requests, batch, err := ParseRequest(req)
	require.NoError(t, err)
	assert.False(t, batch)
	assert.Equal(t, "{ categories { id } }", requests[0].Query)
	assert.Equal(t, float64(1), requests[0].Variables["a"])
}

func TestParseRequestRawGraphQL(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{ materials { id } }"))
	req.Header.Set("Content-Type", "application/graphql")

	requests, _, err := ParseRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "{ materials { id } }", requests[0].Query)
}

func TestParseRequestInvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{nope"))
	_, _, err := ParseRequest(req)
	assert.Error(t, err)
}

func TestIsReadOnly(t *testing.T) {
	assert.True(t, IsReadOnly("{ categories { id } }"))
	assert.True(t, IsReadOnly("query A { materials { id } } fragment F on Material { id }"))
	assert.False(t, IsReadOnly(`mutation { logout { success } }`))
	assert.False(t, IsReadOnly("{ broken"))
}

func TestHasMutation(t *testing.T) {
	assert.True(t, HasMutation(`mutation { logout { success } }`))
	assert.False(t, HasMutation("{ categories { id } }"))
	assert.False(t, HasMutation("mutation { broken"))
}
