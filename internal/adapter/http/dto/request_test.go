package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposeTradeRequest_ToDomain(t *testing.T) {
	var req ProposeTradeRequest
	body := `{"sender_id":"alice","receiver_id":"bob","items":["apple","apple"]}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	got := req.ToDomain()
	assert.Equal(t, "alice", got.SenderID)
	assert.Equal(t, "bob", got.ReceiverID)
	assert.Equal(t, []string{"apple", "apple"}, got.Items)
}

func TestCreateAccountRequest_ItemsOptional(t *testing.T) {
	var req CreateAccountRequest
	require.NoError(t, json.Unmarshal([]byte(`{"id":"carol"}`), &req))

	assert.Equal(t, "carol", req.ID)
	assert.Empty(t, req.Items)
}
