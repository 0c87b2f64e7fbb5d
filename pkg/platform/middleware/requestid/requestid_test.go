package requestid

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usergate/pkg/platform/pipeline"
	"usergate/pkg/requestcontext"
)

func TestAssignsOnceAndEchoes(t *testing.T) {
	ic := New()
	req := &requestcontext.Request{}

	_, err := ic.Inbound(context.Background(), req)
	require.NoError(t, err)
	_, err = uuid.Parse(req.RequestID)
	require.NoError(t, err)

	first := req.RequestID
	_, err = ic.Inbound(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, req.RequestID)

	resp := ic.Outbound(context.Background(), req, pipeline.OK(nil))
	assert.Equal(t, first, resp.Header.Get(Header))
}

func TestIDsAreUnique(t *testing.T) {
	ic := New()
	seen := map[string]bool{}
	for range 100 {
		req := &requestcontext.Request{}
		_, _ = ic.Inbound(context.Background(), req)
		assert.False(t, seen[req.RequestID])
		seen[req.RequestID] = true
	}
}
